package services

import (
	"errors"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the assignment statuses that occupy a capacity
// slot. A pending swap still holds the slot: acceptance reassigns the
// same row instead of freeing and refilling it.
var activeStatuses = []string{models.AssignmentConfirmed, models.AssignmentPendingSwap}

// AssignmentService implements the capacity/signup engine and the
// overlap guard.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// forUpdate applies a row-level locking clause on drivers that support
// it. SQLite serializes writers at the connection level, so the clause
// is unnecessary there (and not valid SQL).
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// SignupResult is the denormalized view returned right after a signup
// so the client can render the new commitment without a second fetch.
type SignupResult struct {
	ID             uint       `json:"id"`
	Status         string     `json:"status"`
	SubShiftID     uint       `json:"sub_shift_id"`
	RoleName       string     `json:"role_name"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	EventID        uint       `json:"event_id"`
	EventTitle     string     `json:"event_title"`
	EventLocation  string     `json:"event_location"`
	EventStartTime time.Time  `json:"event_start_time"`
	EventEndTime   time.Time  `json:"event_end_time"`
}

// SignUp claims a slot on a sub-shift for the given user.
//
// Preconditions are checked in order inside one transaction: the
// sub-shift must exist; the active assignment count must be below
// capacity (capacity 0 = unlimited); the user must have no overlapping
// commitment; and the user must not already hold an assignment on this
// sub-shift. The composite unique index re-validates the last check at
// commit time, and the locked parent row re-validates the capacity
// count under concurrency.
func (s *AssignmentService) SignUp(subShiftID, userID uint) (*SignupResult, error) {
	var result *SignupResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var subShift models.SubShift
		if err := forUpdate(tx).First(&subShift, subShiftID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("shift not found")
			}
			return err
		}

		var event models.Event
		if err := tx.First(&event, subShift.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("event not found")
			}
			return err
		}

		if subShift.Capacity > 0 {
			var filled int64
			if err := tx.Model(&models.ShiftAssignment{}).
				Where("sub_shift_id = ? AND status IN ?", subShift.ID, activeStatuses).
				Count(&filled).Error; err != nil {
				return err
			}
			if filled >= int64(subShift.Capacity) {
				return response.NewCapacityExceeded("shift is full")
			}
		}

		start, end := subShift.EffectiveWindow(&event)
		overlap, err := s.hasOverlap(tx, userID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return response.NewScheduleConflict("shift overlaps with your existing schedule")
		}

		assignment := models.ShiftAssignment{
			SubShiftID: subShift.ID,
			UserID:     userID,
			Status:     models.AssignmentConfirmed,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return response.NewAlreadyAssigned("you are already signed up for this shift")
			}
			return err
		}

		result = &SignupResult{
			ID:             assignment.ID,
			Status:         assignment.Status,
			SubShiftID:     subShift.ID,
			RoleName:       subShift.RoleName,
			StartTime:      subShift.StartTime,
			EndTime:        subShift.EndTime,
			EventID:        event.ID,
			EventTitle:     event.Title,
			EventLocation:  event.Location,
			EventStartTime: event.StartTime,
			EventEndTime:   event.EndTime,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type commitmentWindow struct {
	ShiftStart *time.Time
	ShiftEnd   *time.Time
	EventStart time.Time
	EventEnd   time.Time
}

// HasOverlap reports whether the user holds an active commitment whose
// effective interval strictly overlaps [candidateStart, candidateEnd).
// Half-open semantics: back-to-back shifts with touching boundaries do
// not overlap. Query-only.
func (s *AssignmentService) HasOverlap(userID uint, candidateStart, candidateEnd time.Time) (bool, error) {
	return s.hasOverlap(s.db, userID, candidateStart, candidateEnd)
}

func (s *AssignmentService) hasOverlap(tx *gorm.DB, userID uint, candidateStart, candidateEnd time.Time) (bool, error) {
	var windows []commitmentWindow
	err := tx.Table("shift_assignments").
		Select("sub_shifts.start_time AS shift_start, sub_shifts.end_time AS shift_end, events.start_time AS event_start, events.end_time AS event_end").
		Joins("JOIN sub_shifts ON sub_shifts.id = shift_assignments.sub_shift_id").
		Joins("JOIN events ON events.id = sub_shifts.event_id").
		Where("shift_assignments.user_id = ? AND shift_assignments.status IN ?", userID, activeStatuses).
		Scan(&windows).Error
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		start, end := w.EventStart, w.EventEnd
		if w.ShiftStart != nil {
			start = *w.ShiftStart
		}
		if w.ShiftEnd != nil {
			end = *w.ShiftEnd
		}
		if candidateStart.Before(end) && start.Before(candidateEnd) {
			return true, nil
		}
	}
	return false, nil
}

// AssignmentView is one row of a volunteer's commitment list.
type AssignmentView struct {
	ID             uint       `json:"id"`
	Status         string     `json:"status"`
	SubShiftID     uint       `json:"sub_shift_id"`
	RoleName       string     `json:"role_name"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	EventID        uint       `json:"event_id"`
	EventTitle     string     `json:"event_title"`
	EventLocation  string     `json:"event_location"`
	EventStartTime time.Time  `json:"event_start_time"`
	EventEndTime   time.Time  `json:"event_end_time"`
}

// ListForUser returns the user's assignments, newest first.
func (s *AssignmentService) ListForUser(userID uint) ([]AssignmentView, error) {
	var views []AssignmentView
	err := s.db.Table("shift_assignments").
		Select(`shift_assignments.id, shift_assignments.status, shift_assignments.sub_shift_id,
			sub_shifts.role_name, sub_shifts.start_time, sub_shifts.end_time,
			events.id AS event_id, events.title AS event_title, events.location AS event_location,
			events.start_time AS event_start_time, events.end_time AS event_end_time`).
		Joins("JOIN sub_shifts ON sub_shifts.id = shift_assignments.sub_shift_id").
		Joins("JOIN events ON events.id = sub_shifts.event_id").
		Where("shift_assignments.user_id = ?", userID).
		Order("shift_assignments.created_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []AssignmentView{}
	}
	return views, nil
}

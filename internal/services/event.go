package services

import (
	"errors"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

// EventService manages events and their sub-shifts. Sub-shift edits go
// through the merge diff so existing assignments survive updates that
// do not touch their slot.
type EventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

type CreateEventRequest struct {
	Title     string          `json:"title" binding:"required"`
	StartTime time.Time       `json:"start_time" binding:"required"`
	EndTime   time.Time       `json:"end_time" binding:"required"`
	Location  string          `json:"location"`
	SubShifts []SubShiftInput `json:"sub_shifts"`
}

type UpdateEventRequest struct {
	Title     string          `json:"title" binding:"required"`
	StartTime time.Time       `json:"start_time" binding:"required"`
	EndTime   time.Time       `json:"end_time" binding:"required"`
	Location  string          `json:"location"`
	SubShifts []SubShiftInput `json:"sub_shifts"`
	Force     bool            `json:"force"`
}

// SubShiftView is a sub-shift with derived occupancy. Filled counts
// confirmed and pending_swap assignments; a row mid-swap still holds
// its seat.
type SubShiftView struct {
	ID           uint          `json:"id"`
	RoleName     string        `json:"role_name"`
	StartTime    *time.Time    `json:"start_time"`
	EndTime      *time.Time    `json:"end_time"`
	Capacity     int           `json:"capacity"`
	Filled       int           `json:"filled"`
	Available    int           `json:"available"`
	MyAssignment *MyAssignment `json:"my_assignment,omitempty"`
	Assignees    []Assignee    `json:"assignees,omitempty"`
}

// MyAssignment is the viewer's own claim on a slot, if any.
type MyAssignment struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// AffectedShift describes a sub-shift whose removal would drop
// signups. Returned in the merge confirmation payload so the caller
// can show what is about to be lost.
type AffectedShift struct {
	SubShiftID      uint   `json:"sub_shift_id"`
	RoleName        string `json:"role_name"`
	AssignmentCount int64  `json:"assignment_count"`
}

// Assignee is one volunteer on a slot, shown on the admin roster.
type Assignee struct {
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
	Status   string `json:"status"`
}

type EventView struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Location  string         `json:"location"`
	CreatedAt time.Time      `json:"created_at"`
	SubShifts []SubShiftView `json:"sub_shifts"`
}

func validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return response.NewValidation("end time must be after start time")
	}
	return nil
}

func validateSubShifts(shifts []SubShiftInput) error {
	for _, s := range shifts {
		if s.RoleName == "" {
			return response.NewValidation("sub-shift role name is required")
		}
		if s.Capacity < 0 {
			return response.NewValidation("sub-shift capacity cannot be negative")
		}
		if s.StartTime != nil && s.EndTime != nil && !s.EndTime.After(*s.StartTime) {
			return response.NewValidation("sub-shift end time must be after its start time")
		}
	}
	return nil
}

// Create inserts an event together with its initial sub-shifts.
func (s *EventService) Create(req *CreateEventRequest, createdBy uint) (*models.Event, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateSubShifts(req.SubShifts); err != nil {
		return nil, err
	}

	event := models.Event{
		Title:     req.Title,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Location:  req.Location,
		CreatedBy: createdBy,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for _, in := range req.SubShifts {
			shift := models.SubShift{
				EventID:   event.ID,
				RoleName:  in.RoleName,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				Capacity:  in.Capacity,
			}
			if err := tx.Create(&shift).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Update rewrites the event header and merges the desired sub-shift
// list into the existing one. Removing a slot that still has
// assignments requires force; without it the affected roles are
// reported back for confirmation.
func (s *EventService) Update(eventID uint, req *UpdateEventRequest) (*models.Event, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if err := validateSubShifts(req.SubShifts); err != nil {
		return nil, err
	}

	var event models.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("event not found")
			}
			return err
		}

		var existing []models.SubShift
		if err := tx.Where("event_id = ?", eventID).Find(&existing).Error; err != nil {
			return err
		}

		diff := diffSubShifts(existing, req.SubShifts)

		if !req.Force && len(diff.remove) > 0 {
			var affected []AffectedShift
			var roles []string
			for _, shift := range diff.remove {
				var n int64
				if err := tx.Model(&models.ShiftAssignment{}).
					Where("sub_shift_id = ?", shift.ID).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					affected = append(affected, AffectedShift{
						SubShiftID:      shift.ID,
						RoleName:        shift.RoleName,
						AssignmentCount: n,
					})
					roles = append(roles, shift.RoleName)
				}
			}
			if len(affected) > 0 {
				return response.NewMergeConfirmation(
					"removing these shifts will drop existing signups",
					map[string]interface{}{
						"affected_roles":  roles,
						"affected_shifts": affected,
					},
				)
			}
		}

		updates := map[string]interface{}{
			"title":      req.Title,
			"start_time": req.StartTime.UTC(),
			"end_time":   req.EndTime.UTC(),
			"location":   req.Location,
		}
		if err := tx.Model(&event).Updates(updates).Error; err != nil {
			return err
		}

		for _, change := range diff.update {
			if err := tx.Model(&models.SubShift{}).Where("id = ?", change.shift.ID).
				Update("capacity", change.capacity).Error; err != nil {
				return err
			}
		}
		for _, in := range diff.create {
			shift := models.SubShift{
				EventID:   eventID,
				RoleName:  in.RoleName,
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				Capacity:  in.Capacity,
			}
			if err := tx.Create(&shift).Error; err != nil {
				return err
			}
		}
		for _, shift := range diff.remove {
			if err := deleteSubShift(tx, shift.ID); err != nil {
				return err
			}
		}

		return tx.First(&event, eventID).Error
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// deleteSubShift removes a slot with its assignments and any swap
// requests hanging off them.
func deleteSubShift(tx *gorm.DB, subShiftID uint) error {
	var assignmentIDs []uint
	if err := tx.Model(&models.ShiftAssignment{}).
		Where("sub_shift_id = ?", subShiftID).Pluck("id", &assignmentIDs).Error; err != nil {
		return err
	}
	if len(assignmentIDs) > 0 {
		if err := tx.Where("assignment_id IN ?", assignmentIDs).
			Delete(&models.SwapRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sub_shift_id = ?", subShiftID).
			Delete(&models.ShiftAssignment{}).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&models.SubShift{}, subShiftID).Error
}

// Delete removes an event and everything under it.
func (s *EventService) Delete(eventID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("event not found")
			}
			return err
		}

		var shiftIDs []uint
		if err := tx.Model(&models.SubShift{}).
			Where("event_id = ?", eventID).Pluck("id", &shiftIDs).Error; err != nil {
			return err
		}
		for _, id := range shiftIDs {
			if err := deleteSubShift(tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(&event).Error
	})
}

type EventListRequest struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type EventListResponse struct {
	Total  int64       `json:"total"`
	Events []EventView `json:"events"`
}

// List returns events in start-time order with derived occupancy per
// sub-shift. viewerID fills my_assignment; includeRoster attaches the
// full assignee list for the admin view.
func (s *EventService) List(req *EventListRequest, viewerID uint, includeRoster bool) (*EventListResponse, error) {
	query := s.db.Model(&models.Event{})
	if req.From != nil {
		query = query.Where("end_time >= ?", req.From.UTC())
	}
	if req.To != nil {
		query = query.Where("start_time <= ?", req.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}

	var events []models.Event
	if err := query.Order("start_time ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&events).Error; err != nil {
		return nil, err
	}

	views := make([]EventView, 0, len(events))
	for i := range events {
		view, err := s.buildView(&events[i], viewerID, includeRoster)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return &EventListResponse{Total: total, Events: views}, nil
}

// Get returns a single event with derived occupancy.
func (s *EventService) Get(eventID, viewerID uint, includeRoster bool) (*EventView, error) {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("event not found")
		}
		return nil, err
	}
	return s.buildView(&event, viewerID, includeRoster)
}

func (s *EventService) buildView(event *models.Event, viewerID uint, includeRoster bool) (*EventView, error) {
	var shifts []models.SubShift
	if err := s.db.Where("event_id = ?", event.ID).
		Order("start_time ASC, role_name ASC").Find(&shifts).Error; err != nil {
		return nil, err
	}

	view := EventView{
		ID:        event.ID,
		Title:     event.Title,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Location:  event.Location,
		CreatedAt: event.CreatedAt,
		SubShifts: make([]SubShiftView, 0, len(shifts)),
	}

	for i := range shifts {
		shift := &shifts[i]

		var assignments []models.ShiftAssignment
		if err := s.db.Where("sub_shift_id = ? AND status IN ?", shift.ID, activeStatuses).
			Find(&assignments).Error; err != nil {
			return nil, err
		}

		sv := SubShiftView{
			ID:        shift.ID,
			RoleName:  shift.RoleName,
			StartTime: shift.StartTime,
			EndTime:   shift.EndTime,
			Capacity:  shift.Capacity,
			Filled:    len(assignments),
		}
		if shift.Capacity > 0 {
			// An over-capacity slot (after an admin shrink) reports
			// zero availability; nobody is evicted.
			sv.Available = shift.Capacity - sv.Filled
			if sv.Available < 0 {
				sv.Available = 0
			}
		}

		for j := range assignments {
			a := &assignments[j]
			if viewerID != 0 && a.UserID == viewerID {
				sv.MyAssignment = &MyAssignment{ID: a.ID, Status: a.Status}
			}
			if includeRoster {
				var profile models.Profile
				name := "Unknown"
				if err := s.db.First(&profile, a.UserID).Error; err == nil {
					name = profile.FullName
				}
				sv.Assignees = append(sv.Assignees, Assignee{
					UserID:   a.UserID,
					FullName: name,
					Status:   a.Status,
				})
			}
		}
		view.SubShifts = append(view.SubShifts, sv)
	}
	return &view, nil
}

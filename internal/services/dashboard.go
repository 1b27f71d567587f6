package services

import (
	"time"

	"github.com/volunty/volunty/internal/models"
	"gorm.io/gorm"
)

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

type DashboardStatsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type DashboardStats struct {
	UpcomingEvents   int64 `json:"upcoming_events"`
	ActiveVolunteers int64 `json:"active_volunteers"`
	TotalAssignments int64 `json:"total_assignments"`
	OpenSwapRequests int64 `json:"open_swap_requests"`
	UnfilledShifts   int64 `json:"unfilled_shifts"`
}

type EventFillStats struct {
	EventID    uint      `json:"event_id"`
	EventTitle string    `json:"event_title"`
	StartTime  time.Time `json:"start_time"`
	Capacity   int64     `json:"capacity"`
	Filled     int64     `json:"filled"`
}

type VolunteerStats struct {
	UserID     uint   `json:"user_id"`
	FullName   string `json:"full_name"`
	ShiftCount int64  `json:"shift_count"`
}

type DashboardResponse struct {
	Stats      DashboardStats   `json:"stats"`
	EventStats []EventFillStats `json:"event_stats"`
	TopHelpers []VolunteerStats `json:"top_helpers"`
}

// GetStats summarizes scheduling activity for the admin dashboard.
// The date range defaults to the next 30 days for events and the past
// 30 days for volunteer activity.
func (s *DashboardService) GetStats(req *DashboardStatsRequest) (*DashboardResponse, error) {
	now := time.Now().UTC()

	startDate := now.AddDate(0, 0, -30)
	if req.StartDate != "" {
		if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			startDate = t
		}
	}
	endDate := now.AddDate(0, 0, 30)
	if req.EndDate != "" {
		if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			endDate = t.Add(24*time.Hour - time.Second)
		}
	}

	var stats DashboardStats

	s.db.Model(&models.Event{}).
		Where("start_time >= ? AND start_time <= ?", now, endDate).
		Count(&stats.UpcomingEvents)

	s.db.Model(&models.Profile{}).
		Where("is_active = ? AND role = ?", true, models.RoleVolunteer).
		Count(&stats.ActiveVolunteers)

	s.db.Model(&models.ShiftAssignment{}).
		Where("status IN ?", activeStatuses).
		Count(&stats.TotalAssignments)

	s.db.Model(&models.SwapRequest{}).
		Where("status = ?", models.SwapOpen).
		Count(&stats.OpenSwapRequests)

	s.db.Table("sub_shifts").
		Joins("JOIN events ON events.id = sub_shifts.event_id").
		Where("events.start_time >= ?", now).
		Where("sub_shifts.capacity > 0").
		Where(`sub_shifts.capacity > (
			SELECT COUNT(*) FROM shift_assignments
			WHERE shift_assignments.sub_shift_id = sub_shifts.id
			AND shift_assignments.status IN ('confirmed', 'pending_swap')
		)`).
		Count(&stats.UnfilledShifts)

	var eventStats []EventFillStats
	s.db.Table("events").
		Select(`events.id AS event_id, events.title AS event_title, events.start_time,
			COALESCE(SUM(sub_shifts.capacity), 0) AS capacity,
			(SELECT COUNT(*) FROM shift_assignments
			 JOIN sub_shifts s2 ON s2.id = shift_assignments.sub_shift_id
			 WHERE s2.event_id = events.id
			 AND shift_assignments.status IN ('confirmed', 'pending_swap')) AS filled`).
		Joins("LEFT JOIN sub_shifts ON sub_shifts.event_id = events.id").
		Where("events.start_time >= ? AND events.start_time <= ?", now, endDate).
		Group("events.id, events.title, events.start_time").
		Order("events.start_time ASC").
		Limit(10).
		Scan(&eventStats)

	var topHelpers []VolunteerStats
	s.db.Table("shift_assignments").
		Select("profiles.id AS user_id, profiles.full_name, COUNT(*) AS shift_count").
		Joins("JOIN profiles ON profiles.id = shift_assignments.user_id").
		Where("shift_assignments.created_at >= ?", startDate).
		Where("shift_assignments.status IN ?", activeStatuses).
		Group("profiles.id, profiles.full_name").
		Order("shift_count DESC").
		Limit(10).
		Scan(&topHelpers)

	return &DashboardResponse{
		Stats:      stats,
		EventStats: eventStats,
		TopHelpers: topHelpers,
	}, nil
}

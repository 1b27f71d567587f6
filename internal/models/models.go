package models

import (
	"time"
)

// Assignment status values. An assignment row is never cancelled:
// rows disappear only with their sub-shift, and a completed swap hands
// the row to the new owner.
const (
	AssignmentConfirmed   = "confirmed"
	AssignmentPendingSwap = "pending_swap"
)

// Swap request status values. accepted and cancelled are terminal.
const (
	SwapOpen      = "open"
	SwapAccepted  = "accepted"
	SwapCancelled = "cancelled"
)

// Profile roles.
const (
	RoleAdmin     = "admin"
	RoleVolunteer = "volunteer"
)

// Profile represents a user account. CalendarToken is an opaque
// bearer capability for the read-only ICS feed.
type Profile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password      string     `gorm:"size:255" json:"-"`
	Email         string     `gorm:"size:255" json:"email"`
	FullName      string     `gorm:"size:200" json:"full_name"`
	Role          string     `gorm:"size:50;default:volunteer" json:"role"` // admin, volunteer
	CalendarToken string     `gorm:"uniqueIndex;size:64" json:"-"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastLogin     *time.Time `json:"last_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Event is an admin-created occasion. All instants are stored in UTC;
// the organization timezone setting is display-only.
type Event struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:300;not null" json:"title"`
	StartTime time.Time  `gorm:"index;not null" json:"start_time"`
	EndTime   time.Time  `gorm:"not null" json:"end_time"`
	Location  string     `gorm:"size:300" json:"location"`
	CreatedBy uint       `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	SubShifts []SubShift `gorm:"foreignKey:EventID" json:"sub_shifts,omitempty"`
}

// SubShift is a role-scoped slot within an event. Nil start/end means
// the slot inherits the parent event's window. Capacity 0 means
// unlimited.
type SubShift struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	EventID   uint       `gorm:"index;not null" json:"event_id"`
	RoleName  string     `gorm:"size:200;not null" json:"role_name"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Capacity  int        `json:"capacity"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// EffectiveWindow resolves the slot's interval, falling back to the
// parent event's window when the slot has none of its own.
func (s *SubShift) EffectiveWindow(event *Event) (time.Time, time.Time) {
	start, end := event.StartTime, event.EndTime
	if s.StartTime != nil {
		start = *s.StartTime
	}
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return start, end
}

// ShiftAssignment is a volunteer's claim on a sub-shift. The composite
// unique index is the commit-time guard against duplicate signups; a
// violation surfaces to the engine as an already-assigned conflict.
type ShiftAssignment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SubShiftID uint      `gorm:"not null;uniqueIndex:idx_shift_user" json:"sub_shift_id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_shift_user" json:"user_id"`
	Status     string    `gorm:"size:50;default:confirmed;not null" json:"status"` // confirmed, pending_swap
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SwapRequest is an offer to hand an assignment to another volunteer.
// ShareToken is the unguessable capability for the public offer page.
type SwapRequest struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AssignmentID uint      `gorm:"index;not null" json:"assignment_id"`
	RequesterID  uint      `gorm:"index;not null" json:"requester_id"`
	Status       string    `gorm:"size:50;default:open;not null;index" json:"status"` // open, accepted, cancelled
	ShareToken   string    `gorm:"uniqueIndex;size:64;not null" json:"share_token"`
	AcceptedByID *uint     `json:"accepted_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrgSetting is one organization-level key/value pair, e.g. the
// display timezone. Core interval logic never reads these.
type OrgSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditLog records admin write operations.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Level     string    `gorm:"size:20;index" json:"level"` // info, warning, error
	Module    string    `gorm:"size:100;index" json:"module"`
	Action    string    `gorm:"size:200;index" json:"action"`
	Message   string    `gorm:"type:text" json:"message"`
	UserID    *uint     `json:"user_id"`
	IP        string    `gorm:"size:50" json:"ip"`
	UserAgent string    `gorm:"size:500" json:"user_agent"`
	Extra     string    `gorm:"type:text" json:"extra"` // JSON extra data
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName overrides
func (Profile) TableName() string         { return "profiles" }
func (Event) TableName() string           { return "events" }
func (SubShift) TableName() string        { return "sub_shifts" }
func (ShiftAssignment) TableName() string { return "shift_assignments" }
func (SwapRequest) TableName() string     { return "swap_requests" }
func (OrgSetting) TableName() string      { return "organization_settings" }
func (AuditLog) TableName() string        { return "audit_logs" }

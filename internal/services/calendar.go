package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

// CalendarService renders a volunteer's confirmed commitments as an
// iCalendar feed, authorized by the per-user calendar token.
type CalendarService struct {
	db       *gorm.DB
	settings *SettingsService
}

func NewCalendarService(db *gorm.DB, settings *SettingsService) *CalendarService {
	return &CalendarService{db: db, settings: settings}
}

const icsTimeLayout = "20060102T150405Z"

// escapeICS escapes text per RFC 5545 section 3.3.11.
func escapeICS(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

// Feed resolves a calendar token and renders the owner's upcoming and
// recent assignments as an ICS document. Unknown tokens return
// NotFound without revealing whether the token ever existed.
func (s *CalendarService) Feed(token string) (string, error) {
	if token == "" {
		return "", response.NewNotFound("calendar not found")
	}

	var profile models.Profile
	if err := s.db.Where("calendar_token = ?", token).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewNotFound("calendar not found")
		}
		return "", err
	}

	assignments, err := NewAssignmentService(s.db).ListForUser(profile.ID)
	if err != nil {
		return "", err
	}

	orgName := s.settings.GetWithDefault("org_name", "VolunTy")

	var b strings.Builder
	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:-//VolunTy//Shift Calendar//EN")
	writeLine("CALSCALE:GREGORIAN")
	writeLine("METHOD:PUBLISH")
	writeLine("X-WR-CALNAME:" + escapeICS(orgName+" shifts"))

	now := time.Now().UTC().Format(icsTimeLayout)
	for _, a := range assignments {
		start, end := a.EventStartTime, a.EventEndTime
		if a.StartTime != nil {
			start = *a.StartTime
		}
		if a.EndTime != nil {
			end = *a.EndTime
		}

		summary := a.RoleName
		if a.EventTitle != "" {
			summary = a.EventTitle + ": " + a.RoleName
		}
		writeLine("BEGIN:VEVENT")
		writeLine(fmt.Sprintf("UID:assignment-%d@volunty", a.ID))
		writeLine("DTSTAMP:" + now)
		writeLine("DTSTART:" + start.UTC().Format(icsTimeLayout))
		writeLine("DTEND:" + end.UTC().Format(icsTimeLayout))
		writeLine("SUMMARY:" + escapeICS(summary))
		if a.EventLocation != "" {
			writeLine("LOCATION:" + escapeICS(a.EventLocation))
		}
		if a.Status == models.AssignmentPendingSwap {
			writeLine("DESCRIPTION:" + escapeICS("Swap requested for this shift"))
		}
		writeLine("END:VEVENT")
	}
	writeLine("END:VCALENDAR")

	return b.String(), nil
}

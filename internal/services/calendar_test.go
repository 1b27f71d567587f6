package services

import (
	"strings"
	"testing"
	"time"

	"github.com/volunty/volunty/pkg/response"
)

func TestCalendarFeed_UnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewCalendarService(db, NewSettingsService(db))

	_, err := svc.Feed("nope")
	assertReason(t, err, response.ReasonNotFound)

	_, err = svc.Feed("")
	assertReason(t, err, response.ReasonNotFound)
}

func TestCalendarFeed_RendersAssignments(t *testing.T) {
	db := newTestDB(t)
	svc := NewCalendarService(db, NewSettingsService(db))

	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, "Gala; Night, 2026",
		time.Date(2026, 11, 7, 18, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 7, 23, 0, 0, 0, time.UTC))
	shift := createTestShift(t, db, event.ID, "Usher", 2, nil, nil)
	if _, err := NewAssignmentService(db).SignUp(shift.ID, user.ID); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	feed, err := svc.Feed(user.CalendarToken)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"DTSTART:20261107T180000Z",
		"DTEND:20261107T230000Z",
		"SUMMARY:Gala\\; Night\\, 2026: Usher",
		"END:VCALENDAR",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("feed missing %q", want)
		}
	}

	if !strings.Contains(feed, "\r\n") {
		t.Error("feed lines must be CRLF-terminated")
	}
}

func TestCalendarFeed_SubShiftWindowOverridesEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewCalendarService(db, NewSettingsService(db))

	user := createTestUser(t, db, "alice")
	event := createTestEvent(t, db, "Fair",
		time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 2, 20, 0, 0, 0, time.UTC))
	shift := createTestShift(t, db, event.ID, "Afternoon", 2,
		timePtr(time.Date(2026, 5, 2, 13, 0, 0, 0, time.UTC)),
		timePtr(time.Date(2026, 5, 2, 17, 0, 0, 0, time.UTC)))
	if _, err := NewAssignmentService(db).SignUp(shift.ID, user.ID); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	feed, err := svc.Feed(user.CalendarToken)
	if err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if !strings.Contains(feed, "DTSTART:20260502T130000Z") {
		t.Error("feed should use the sub-shift's own window")
	}
	if strings.Contains(feed, "DTSTART:20260502T080000Z") {
		t.Error("feed should not fall back to the event window")
	}
}

func TestEscapeICS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a,b;c", "a\\,b\\;c"},
		{"back\\slash", "back\\\\slash"},
		{"line\nbreak", "line\\nbreak"},
	}
	for _, tt := range tests {
		if got := escapeICS(tt.in); got != tt.want {
			t.Errorf("escapeICS(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

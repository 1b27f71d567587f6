package services

import (
	"testing"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
)

func TestProfileList_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	admin := createTestUser(t, db, "carol")
	if err := db.Model(admin).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("role update failed: %v", err)
	}

	all, err := svc.List(&UserListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if all.Total != 3 {
		t.Errorf("total = %d, expected 3", all.Total)
	}

	admins, err := svc.List(&UserListRequest{Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("List(admin) failed: %v", err)
	}
	if admins.Total != 1 || admins.Users[0].Username != "carol" {
		t.Errorf("unexpected admin list: %+v", admins)
	}

	matched, err := svc.List(&UserListRequest{Keyword: "ali"})
	if err != nil {
		t.Fatalf("List(keyword) failed: %v", err)
	}
	if matched.Total != 1 || matched.Users[0].Username != "alice" {
		t.Errorf("unexpected keyword match: %+v", matched)
	}
}

func TestSetRole_LastAdminGuard(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	admin := createTestUser(t, db, "admin")
	if err := db.Model(admin).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("role update failed: %v", err)
	}

	assertReason(t, svc.SetRole(admin.ID, models.RoleVolunteer), response.ReasonInvalidState)

	// With a second admin the demotion goes through.
	second := createTestUser(t, db, "backup")
	if err := svc.SetRole(second.ID, models.RoleAdmin); err != nil {
		t.Fatalf("promotion failed: %v", err)
	}
	if err := svc.SetRole(admin.ID, models.RoleVolunteer); err != nil {
		t.Fatalf("demotion failed: %v", err)
	}

	var reloaded models.Profile
	if err := db.First(&reloaded, admin.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Role != models.RoleVolunteer {
		t.Errorf("role = %q, expected volunteer", reloaded.Role)
	}
}

func TestSetRole_InvalidRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, "alice")

	assertReason(t, svc.SetRole(user.ID, "superuser"), response.ReasonValidation)
}

func TestSetActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, "alice")

	if err := svc.SetActive(user.ID, false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	var reloaded models.Profile
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.IsActive {
		t.Error("account should be disabled")
	}

	assertReason(t, svc.SetActive(9999, false), response.ReasonNotFound)
}

func TestCalendarToken_RotateInvalidatesOld(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	user := createTestUser(t, db, "alice")

	current, err := svc.CalendarToken(user.ID)
	if err != nil {
		t.Fatalf("CalendarToken failed: %v", err)
	}
	if current != user.CalendarToken {
		t.Errorf("token = %q, expected %q", current, user.CalendarToken)
	}

	rotated, err := svc.RotateCalendarToken(user.ID)
	if err != nil {
		t.Fatalf("RotateCalendarToken failed: %v", err)
	}
	if rotated == current {
		t.Error("rotation should mint a new token")
	}

	calendars := NewCalendarService(db, NewSettingsService(db))
	if _, err := calendars.Feed(current); err == nil {
		t.Error("old token should stop working after rotation")
	}
	if _, err := calendars.Feed(rotated); err != nil {
		t.Errorf("new token should work: %v", err)
	}
}

func TestCalendarToken_MintedWhenMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)

	profile := models.Profile{Username: "legacy", FullName: "Legacy User", Role: models.RoleVolunteer, IsActive: true}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create failed: %v", err)
	}

	token, err := svc.CalendarToken(profile.ID)
	if err != nil {
		t.Fatalf("CalendarToken failed: %v", err)
	}
	if token == "" {
		t.Error("expected a freshly minted token")
	}
}

package services

import (
	"testing"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
)

func TestSettings_SetAndGet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	if err := svc.Set("org_name", "Riverside Volunteers"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := svc.Get("org_name")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "Riverside Volunteers" {
		t.Errorf("value = %q", value)
	}
}

func TestSettings_SetOverwrites(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	if err := svc.Set("timezone", "Europe/Brussels"); err != nil {
		t.Fatalf("first Set failed: %v", err)
	}
	if err := svc.Set("timezone", "Europe/Amsterdam"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	if got := svc.Timezone(); got != "Europe/Amsterdam" {
		t.Errorf("timezone = %q", got)
	}

	var count int64
	db.Model(&models.OrgSetting{}).Where("key = ?", "timezone").Count(&count)
	if count != 1 {
		t.Errorf("expected upsert, got %d rows", count)
	}
}

func TestSettings_EmptyKeyRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	assertReason(t, svc.Set("", "x"), response.ReasonValidation)
}

func TestSettings_Defaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	if got := svc.GetWithDefault("missing", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q", got)
	}
	if got := svc.GetInt("missing", 42); got != 42 {
		t.Errorf("GetInt default = %d", got)
	}
	if got := svc.Timezone(); got != "Europe/Brussels" {
		t.Errorf("default timezone = %q", got)
	}
}

func TestSettings_GetIntParsesStored(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	if err := svc.Set("audit_retention_days", "90"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.GetInt("audit_retention_days", 30); got != 90 {
		t.Errorf("GetInt = %d, expected 90", got)
	}

	if err := svc.Set("audit_retention_days", "not-a-number"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.GetInt("audit_retention_days", 30); got != 30 {
		t.Errorf("GetInt with junk value = %d, expected default 30", got)
	}
}

func TestSettings_EmailConfig(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	for key, value := range map[string]string{
		"email_enabled":  "true",
		"email_host":     "smtp.example.com",
		"email_port":     "465",
		"email_username": "mailer",
		"email_from":     "noreply@example.com",
		"email_use_tls":  "true",
	} {
		if err := svc.Set(key, value); err != nil {
			t.Fatalf("Set(%s) failed: %v", key, err)
		}
	}

	cfg := svc.EmailConfig()
	if !cfg.Enabled || cfg.Host != "smtp.example.com" || cfg.Port != 465 || !cfg.UseTLS {
		t.Errorf("unexpected email config: %+v", cfg)
	}
	if cfg.From != "noreply@example.com" {
		t.Errorf("from = %q", cfg.From)
	}
}

func TestSettings_All(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(db)

	if err := svc.Set("org_name", "VolunTy"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := svc.Set("timezone", "Europe/Brussels"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	all, err := svc.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if all["org_name"] != "VolunTy" || all["timezone"] != "Europe/Brussels" {
		t.Errorf("unexpected map: %v", all)
	}
}

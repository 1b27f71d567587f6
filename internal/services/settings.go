package services

import (
	"errors"
	"strconv"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

// SettingsService reads and writes organization-level settings, a flat
// key/value table. The timezone key is consumed only by display
// collaborators; scheduling invariants always work on UTC instants.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

func (s *SettingsService) Get(key string) (string, error) {
	var setting models.OrgSetting
	if err := s.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *SettingsService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SettingsService) GetInt(key string, defaultValue int) int {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// Set upserts a single setting.
func (s *SettingsService) Set(key, value string) error {
	if key == "" {
		return response.NewValidation("missing key")
	}
	var setting models.OrgSetting
	err := s.db.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.OrgSetting{Key: key, Value: value}
		return s.db.Create(&setting).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&setting).Update("value", value).Error
}

// All returns every setting as a flat map, the shape the settings API
// exposes.
func (s *SettingsService) All() (map[string]string, error) {
	var settings []models.OrgSetting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(settings))
	for _, st := range settings {
		out[st.Key] = st.Value
	}
	return out, nil
}

// Timezone returns the organization display timezone.
func (s *SettingsService) Timezone() string {
	return s.GetWithDefault("timezone", "Europe/Brussels")
}

// EmailConfig holds SMTP delivery settings assembled from the
// organization settings table.
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

func (s *SettingsService) EmailConfig() *EmailConfig {
	return &EmailConfig{
		Enabled:  s.GetWithDefault("email_enabled", "false") == "true",
		Host:     s.GetWithDefault("email_host", ""),
		Port:     s.GetInt("email_port", 587),
		Username: s.GetWithDefault("email_username", ""),
		Password: s.GetWithDefault("email_password", ""),
		From:     s.GetWithDefault("email_from", ""),
		UseTLS:   s.GetWithDefault("email_use_tls", "true") == "true",
	}
}

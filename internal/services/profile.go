package services

import (
	"errors"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/utils"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

// ProfileService covers the admin user directory and per-user
// calendar token management.
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

type UserListRequest struct {
	Page     int
	PageSize int
	Role     string
	Keyword  string
}

type UserListResponse struct {
	Total int64            `json:"total"`
	Users []models.Profile `json:"users"`
}

func (s *ProfileService) List(req *UserListRequest) (*UserListResponse, error) {
	query := s.db.Model(&models.Profile{})
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Keyword != "" {
		like := "%" + req.Keyword + "%"
		query = query.Where("username LIKE ? OR full_name LIKE ? OR email LIKE ?", like, like, like)
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
		pageSize = 20
	}

	var users []models.Profile
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return &UserListResponse{Total: total, Users: users}, nil
}

// SetRole changes a user's role. The last remaining admin cannot be
// demoted.
func (s *ProfileService) SetRole(userID uint, role string) error {
	if role != models.RoleAdmin && role != models.RoleVolunteer {
		return response.NewValidation("invalid role")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.First(&profile, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.NewNotFound("user not found")
			}
			return err
		}
		if profile.Role == models.RoleAdmin && role != models.RoleAdmin {
			var admins int64
			if err := tx.Model(&models.Profile{}).
				Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return response.NewInvalidState("cannot demote the last admin")
			}
		}
		return tx.Model(&profile).Update("role", role).Error
	})
}

// SetActive enables or disables an account. Disabled users keep their
// assignments but can no longer log in.
func (s *ProfileService) SetActive(userID uint, active bool) error {
	result := s.db.Model(&models.Profile{}).Where("id = ?", userID).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("user not found")
	}
	return nil
}

// CalendarToken returns the user's feed token, minting one for
// accounts created before feeds existed.
func (s *ProfileService) CalendarToken(userID uint) (string, error) {
	var profile models.Profile
	if err := s.db.First(&profile, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NewNotFound("user not found")
		}
		return "", err
	}
	if profile.CalendarToken == "" {
		token := utils.NewCalendarToken()
		if err := s.db.Model(&profile).Update("calendar_token", token).Error; err != nil {
			return "", err
		}
		return token, nil
	}
	return profile.CalendarToken, nil
}

// RotateCalendarToken invalidates the old feed URL and returns a new
// token.
func (s *ProfileService) RotateCalendarToken(userID uint) (string, error) {
	token := utils.NewCalendarToken()
	result := s.db.Model(&models.Profile{}).Where("id = ?", userID).
		Update("calendar_token", token)
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", response.NewNotFound("user not found")
	}
	return token, nil
}

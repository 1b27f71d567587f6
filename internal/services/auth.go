package services

import (
	"errors"
	"time"

	"github.com/volunty/volunty/internal/models"
	"github.com/volunty/volunty/internal/utils"
	"github.com/volunty/volunty/pkg/logger"
	"github.com/volunty/volunty/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db          *gorm.DB
	expireHours int
}

func NewAuthService(db *gorm.DB, expireHours int) *AuthService {
	return &AuthService{db: db, expireHours: expireHours}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
	Email    string `json:"email" binding:"omitempty,email"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

// Register creates a volunteer account. Every account gets a calendar
// token at creation so the ICS feed works without a separate opt-in.
func (s *AuthService) Register(req *RegisterRequest) (*models.Profile, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := models.Profile{
		Username:      req.Username,
		Password:      hash,
		Email:         req.Email,
		FullName:      req.FullName,
		Role:          models.RoleVolunteer,
		CalendarToken: utils.NewCalendarToken(),
		IsActive:      true,
	}
	if err := s.db.Create(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewValidation("username is already taken")
		}
		return nil, err
	}
	return &profile, nil
}

// Login verifies credentials and issues a JWT. Disabled accounts are
// rejected with the same unauthorized reason as bad credentials.
func (s *AuthService) Login(req *LoginRequest) (*LoginResult, error) {
	var profile models.Profile
	if err := s.db.Where("username = ?", req.Username).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid username or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, profile.Password) {
		return nil, response.NewUnauthorized("invalid username or password")
	}
	if !profile.IsActive {
		return nil, response.NewUnauthorized("account is disabled")
	}

	token, err := utils.GenerateToken(profile.ID, profile.Username, profile.Role, s.expireHours)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&profile).Update("last_login", now).Error; err != nil {
		logger.Warn().Err(err).Uint("user_id", profile.ID).Msg("failed to record last login")
	}
	profile.LastLogin = &now

	return &LoginResult{Token: token, User: &profile}, nil
}

func (s *AuthService) GetUserByID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user not found")
		}
		return nil, err
	}
	return &profile, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	profile, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.OldPassword, profile.Password) {
		return response.NewValidation("old password is incorrect")
	}
	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(profile).Update("password", hash).Error
}

// CreateAdminIfNotExists bootstraps the first admin account on a
// fresh database.
func (s *AuthService) CreateAdminIfNotExists(username, password string) error {
	var count int64
	if err := s.db.Model(&models.Profile{}).
		Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.Profile{
		Username:      username,
		Password:      hash,
		FullName:      "Administrator",
		Role:          models.RoleAdmin,
		CalendarToken: utils.NewCalendarToken(),
		IsActive:      true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Info().Str("username", username).Msg("created initial admin account")
	return nil
}

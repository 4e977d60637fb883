// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

// AuthService authenticates back-office admins. There is no public user
// registration; admins are seeded from config or created by another admin.
type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type AuthResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Admin     *models.AdminUser `json:"admin"`
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		config: config,
	}
}

// EnsureAdminUser seeds the configured admin account on first boot. An
// existing account with the configured email is left untouched.
func (s *AuthService) EnsureAdminUser() error {
	if s.config.Admin.Email == "" || s.config.Admin.Password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.AdminUser{}).
		Where("email = ?", s.config.Admin.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &models.AdminUser{Email: s.config.Admin.Email}
	if err := admin.SetPassword(s.config.Admin.Password); err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := s.db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var admin models.AdminUser
	if err := s.db.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid credentials")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := admin.CheckPassword(req.Password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	now := time.Now()
	admin.LastLoginAt = &now
	s.db.Save(&admin)

	token, err := utils.GenerateJWT(admin.ID, admin.Email, s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResponse{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.config.JWT.AccessTokenTTL) * time.Hour),
		Admin:     &admin,
	}, nil
}

func (s *AuthService) ChangePassword(adminID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	var admin models.AdminUser
	if err := s.db.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("admin not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := admin.CheckPassword(req.CurrentPassword); err != nil {
		return errors.New("current password is incorrect")
	}

	if err := admin.SetPassword(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Save(&admin).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// GetAdmin returns the admin for a verified token subject.
func (s *AuthService) GetAdmin(adminID uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.First(&admin, adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("admin not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &admin, nil
}

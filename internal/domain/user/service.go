// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when the user does not exist
var ErrNotFound = errors.New("user not found")

// Service handles user persistence for the upstream API
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SignInRequest carries the identity verified from platform init data
type SignInRequest struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	PhotoURL     string
	LanguageCode string
	IsAdmin      bool
}

// ProfileUpdateRequest represents editable profile fields
type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
}

// Fields returns the request as a field map keyed like the profile form
func (r *ProfileUpdateRequest) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if r.FirstName != nil {
		fields["firstName"] = *r.FirstName
	}
	if r.LastName != nil {
		fields["lastName"] = *r.LastName
	}
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	if r.Phone != nil {
		fields["phone"] = *r.Phone
	}
	return fields
}

// SignIn creates the user on first sight and refreshes identity fields on later logins
func (s *Service) SignIn(req *SignInRequest) (*User, error) {
	now := time.Now().UTC()
	u := User{
		ID:           req.ID,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhotoURL:     req.PhotoURL,
		LanguageCode: req.LanguageCode,
		IsAdmin:      req.IsAdmin,
		LastLoginAt:  &now,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "first_name", "last_name", "photo_url", "language_code", "is_admin", "last_login_at", "updated_at",
		}),
	}).Create(&u).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sign in user: %w", err)
	}

	return s.GetProfile(req.ID)
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(userID int64) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// UpdateProfile updates user profile
func (s *Service) UpdateProfile(userID int64, req *ProfileUpdateRequest) (*User, error) {
	u, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}

	if len(updates) > 0 {
		if err := s.db.Model(u).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetProfile(userID)
}

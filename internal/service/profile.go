package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong  = errors.New("username must be 30 characters or less")
	ErrBadVenmoHandle   = errors.New("venmo handle must start with @")
)

type ProfileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// Get returns the user's profile, or nil when nothing was set yet.
func (s *ProfileService) Get(userID string) (*model.Profile, error) {
	profile, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

type UpdateProfileInput struct {
	Username    *string `json:"username"`
	VenmoHandle *string `json:"venmoHandle"`
}

// Update validates and writes the profile fields, creating the row on first
// use. An empty string clears the field.
func (s *ProfileService) Update(userID string, input UpdateProfileInput) (*model.Profile, error) {
	username := normalize(input.Username)
	if username != nil {
		if len(*username) < 3 {
			return nil, ErrUsernameTooShort
		}
		if len(*username) > 30 {
			return nil, ErrUsernameTooLong
		}
	}

	venmoHandle := normalize(input.VenmoHandle)
	if venmoHandle != nil && !strings.HasPrefix(*venmoHandle, "@") {
		return nil, ErrBadVenmoHandle
	}

	now := time.Now()
	profile, err := s.repo.ByUserID(userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		profile = &model.Profile{
			ID:        uuid.New().String(),
			UserID:    userID,
			CreatedAt: now,
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.Username = username
	profile.VenmoHandle = venmoHandle
	profile.UpdatedAt = now

	err = s.repo.Upsert(profile)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// normalize trims the value and maps empty strings to nil so cleared fields
// are stored as NULL.
func normalize(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

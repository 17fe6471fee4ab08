// Package profile implements the authenticated user's own profile:
// a fixed read projection, sparse partial updates and image clearing.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anisurarzu/goBeyondServer/internal/user"
)

var (
	ErrEmptyPatch       = errors.New("no updatable fields supplied")
	ErrInvalidBirthdate = errors.New("birthdate must be in YYYY-MM-DD format")
)

const birthdateLayout = "2006-01-02"

// UserStore is the slice of the user repository the profile service needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	UpdateProfile(ctx context.Context, userID int64, patch user.ProfilePatch) (*user.User, error)
	ClearImage(ctx context.Context, userID int64) (*user.User, error)
}

// UpdateRequest carries the raw optional fields of a profile update.
// Image is special: ImageSet distinguishes "image key present" (clear or
// overwrite) from "image key absent" (leave untouched).
type UpdateRequest struct {
	Name       *string
	FirstName  *string
	LastName   *string
	Profession *string
	Birthdate  *string
	Image      *string
	ImageSet   bool
}

// Service handles profile reads and sparse updates.
type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Get returns the profile projection for the given user.
func (s *Service) Get(ctx context.Context, userID int64) (*user.Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u.ToProfile(), nil
}

// Update applies a sparse update: only supplied fields are written,
// string fields are trimmed, and a trimmed-empty string counts as
// omitted for everything except the image, where empty (or null) clears.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateRequest) (*user.Profile, error) {
	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	u, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u.ToProfile(), nil
}

// DeleteImage unconditionally clears the profile image. Idempotent.
func (s *Service) DeleteImage(ctx context.Context, userID int64) (*user.Profile, error) {
	u, err := s.users.ClearImage(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to clear image: %w", err)
	}
	return u.ToProfile(), nil
}

func buildPatch(req UpdateRequest) (user.ProfilePatch, error) {
	var patch user.ProfilePatch

	patch.Name = trimmed(req.Name)
	patch.FirstName = trimmed(req.FirstName)
	patch.LastName = trimmed(req.LastName)
	patch.Profession = trimmed(req.Profession)

	if bd := trimmed(req.Birthdate); bd != nil {
		parsed, err := time.Parse(birthdateLayout, *bd)
		if err != nil {
			return user.ProfilePatch{}, ErrInvalidBirthdate
		}
		patch.Birthdate = &parsed
	}

	if req.ImageSet {
		if img := trimmed(req.Image); img != nil {
			patch.Image = img
		} else {
			patch.ClearImage = true
		}
	}

	return patch, nil
}

// trimmed returns the trimmed value, or nil when the field was omitted
// or trimmed down to nothing.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

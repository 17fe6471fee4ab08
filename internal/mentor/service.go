package mentor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

var (
	ErrNotOwner          = errors.New("mentor belongs to a different user")
	ErrEmptyPatch        = errors.New("no updatable fields supplied")
	ErrTitleRequired     = errors.New("title is required")
	ErrNegativeRate      = errors.New("hourly rate must not be negative")
	ErrInvalidLanguages  = errors.New("each language entry needs code, language and level")
	ErrImageAlreadyEmpty = errors.New("mentor has no image to delete")
)

// Store is the slice of the mentor repository the service needs.
// *Repository satisfies it; tests substitute fakes.
type Store interface {
	List(ctx context.Context, f Filters) ([]*Mentor, error)
	GetByID(ctx context.Context, id int64) (*Mentor, error)
	GetByUserID(ctx context.Context, userID int64) (*Mentor, error)
	Create(ctx context.Context, userID int64, nm NewMentor) (*Mentor, error)
	CreateWithUser(ctx context.Context, nu user.NewUser, nm NewMentor) (*user.User, *Mentor, error)
	Update(ctx context.Context, id int64, patch Patch) (*Mentor, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles mentor directory business logic. It issues tokens
// itself for the public signup path, exactly like auth.Service.Register.
type Service struct {
	store        Store
	tokenService auth.TokenService
	logger       *logging.Logger
}

func NewService(store Store, tokenService auth.TokenService, logger *logging.Logger) *Service {
	return &Service{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// List returns mentors matching the filters. The language filter runs
// here, over the decoded language documents, after the relational query.
func (s *Service) List(ctx context.Context, f Filters) ([]*Mentor, error) {
	mentors, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	if f.Language == "" {
		return mentors, nil
	}

	filtered := make([]*Mentor, 0, len(mentors))
	for _, m := range mentors {
		if m.HasLanguage(f.Language) {
			filtered = append(filtered, m)
		}
	}

	return filtered, nil
}

// GetByID returns one mentor by its id.
func (s *Service) GetByID(ctx context.Context, id int64) (*Mentor, error) {
	return s.store.GetByID(ctx, id)
}

// GetByUserID returns the mentor profile owned by the given user.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Mentor, error) {
	return s.store.GetByUserID(ctx, userID)
}

// CreateStandalone creates a mentor profile for an already-authenticated
// owner. The unique constraint on user_id rejects a second profile.
func (s *Service) CreateStandalone(ctx context.Context, ownerUserID int64, nm NewMentor) (*Mentor, error) {
	if err := normalizeNewMentor(&nm); err != nil {
		return nil, err
	}

	return s.store.Create(ctx, ownerUserID, nm)
}

// SignupResult is the outcome of the public mentor signup: the new
// account, its mentor profile, and a token pair.
type SignupResult struct {
	User   *user.User
	Mentor *Mentor
	Tokens *auth.AuthTokens
}

// CreateWithNewUser creates a user account and its mentor profile as one
// atomic operation, then issues tokens just like registration does. When
// the email is taken the transaction rolls back and nothing is inserted.
func (s *Service) CreateWithNewUser(ctx context.Context, email, password string, name *string, nm NewMentor) (*SignupResult, error) {
	email = auth.NormalizeEmail(email)
	if email == "" {
		return nil, auth.ErrEmailRequired
	}
	if password == "" {
		return nil, auth.ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, auth.ErrPasswordTooShort
	}
	if err := normalizeNewMentor(&nm); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	newUser, newMentor, err := s.store.CreateWithUser(ctx, user.NewUser{
		Email:        email,
		PasswordHash: &passwordHash,
		Name:         name,
	}, nm)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokenService.IssueAccess(newUser.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	refreshToken, err := s.tokenService.IssueRefresh(newUser.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &SignupResult{
		User:   newUser,
		Mentor: newMentor,
		Tokens: &auth.AuthTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
		},
	}, nil
}

// Update applies a sparse patch to a mentor owned by the acting user.
func (s *Service) Update(ctx context.Context, id, actingUserID int64, patch Patch) (*Mentor, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actingUserID {
		return nil, ErrNotOwner
	}

	if err := normalizePatch(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	return s.store.Update(ctx, id, patch)
}

// Delete removes a mentor owned by the acting user.
func (s *Service) Delete(ctx context.Context, id, actingUserID int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != actingUserID {
		return ErrNotOwner
	}

	return s.store.Delete(ctx, id)
}

// DeleteImage clears the image of the acting user's mentor profile.
// Unlike the profile counterpart this one is not idempotent: clearing an
// already-empty image is rejected.
func (s *Service) DeleteImage(ctx context.Context, ownerUserID int64) (*Mentor, error) {
	existing, err := s.store.GetByUserID(ctx, ownerUserID)
	if err != nil {
		return nil, err
	}
	if existing.Image == nil || *existing.Image == "" {
		return nil, ErrImageAlreadyEmpty
	}

	return s.store.Update(ctx, existing.ID, Patch{ClearImage: true})
}

func normalizeNewMentor(nm *NewMentor) error {
	nm.Title = strings.TrimSpace(nm.Title)
	if nm.Title == "" {
		return ErrTitleRequired
	}
	if nm.HourlyRate < 0 {
		return ErrNegativeRate
	}
	if err := validateLanguages(nm.Languages); err != nil {
		return err
	}
	return nil
}

func normalizePatch(p *Patch) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			// A trimmed-empty title counts as omitted; title stays required.
			p.Title = nil
		} else {
			p.Title = &t
		}
	}
	if p.HourlyRate != nil && *p.HourlyRate < 0 {
		return ErrNegativeRate
	}
	if p.Languages != nil {
		if err := validateLanguages(*p.Languages); err != nil {
			return err
		}
	}
	return nil
}

func validateLanguages(langs []Language) error {
	for _, l := range langs {
		if l.Code == "" || l.Language == "" || l.Level == "" {
			return ErrInvalidLanguages
		}
	}
	return nil
}

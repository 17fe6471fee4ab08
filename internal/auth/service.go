package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNoPasswordSet marks an external-identity-only account. Handlers
	// respond to it exactly like ErrInvalidCredentials so the two cases
	// are indistinguishable from outside.
	ErrNoPasswordSet      = errors.New("account has no password set")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrMissingEmail       = errors.New("external profile has no email")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSamePassword       = errors.New("new password must differ from the current one")
	ErrRefreshRequired    = errors.New("refresh token is required")
)

// AuthTokens is the access/refresh pair returned after a successful
// registration, login or refresh.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
}

// Service handles authentication business logic
type Service struct {
	users        UserStore
	tokenService TokenService
	emailService EmailService
	logger       *logging.Logger
}

func NewService(users UserStore, tokenService TokenService, emailService EmailService, logger *logging.Logger) *Service {
	return &Service{
		users:        users,
		tokenService: tokenService,
		emailService: emailService,
		logger:       logger,
	}
}

// NormalizeEmail lowercases and trims an email. Every lookup and every
// stored row goes through this, so case variants collide on the unique
// constraint.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account and returns it with a token pair.
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*user.User, *AuthTokens, error) {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	// Fast-path duplicate check. The store's unique constraint remains
	// the authoritative guard against a concurrent registration.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			name = nil
		} else {
			name = &trimmed
		}
	}

	newUser, err := s.users.Create(ctx, user.NewUser{
		Email:        email,
		PasswordHash: &passwordHash,
		Name:         name,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, nil, user.ErrDuplicateEmail
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.touchLastActive(ctx, newUser.ID)

	tokens, err := s.issueTokens(newUser.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.emailService != nil {
		displayName := email
		if name != nil {
			displayName = *name
		}
		// Non-blocking; a failed welcome mail never fails registration.
		go func() {
			if err := s.emailService.SendWelcomeEmail(context.Background(), email, displayName); err != nil {
				s.logger.Warn("failed to send welcome email", "email", email, "error", err)
			}
		}()
	}

	return newUser, tokens, nil
}

// Login authenticates with email and password and returns the user with
// a token pair. A missing account, an external-only account and a wrong
// password all surface identically to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, *AuthTokens, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.HasPassword() {
		return nil, nil, ErrNoPasswordSet
	}
	if !CheckPassword(password, *existing.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	s.touchLastActive(ctx, existing.ID)

	tokens, err := s.issueTokens(existing.ID)
	if err != nil {
		return nil, nil, err
	}

	return existing, tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh access/refresh
// pair. The previous refresh token is not recorded as spent, so it stays
// valid until natural expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	if refreshToken == "" {
		return nil, ErrRefreshRequired
	}

	claims, err := s.tokenService.Verify(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}

	// Re-confirm the subject still exists; a deleted account must not be
	// able to mint new tokens.
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return s.issueTokens(claims.UserID)
}

// GoogleLogin accepts an external identity profile and resolves it to a
// local account: already linked, linkable by email, or brand new.
func (s *Service) GoogleLogin(ctx context.Context, profile ExternalProfile) (*user.User, *AuthTokens, error) {
	if profile.Email() == "" {
		return nil, nil, ErrMissingEmail
	}

	byGoogleID, err := s.users.GetByGoogleID(ctx, profile.ID)
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	var byEmail *user.User
	if byGoogleID == nil {
		byEmail, err = s.users.GetByEmail(ctx, profile.Email())
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			return nil, nil, fmt.Errorf("failed to get user by email: %w", err)
		}
	}

	action := decideExternalLogin(byGoogleID, byEmail, profile)

	var resolved *user.User
	switch action.typ {
	case actionAccept:
		resolved = action.user
	case actionLink:
		if err := s.users.LinkGoogleID(ctx, action.user.ID, profile.ID, profile.Photo()); err != nil {
			return nil, nil, fmt.Errorf("failed to link google id: %w", err)
		}
		resolved = action.user
	case actionCreate:
		resolved, err = s.users.Create(ctx, action.new)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	s.touchLastActive(ctx, resolved.ID)

	tokens, err := s.issueTokens(resolved.ID)
	if err != nil {
		return nil, nil, err
	}

	return resolved, tokens, nil
}

// ChangePassword replaces the password of an authenticated subject after
// verifying the current one. A no-op change is rejected.
func (s *Service) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	existing, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !existing.HasPassword() || !CheckPassword(currentPassword, *existing.PasswordHash) {
		return ErrWrongPassword
	}
	if CheckPassword(newPassword, *existing.PasswordHash) {
		return ErrSamePassword
	}

	passwordHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

func (s *Service) issueTokens(userID int64) (*AuthTokens, error) {
	accessToken, err := s.tokenService.IssueAccess(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	refreshToken, err := s.tokenService.IssueRefresh(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	}, nil
}

// touchLastActive updates the last-active timestamp. Best-effort: a
// failure is logged, never part of the auth decision.
func (s *Service) touchLastActive(ctx context.Context, userID int64) {
	if err := s.users.TouchLastActive(ctx, userID); err != nil {
		s.logger.Warn("failed to update last active", "user_id", userID, "error", err)
	}
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

package auth

import (
	"context"

	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// UserStore is the slice of the user repository the auth service needs.
// *user.Repository satisfies it; tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, nu user.NewUser) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*user.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	TouchLastActive(ctx context.Context, userID int64) error
	LinkGoogleID(ctx context.Context, userID int64, googleID string, image *string) error
}

// EmailService sends best-effort notification mail. May be nil when
// SMTP is not configured.
type EmailService interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
}

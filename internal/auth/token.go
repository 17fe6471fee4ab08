package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/anisurarzu/goBeyondServer/internal/config"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenKind = errors.New("wrong token kind")
)

// TokenKind discriminates access tokens from refresh tokens. An access
// token must never be redeemable through the refresh endpoint.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenClaims are the verified contents of a token.
type TokenClaims struct {
	UserID    int64
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService mints and validates signed, self-contained bearer tokens.
// Implementations include JWTService (HS256) and PasetoService (v4.local).
// There is no revocation list: tokens are valid until natural expiry.
type TokenService interface {
	IssueAccess(userID int64) (string, error)
	IssueRefresh(userID int64) (string, error)
	Verify(tokenStr string, expectedKind TokenKind) (*TokenClaims, error)
}

// NewTokenService builds the token backend selected in config.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	switch cfg.Backend {
	case "jwt":
		return NewJWTService(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)
	case "paseto":
		return NewPasetoService([]byte(cfg.AccessSecret), []byte(cfg.RefreshSecret), cfg.AccessTokenDuration, cfg.RefreshTokenDuration)
	default:
		return nil, fmt.Errorf("unknown token backend %q", cfg.Backend)
	}
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims are the JWT claims carried by issued tokens. The kind claim
// is omitted for access tokens.
type jwtClaims struct {
	UserID int64  `json:"user_id"`
	Kind   string `json:"token_kind,omitempty"`
	jwt.RegisteredClaims
}

// JWTService signs tokens with HS256. Access and refresh tokens may use
// distinct secrets and distinct expiry windows.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewJWTService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration) (*JWTService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("jwt secrets must not be empty")
	}
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}, nil
}

// IssueAccess mints an access token for the given subject.
func (s *JWTService) IssueAccess(userID int64) (string, error) {
	return s.issue(userID, KindAccess)
}

// IssueRefresh mints a refresh token for the given subject.
func (s *JWTService) IssueRefresh(userID int64) (string, error) {
	return s.issue(userID, KindRefresh)
}

func (s *JWTService) issue(userID int64, kind TokenKind) (string, error) {
	now := time.Now()

	claims := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiryFor(kind))),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	if kind == KindRefresh {
		claims.Kind = string(KindRefresh)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretFor(kind))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify validates signature and expiry with the secret of the expected
// kind, then checks the kind claim. A token of the wrong kind fails with
// ErrWrongTokenKind even when both kinds share a secret.
func (s *JWTService) Verify(tokenStr string, expectedKind TokenKind) (*TokenClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretFor(expectedKind), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	kind := TokenKind(claims.Kind)
	if kind == "" {
		kind = KindAccess
	}
	if kind != expectedKind {
		return nil, ErrWrongTokenKind
	}

	out := &TokenClaims{
		UserID: claims.UserID,
		Kind:   kind,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

func (s *JWTService) secretFor(kind TokenKind) []byte {
	if kind == KindRefresh {
		return s.refreshSecret
	}
	return s.accessSecret
}

func (s *JWTService) expiryFor(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return s.refreshExpiry
	}
	return s.accessExpiry
}

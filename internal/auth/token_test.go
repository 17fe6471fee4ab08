package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/anisurarzu/goBeyondServer/internal/config"
)

// Both secrets are exactly 32 bytes so the same fixtures drive the
// PASETO backend too.
const (
	testAccessSecret  = "access-secret-32-bytes-long-key!"
	testRefreshSecret = "refresh-secret-32-bytes-long-ok!"

	testAccessExpiry  = 15 * time.Minute
	testRefreshExpiry = 168 * time.Hour
)

// newTestBackends builds one instance of every token backend with the
// given expiries, so each test runs against both implementations.
func newTestBackends(t *testing.T, accessExpiry, refreshExpiry time.Duration) map[string]TokenService {
	t.Helper()

	jwtService, err := NewJWTService(testAccessSecret, testRefreshSecret, accessExpiry, refreshExpiry)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}

	pasetoService, err := NewPasetoService([]byte(testAccessSecret), []byte(testRefreshSecret), accessExpiry, refreshExpiry)
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}

	return map[string]TokenService{
		"jwt":    jwtService,
		"paseto": pasetoService,
	}
}

func TestIssueAndVerify(t *testing.T) {
	for name, svc := range newTestBackends(t, testAccessExpiry, testRefreshExpiry) {
		t.Run(name, func(t *testing.T) {
			access, err := svc.IssueAccess(42)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}
			refresh, err := svc.IssueRefresh(42)
			if err != nil {
				t.Fatalf("IssueRefresh() error = %v", err)
			}

			claims, err := svc.Verify(access, KindAccess)
			if err != nil {
				t.Fatalf("Verify(access) error = %v", err)
			}
			if claims.UserID != 42 {
				t.Errorf("UserID = %d, want 42", claims.UserID)
			}
			if claims.Kind != KindAccess {
				t.Errorf("Kind = %q, want %q", claims.Kind, KindAccess)
			}
			if claims.ExpiresAt.Before(claims.IssuedAt) {
				t.Errorf("ExpiresAt %v before IssuedAt %v", claims.ExpiresAt, claims.IssuedAt)
			}

			claims, err = svc.Verify(refresh, KindRefresh)
			if err != nil {
				t.Fatalf("Verify(refresh) error = %v", err)
			}
			if claims.Kind != KindRefresh {
				t.Errorf("Kind = %q, want %q", claims.Kind, KindRefresh)
			}
		})
	}
}

// An access token must never pass as a refresh token. With distinct
// secrets per kind the verification already fails on the key, so the
// shared-secret setup is the interesting one: only the kind claim is
// left to tell the two apart.
func TestVerifyWrongKindSharedSecret(t *testing.T) {
	backends := map[string]TokenService{}

	jwtService, err := NewJWTService(testAccessSecret, testAccessSecret, testAccessExpiry, testRefreshExpiry)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	backends["jwt"] = jwtService

	pasetoService, err := NewPasetoService([]byte(testAccessSecret), []byte(testAccessSecret), testAccessExpiry, testRefreshExpiry)
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}
	backends["paseto"] = pasetoService

	for name, svc := range backends {
		t.Run(name, func(t *testing.T) {
			access, err := svc.IssueAccess(7)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}
			refresh, err := svc.IssueRefresh(7)
			if err != nil {
				t.Fatalf("IssueRefresh() error = %v", err)
			}

			if _, err := svc.Verify(access, KindRefresh); !errors.Is(err, ErrWrongTokenKind) {
				t.Errorf("Verify(access as refresh) error = %v, want ErrWrongTokenKind", err)
			}
			if _, err := svc.Verify(refresh, KindAccess); !errors.Is(err, ErrWrongTokenKind) {
				t.Errorf("Verify(refresh as access) error = %v, want ErrWrongTokenKind", err)
			}
		})
	}
}

func TestVerifyWrongKindDistinctSecrets(t *testing.T) {
	for name, svc := range newTestBackends(t, testAccessExpiry, testRefreshExpiry) {
		t.Run(name, func(t *testing.T) {
			access, err := svc.IssueAccess(7)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}

			if _, err := svc.Verify(access, KindRefresh); err == nil {
				t.Error("Verify(access as refresh) succeeded, want error")
			}
		})
	}
}

func TestVerifyExpired(t *testing.T) {
	for name, svc := range newTestBackends(t, -time.Minute, -time.Minute) {
		t.Run(name, func(t *testing.T) {
			access, err := svc.IssueAccess(7)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}

			if _, err := svc.Verify(access, KindAccess); !errors.Is(err, ErrExpiredToken) {
				t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
			}
		})
	}
}

func TestVerifyGarbage(t *testing.T) {
	for name, svc := range newTestBackends(t, testAccessExpiry, testRefreshExpiry) {
		t.Run(name, func(t *testing.T) {
			for _, token := range []string{"", "not-a-token", "a.b.c"} {
				if _, err := svc.Verify(token, KindAccess); !errors.Is(err, ErrInvalidToken) {
					t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
				}
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuers := newTestBackends(t, testAccessExpiry, testRefreshExpiry)
	// Same backends with access and refresh secrets swapped, so every
	// token ends up checked against the wrong key.
	verifiers := map[string]TokenService{}

	jwtSwapped, err := NewJWTService(testRefreshSecret, testAccessSecret, testAccessExpiry, testRefreshExpiry)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	verifiers["jwt"] = jwtSwapped

	pasetoSwapped, err := NewPasetoService([]byte(testRefreshSecret), []byte(testAccessSecret), testAccessExpiry, testRefreshExpiry)
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}
	verifiers["paseto"] = pasetoSwapped

	for name, svc := range issuers {
		t.Run(name, func(t *testing.T) {
			access, err := svc.IssueAccess(7)
			if err != nil {
				t.Fatalf("IssueAccess() error = %v", err)
			}

			if _, err := verifiers[name].Verify(access, KindAccess); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() with wrong secret error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewJWTServiceEmptySecret(t *testing.T) {
	if _, err := NewJWTService("", testRefreshSecret, testAccessExpiry, testRefreshExpiry); err == nil {
		t.Error("NewJWTService() with empty access secret should fail")
	}
	if _, err := NewJWTService(testAccessSecret, "", testAccessExpiry, testRefreshExpiry); err == nil {
		t.Error("NewJWTService() with empty refresh secret should fail")
	}
}

func TestNewPasetoServiceBadKeyLength(t *testing.T) {
	if _, err := NewPasetoService([]byte("too-short"), []byte(testRefreshSecret), testAccessExpiry, testRefreshExpiry); err == nil {
		t.Error("NewPasetoService() with short access key should fail")
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "jwt backend", backend: "jwt"},
		{name: "paseto backend", backend: "paseto"},
		{name: "unknown backend", backend: "opaque", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(config.AuthConfig{
				Backend:              tt.backend,
				AccessSecret:         testAccessSecret,
				RefreshSecret:        testRefreshSecret,
				AccessTokenDuration:  testAccessExpiry,
				RefreshTokenDuration: testRefreshExpiry,
			})

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTokenService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && svc == nil {
				t.Fatal("NewTokenService() returned nil service")
			}
		})
	}
}

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anisurarzu/goBeyondServer/internal/httputil"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest represents the password change request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SessionUser is the minimal user projection returned next to tokens.
type SessionUser struct {
	ID    int64   `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// AuthResponse carries the authenticated user and the token pair.
type AuthResponse struct {
	User         SessionUser `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	TokenType    string      `json:"tokenType"`
}

func newAuthResponse(u *user.User, tokens *AuthTokens) AuthResponse {
	return AuthResponse{
		User:         SessionUser{ID: u.ID, Email: u.Email, Name: u.Name},
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenType:    tokens.TokenType,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      409 {object} httputil.Envelope "Email already exists"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	newUser, tokens, err := h.service.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondError(w, "email already exists", http.StatusConflict)
			return
		}
		if isValidationError(err) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondData(w, newAuthResponse(newUser, tokens), http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate user and receive access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.Envelope "Invalid credentials"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	u, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// ErrNoPasswordSet gets the byte-identical response so callers
		// cannot probe which accounts are external-identity-only.
		if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrNoPasswordSet) {
			logger.Warn("login failed", "reason", err.Error())
			httputil.RespondError(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", u.ID)

	httputil.RespondData(w, newAuthResponse(u, tokens), http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a fresh access/refresh pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Missing refresh token"
// @Failure      403 {object} httputil.Envelope "Invalid, expired or wrong-kind refresh token"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid refresh request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	refreshToken := strings.TrimSpace(req.RefreshToken)

	tokens, err := h.service.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, ErrRefreshRequired) {
			logger.Warn("refresh failed: token missing")
			httputil.RespondError(w, "refresh token required", http.StatusBadRequest)
			return
		}
		// 403, not 401: "your access token expired, retry" is a 401; a
		// bad refresh token is not retryable the same way.
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) || errors.Is(err, ErrWrongTokenKind) {
			logger.Warn("refresh failed: invalid refresh token", "error", err.Error())
			httputil.RespondError(w, "invalid refresh token", http.StatusForbidden)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("refresh failed: subject no longer exists")
			httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		logger.Error("refresh failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to refresh token", http.StatusInternalServerError)
		return
	}

	logger.Info("tokens refreshed successfully")

	httputil.RespondData(w, tokens, http.StatusOK)
}

// GoogleLogin handles external-identity login and account linking
// @Summary      External identity login
// @Description  Resolve a provider profile to a local account: accept, link by email, or create
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ExternalProfile true "Provider profile descriptor"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Profile has no email"
// @Router       /auth/google [post]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var profile ExternalProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		logger.Warn("invalid google login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, tokens, err := h.service.GoogleLogin(r.Context(), profile)
	if err != nil {
		if errors.Is(err, ErrMissingEmail) {
			logger.Warn("google login failed: profile has no email")
			httputil.RespondError(w, "external profile has no email", http.StatusBadRequest)
			return
		}
		logger.Error("google login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	logger.Info("google login succeeded", "user_id", u.ID)

	httputil.RespondData(w, newAuthResponse(u, tokens), http.StatusOK)
}

// ChangePassword handles password change for the authenticated user
// @Summary      Change password
// @Description  Replace the current password after verifying it
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "Current and new password"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Validation error or no-op change"
// @Failure      401 {object} httputil.Envelope "Wrong current password"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /auth/change-password [post]
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("change password failed: user not found")
			httputil.RespondError(w, "user not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrWrongPassword) {
			logger.Warn("change password failed: wrong current password")
			httputil.RespondError(w, "current password is incorrect", http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrSamePassword) {
			logger.Warn("change password failed: no-op change")
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if isValidationError(err) {
			logger.Warn("change password failed: validation error", "error", err.Error())
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
			return
		}
		logger.Error("change password failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to change password", http.StatusInternalServerError)
		return
	}

	logger.Info("password changed successfully", "user_id", userID)

	httputil.RespondMessage(w, "password changed successfully", http.StatusOK)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrEmailRequired) ||
		errors.Is(err, ErrInvalidEmailFormat) ||
		errors.Is(err, ErrPasswordRequired) ||
		errors.Is(err, ErrPasswordTooShort)
}

package mentor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/httputil"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// Handler contains HTTP handlers for mentor directory endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest represents the standalone mentor create request body
type CreateRequest struct {
	Title           string     `json:"title"`
	Bio             *string    `json:"bio"`
	Image           *string    `json:"image"`
	YearsExperience *int       `json:"yearsExperience"`
	Timezone        *string    `json:"timezone"`
	HourlyRate      float64    `json:"hourlyRate"`
	Currency        *string    `json:"currency"`
	Languages       []Language `json:"languages"`
}

func (req CreateRequest) toNewMentor() NewMentor {
	return NewMentor{
		Title:           req.Title,
		Bio:             req.Bio,
		Image:           req.Image,
		YearsExperience: req.YearsExperience,
		Timezone:        req.Timezone,
		HourlyRate:      req.HourlyRate,
		Currency:        req.Currency,
		Languages:       req.Languages,
	}
}

// SignupRequest represents the public mentor signup request body
type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	CreateRequest
}

// SignupResponse carries the new account, mentor profile and tokens.
type SignupResponse struct {
	User         auth.SessionUser `json:"user"`
	Mentor       *Mentor          `json:"mentor"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	TokenType    string           `json:"tokenType"`
}

// List returns mentors matching the query filters
// @Summary      List mentors
// @Description  Filters: approved, active, min_rate, max_rate, search, language — all optional
// @Tags         mentors
// @Produce      json
// @Param        approved query bool false "Approval flag"
// @Param        active query bool false "Active flag"
// @Param        min_rate query number false "Inclusive lower hourly-rate bound"
// @Param        max_rate query number false "Inclusive upper hourly-rate bound"
// @Param        search query string false "Case-insensitive substring over title and bio"
// @Param        language query string false "Language code (exact) or name (case-insensitive)"
// @Success      200 {object} httputil.Envelope
// @Router       /mentors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	filters, err := parseFilters(r)
	if err != nil {
		logger.Warn("invalid list filters", "error", err.Error())
		httputil.RespondError(w, "invalid filter parameters", http.StatusBadRequest)
		return
	}

	mentors, err := h.service.List(r.Context(), filters)
	if err != nil {
		logger.Error("failed to list mentors", "error", err.Error())
		httputil.RespondError(w, "failed to list mentors", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, mentors, http.StatusOK)
}

// GetByID returns one mentor
// @Summary      Get mentor by id
// @Tags         mentors
// @Produce      json
// @Param        id path int true "Mentor id"
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Mentor not found"
// @Router       /mentors/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "invalid mentor id", http.StatusBadRequest)
		return
	}

	m, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "mentor not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get mentor", "error", err.Error())
		httputil.RespondError(w, "failed to get mentor", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, m, http.StatusOK)
}

// GetByUserID returns the mentor profile owned by a user
// @Summary      Get mentor by owning user id
// @Tags         mentors
// @Produce      json
// @Param        userID path int true "Owning user id"
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "Mentor not found"
// @Router       /mentors/user/{userID} [get]
func (h *Handler) GetByUserID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	m, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "mentor not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get mentor", "error", err.Error())
		httputil.RespondError(w, "failed to get mentor", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, m, http.StatusOK)
}

// Create creates a mentor profile for the authenticated user
// @Summary      Create mentor profile
// @Tags         mentors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Mentor fields"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      409 {object} httputil.Envelope "User already has a mentor profile"
// @Router       /mentors [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid mentor create body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.service.CreateStandalone(r.Context(), userID, req.toNewMentor())
	if err != nil {
		if errors.Is(err, ErrDuplicateMentor) {
			logger.Warn("mentor create failed: profile already exists", "user_id", userID)
			httputil.RespondError(w, "user already has a mentor profile", http.StatusConflict)
			return
		}
		if isMentorValidationError(err) {
			logger.Warn("mentor create failed: validation error", "error", err.Error())
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
			return
		}
		logger.Error("mentor create failed", "error", err.Error())
		httputil.RespondError(w, "failed to create mentor", http.StatusInternalServerError)
		return
	}

	logger.Info("mentor created", "mentor_id", m.ID, "user_id", userID)

	httputil.RespondData(w, m, http.StatusCreated)
}

// Signup creates a user account and mentor profile in one atomic operation
// @Summary      Public mentor signup
// @Description  Creates the account and the mentor profile all-or-nothing and issues tokens
// @Tags         mentors
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Account and mentor fields"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      409 {object} httputil.Envelope "Email already exists"
// @Router       /mentors/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid mentor signup body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	result, err := h.service.CreateWithNewUser(r.Context(), req.Email, req.Password, req.Name, req.toNewMentor())
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("mentor signup failed: email already exists")
			httputil.RespondError(w, "email already exists", http.StatusConflict)
			return
		}
		if isMentorValidationError(err) || isAuthValidationError(err) {
			logger.Warn("mentor signup failed: validation error", "error", err.Error())
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
			return
		}
		logger.Error("mentor signup failed", "error", err.Error())
		httputil.RespondError(w, "failed to sign up", http.StatusInternalServerError)
		return
	}

	logger.Info("mentor signup succeeded", "user_id", result.User.ID, "mentor_id", result.Mentor.ID)

	httputil.RespondData(w, SignupResponse{
		User:         auth.SessionUser{ID: result.User.ID, Email: result.User.Email, Name: result.User.Name},
		Mentor:       result.Mentor,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		TokenType:    result.Tokens.TokenType,
	}, http.StatusCreated)
}

// Update applies a sparse patch to an owned mentor profile
// @Summary      Update mentor profile
// @Description  Owner only; isApproved is not writable through this endpoint
// @Tags         mentors
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Mentor id"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Empty patch or validation error"
// @Failure      403 {object} httputil.Envelope "Not the owner"
// @Failure      404 {object} httputil.Envelope "Mentor not found"
// @Router       /mentors/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "invalid mentor id", http.StatusBadRequest)
		return
	}

	patch, err := decodePatch(r)
	if err != nil {
		logger.Warn("invalid mentor update body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.service.Update(r.Context(), id, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondError(w, "mentor not found", http.StatusNotFound)
		case errors.Is(err, ErrNotOwner):
			logger.Warn("mentor update forbidden", "mentor_id", id, "user_id", userID)
			httputil.RespondError(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, ErrEmptyPatch):
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		case isMentorValidationError(err):
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
		default:
			logger.Error("mentor update failed", "error", err.Error())
			httputil.RespondError(w, "failed to update mentor", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("mentor updated", "mentor_id", id, "user_id", userID)

	httputil.RespondData(w, m, http.StatusOK)
}

// Delete removes an owned mentor profile
// @Summary      Delete mentor profile
// @Tags         mentors
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Mentor id"
// @Success      200 {object} httputil.Envelope
// @Failure      403 {object} httputil.Envelope "Not the owner"
// @Failure      404 {object} httputil.Envelope "Mentor not found"
// @Router       /mentors/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondError(w, "invalid mentor id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondError(w, "mentor not found", http.StatusNotFound)
		case errors.Is(err, ErrNotOwner):
			logger.Warn("mentor delete forbidden", "mentor_id", id, "user_id", userID)
			httputil.RespondError(w, "forbidden", http.StatusForbidden)
		default:
			logger.Error("mentor delete failed", "error", err.Error())
			httputil.RespondError(w, "failed to delete mentor", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("mentor deleted", "mentor_id", id, "user_id", userID)

	httputil.RespondMessage(w, "mentor deleted", http.StatusOK)
}

// DeleteImage clears the image of the authenticated user's mentor profile
// @Summary      Delete mentor image
// @Tags         mentors
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Image already empty"
// @Failure      404 {object} httputil.Envelope "Mentor not found"
// @Router       /mentors/image [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	m, err := h.service.DeleteImage(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			httputil.RespondError(w, "mentor not found", http.StatusNotFound)
		case errors.Is(err, ErrImageAlreadyEmpty):
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Error("mentor image delete failed", "error", err.Error())
			httputil.RespondError(w, "failed to delete image", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("mentor image deleted", "mentor_id", m.ID, "user_id", userID)

	httputil.RespondData(w, m, http.StatusOK)
}

func parseFilters(r *http.Request) (Filters, error) {
	var f Filters
	q := r.URL.Query()

	if v := q.Get("approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Filters{}, err
		}
		f.Approved = &b
	}
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Filters{}, err
		}
		f.Active = &b
	}
	if v := q.Get("min_rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filters{}, err
		}
		f.MinRate = &rate
	}
	if v := q.Get("max_rate"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Filters{}, err
		}
		f.MaxRate = &rate
	}
	f.Search = q.Get("search")
	f.Language = q.Get("language")

	return f, nil
}

// decodePatch reads the body as raw JSON so "image": null can be told
// apart from an omitted image key, same as the profile update.
func decodePatch(r *http.Request) (Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return Patch{}, err
	}

	var patch Patch
	for key, msg := range raw {
		var err error
		switch key {
		case "title":
			err = json.Unmarshal(msg, &patch.Title)
		case "bio":
			err = json.Unmarshal(msg, &patch.Bio)
		case "image":
			var img *string
			if err = json.Unmarshal(msg, &img); err == nil {
				if img == nil || *img == "" {
					patch.ClearImage = true
				} else {
					patch.Image = img
				}
			}
		case "yearsExperience":
			err = json.Unmarshal(msg, &patch.YearsExperience)
		case "timezone":
			err = json.Unmarshal(msg, &patch.Timezone)
		case "hourlyRate":
			err = json.Unmarshal(msg, &patch.HourlyRate)
		case "currency":
			err = json.Unmarshal(msg, &patch.Currency)
		case "languages":
			err = json.Unmarshal(msg, &patch.Languages)
		case "isActive":
			err = json.Unmarshal(msg, &patch.IsActive)
		}
		if err != nil {
			return Patch{}, err
		}
	}

	return patch, nil
}

func isMentorValidationError(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrNegativeRate) ||
		errors.Is(err, ErrInvalidLanguages)
}

func isAuthValidationError(err error) bool {
	return errors.Is(err, auth.ErrEmailRequired) ||
		errors.Is(err, auth.ErrPasswordRequired) ||
		errors.Is(err, auth.ErrPasswordTooShort)
}

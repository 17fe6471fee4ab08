package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/anisurarzu/goBeyondServer/internal/auth"
	"github.com/anisurarzu/goBeyondServer/internal/httputil"
	"github.com/anisurarzu/goBeyondServer/internal/logging"
	"github.com/anisurarzu/goBeyondServer/internal/user"
)

// Handler contains HTTP handlers for profile endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get returns the authenticated user's profile
// @Summary      Get profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.service.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("profile not found", "user_id", userID)
			httputil.RespondError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get profile", "error", err.Error())
		httputil.RespondError(w, "failed to get profile", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, p, http.StatusOK)
}

// Update applies a sparse profile update
// @Summary      Update profile
// @Description  Only supplied fields are written; "image": null or "" clears the image
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.Envelope "Empty patch or invalid birthdate"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /profile [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	req, err := decodeUpdateRequest(r)
	if err != nil {
		logger.Warn("invalid profile update body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyPatch):
			logger.Warn("profile update rejected: empty patch", "user_id", userID)
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrInvalidBirthdate):
			logger.Warn("profile update rejected: invalid birthdate", "user_id", userID)
			httputil.RespondValidationErrors(w, "validation failed", []string{err.Error()}, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("profile update failed: user not found", "user_id", userID)
			httputil.RespondError(w, "user not found", http.StatusNotFound)
		default:
			logger.Error("profile update failed", "error", err.Error())
			httputil.RespondError(w, "failed to update profile", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("profile updated", "user_id", userID)

	httputil.RespondData(w, p, http.StatusOK)
}

// DeleteImage clears the profile image
// @Summary      Delete profile image
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /profile/image [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.service.DeleteImage(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("delete image failed: user not found", "user_id", userID)
			httputil.RespondError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.Error("delete image failed", "error", err.Error())
		httputil.RespondError(w, "failed to delete image", http.StatusInternalServerError)
		return
	}

	logger.Info("profile image deleted", "user_id", userID)

	httputil.RespondData(w, p, http.StatusOK)
}

// decodeUpdateRequest reads the body as raw JSON so that an explicit
// "image": null can be told apart from an omitted image key. Absent keys
// leave fields untouched; plain *string decoding would collapse the two.
func decodeUpdateRequest(r *http.Request) (UpdateRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return UpdateRequest{}, err
	}

	var req UpdateRequest
	if err := unmarshalField(raw, "name", &req.Name); err != nil {
		return UpdateRequest{}, err
	}
	if err := unmarshalField(raw, "firstName", &req.FirstName); err != nil {
		return UpdateRequest{}, err
	}
	if err := unmarshalField(raw, "lastName", &req.LastName); err != nil {
		return UpdateRequest{}, err
	}
	if err := unmarshalField(raw, "profession", &req.Profession); err != nil {
		return UpdateRequest{}, err
	}
	if err := unmarshalField(raw, "birthdate", &req.Birthdate); err != nil {
		return UpdateRequest{}, err
	}
	if msg, ok := raw["image"]; ok {
		req.ImageSet = true
		if err := json.Unmarshal(msg, &req.Image); err != nil {
			return UpdateRequest{}, err
		}
	}

	return req, nil
}

func unmarshalField(raw map[string]json.RawMessage, key string, dst **string) error {
	msg, ok := raw[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(msg, dst)
}

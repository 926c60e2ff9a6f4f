package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// Get returns the caller's profile, or JSON null when none was set yet.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	profile, err := h.profileService.Get(user.ID)
	if err != nil {
		slog.Error("failed to get profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var input service.UpdateProfileInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.profileService.Update(user.ID, input)
	switch {
	case errors.Is(err, service.ErrUsernameTooShort),
		errors.Is(err, service.ErrUsernameTooLong),
		errors.Is(err, service.ErrBadVenmoHandle):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, repository.ErrUsernameTaken):
		respondError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		slog.Error("failed to update profile", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

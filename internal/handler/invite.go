package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stakeproof/stakeproof/internal/config"
	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
)

type InviteHandler struct {
	inviteService *service.InviteService
	cfg           *config.Config
}

func NewInviteHandler(inviteService *service.InviteService, cfg *config.Config) *InviteHandler {
	return &InviteHandler{
		inviteService: inviteService,
		cfg:           cfg,
	}
}

type inviteCodeResponse struct {
	InviteCode string `json:"inviteCode"`
	InviteURL  string `json:"inviteUrl"`
}

// CreateCode mints a new invite code for the goal, replacing any earlier one.
func (h *InviteHandler) CreateCode(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	code, err := h.inviteService.CreateInviteCode(user.ID, goalID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case errors.Is(err, service.ErrNotGoalOwner):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		slog.Error("failed to create invite code", "error", err, "user_id", user.ID, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to create invite code")
		return
	}

	respondJSON(w, http.StatusCreated, inviteCodeResponse{
		InviteCode: code,
		InviteURL:  h.cfg.InviteURL(code),
	})
}

// Resolve returns the goal behind an invite code, the owner's display name,
// and whether the caller already joined.
func (h *InviteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	code := r.PathValue("code")

	details, err := h.inviteService.ResolveInvite(code, user.ID)
	switch {
	case errors.Is(err, repository.ErrInviteNotFound), errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "invalid invite code")
		return
	case err != nil:
		slog.Error("failed to resolve invite", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to resolve invite")
		return
	}

	respondJSON(w, http.StatusOK, details)
}

// Join adds the caller as a partner on the goal.
func (h *InviteHandler) Join(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	participant, err := h.inviteService.Join(goalID, user.ID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case errors.Is(err, repository.ErrAlreadyJoined):
		respondError(w, http.StatusConflict, "you are already a partner for this goal")
		return
	case err != nil:
		slog.Error("failed to join goal", "error", err, "user_id", user.ID, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to join goal")
		return
	}

	respondJSON(w, http.StatusCreated, participant)
}

func (h *InviteHandler) Participants(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	participants, err := h.inviteService.Participants(user.ID, goalID)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case err != nil:
		slog.Error("failed to list participants", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to load participants")
		return
	}

	respondJSON(w, http.StatusOK, participants)
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type createGoalRequest struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Deadline         time.Time `json:"deadline"`
	StakeAmountCents int       `json:"stakeAmountCents"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGoalRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Create(user.ID, service.CreateGoalInput{
		Title:            req.Title,
		Description:      req.Description,
		Deadline:         req.Deadline,
		StakeAmountCents: req.StakeAmountCents,
	})
	switch {
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrDeadlineInPast),
		errors.Is(err, service.ErrNegativeStake):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		slog.Error("failed to create goal", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to create goal")
		return
	}

	respondJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ByOwner(user.ID)
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ActiveByOwner(user.ID)
	if err != nil {
		slog.Error("failed to list active goals", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "failed to load goals")
		return
	}

	respondJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.ByID(user.ID, goalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to get goal", "error", err, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *GoalHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var req updateStatusRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.UpdateStatus(user.ID, goalID, req.Status)
	switch {
	case errors.Is(err, repository.ErrGoalNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
		return
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrGoalNotEditable):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrNotGoalOwner):
		respondError(w, http.StatusForbidden, err.Error())
		return
	case err != nil:
		slog.Error("failed to update goal status", "error", err, "user_id", user.ID, "goal_id", goalID)
		respondError(w, http.StatusInternalServerError, "failed to update goal")
		return
	}

	respondJSON(w, http.StatusOK, goal)
}

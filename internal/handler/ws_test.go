package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/realtime"
	"github.com/stakeproof/stakeproof/internal/service"
)

func newWSHandler(goals ...*model.Goal) *WSHandler {
	repo := &stubGoalRepo{goals: make(map[string]*model.Goal)}
	for _, g := range goals {
		repo.goals[g.ID] = g
	}
	goalService := service.NewGoalService(repo, &stubParticipantRepo{})
	return NewWSHandler(realtime.NewHub(), goalService)
}

func TestProofEventsRejectsNonParticipant(t *testing.T) {
	h := newWSHandler(&model.Goal{ID: "goal-1", UserID: "user-2", Status: model.GoalStatusActive})

	// Authenticated as user-1, who has no stake in goal-1.
	req := authedRequest(http.MethodGet, "/api/goals/goal-1/proofs/events", "")
	req.SetPathValue("id", "goal-1")

	w := httptest.NewRecorder()
	h.ProofEvents(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "the gate runs before the upgrade")
}

func TestProofEventsUnknownGoal(t *testing.T) {
	h := newWSHandler()

	req := authedRequest(http.MethodGet, "/api/goals/missing/proofs/events", "")
	req.SetPathValue("id", "missing")

	w := httptest.NewRecorder()
	h.ProofEvents(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeproof/stakeproof/internal/ctxkeys"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
	"github.com/stakeproof/stakeproof/internal/service"
)

type stubGoalRepo struct {
	repository.GoalRepository

	goals map[string]*model.Goal
}

func (s *stubGoalRepo) CreateWithOwner(goal *model.Goal, owner *model.GoalParticipant) error {
	s.goals[goal.ID] = goal
	return nil
}

func (s *stubGoalRepo) ByID(goalID string) (*model.Goal, error) {
	goal, ok := s.goals[goalID]
	if !ok {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}

func (s *stubGoalRepo) ByOwner(userID string) ([]*model.Goal, error) {
	out := []*model.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *stubGoalRepo) UpdateStatus(userID, goalID, status string) (*model.Goal, error) {
	goal, ok := s.goals[goalID]
	if !ok || goal.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	goal.Status = status
	return goal, nil
}

type stubParticipantRepo struct {
	repository.ParticipantRepository

	rows []*model.GoalParticipant
}

func (s *stubParticipantRepo) ByGoalAndUser(goalID, userID string) (*model.GoalParticipant, error) {
	for _, row := range s.rows {
		if row.GoalID == goalID && row.UserID == userID {
			return row, nil
		}
	}
	return nil, repository.ErrParticipantNotFound
}

func newGoalHandler(goals ...*model.Goal) *GoalHandler {
	repo := &stubGoalRepo{goals: make(map[string]*model.Goal)}
	for _, g := range goals {
		repo.goals[g.ID] = g
	}
	return NewGoalHandler(service.NewGoalService(repo, &stubParticipantRepo{}))
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	user := &model.User{ID: "user-1", Email: "alex@example.com", DisplayName: "Alex"}
	return req.WithContext(ctxkeys.WithUser(req.Context(), user))
}

func TestGoalCreateHandler(t *testing.T) {
	h := newGoalHandler()

	deadline := time.Now().Add(14 * 24 * time.Hour).Format(time.RFC3339)
	body := `{"title":"Run a 10k","description":"Finish line photo","deadline":"` + deadline + `","stakeAmountCents":5000}`

	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/goals", body))

	require.Equal(t, http.StatusCreated, w.Code)

	var goal model.Goal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goal))
	assert.Equal(t, "Run a 10k", goal.Title)
	assert.Equal(t, "user-1", goal.UserID)
	assert.Equal(t, model.GoalStatusActive, goal.Status)
}

func TestGoalCreateHandlerValidation(t *testing.T) {
	h := newGoalHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing title", `{"deadline":"2099-01-01T00:00:00Z"}`},
		{"past deadline", `{"title":"x","deadline":"2000-01-01T00:00:00Z"}`},
		{"negative stake", `{"title":"x","deadline":"2099-01-01T00:00:00Z","stakeAmountCents":-1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Create(w, authedRequest(http.MethodPost, "/api/goals", tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestGoalGetHandlerNotFound(t *testing.T) {
	h := newGoalHandler()

	req := authedRequest(http.MethodGet, "/api/goals/missing", "")
	req.SetPathValue("id", "missing")

	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoalGetHandlerOwner(t *testing.T) {
	h := newGoalHandler(&model.Goal{
		ID: "goal-1", UserID: "user-1", Title: "Run a 10k",
		Status: model.GoalStatusActive, Deadline: time.Now().Add(time.Hour),
	})

	req := authedRequest(http.MethodGet, "/api/goals/goal-1", "")
	req.SetPathValue("id", "goal-1")

	w := httptest.NewRecorder()
	h.Get(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var goal model.Goal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goal))
	assert.Equal(t, "goal-1", goal.ID)
}

func TestGoalGetHandlerHidesOtherUsersGoal(t *testing.T) {
	h := newGoalHandler(&model.Goal{
		ID: "goal-1", UserID: "user-2", Title: "Run a 10k",
		Status: model.GoalStatusActive, Deadline: time.Now().Add(time.Hour),
	})

	// Authenticated as user-1, who neither owns nor joined goal-1.
	req := authedRequest(http.MethodGet, "/api/goals/goal-1", "")
	req.SetPathValue("id", "goal-1")

	w := httptest.NewRecorder()
	h.Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "an outsider must not learn the goal exists")
}

func TestGoalUpdateStatusHandlerForbiddenForNonOwner(t *testing.T) {
	h := newGoalHandler(&model.Goal{
		ID: "goal-1", UserID: "user-2", Title: "Run a 10k",
		Status: model.GoalStatusActive, Deadline: time.Now().Add(time.Hour),
	})

	req := authedRequest(http.MethodPatch, "/api/goals/goal-1/status", `{"status":"cancelled"}`)
	req.SetPathValue("id", "goal-1")

	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGoalUpdateStatusHandler(t *testing.T) {
	h := newGoalHandler(&model.Goal{
		ID: "goal-1", UserID: "user-1", Title: "Run a 10k",
		Status: model.GoalStatusActive, Deadline: time.Now().Add(time.Hour),
	})

	req := authedRequest(http.MethodPatch, "/api/goals/goal-1/status", `{"status":"completed"}`)
	req.SetPathValue("id", "goal-1")

	w := httptest.NewRecorder()
	h.UpdateStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var goal model.Goal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &goal))
	assert.Equal(t, model.GoalStatusCompleted, goal.Status)
}

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

var (
	ErrInvalidStatus   = errors.New("invalid goal status")
	ErrNotGoalOwner    = errors.New("only the goal owner may do this")
	ErrDeadlineInPast  = errors.New("deadline must be in the future")
	ErrNegativeStake   = errors.New("stake amount cannot be negative")
	ErrTitleRequired   = errors.New("title is required")
	ErrGoalNotEditable = errors.New("goal status can no longer change")
)

type GoalService struct {
	repo         repository.GoalRepository
	participants repository.ParticipantRepository
}

func NewGoalService(repo repository.GoalRepository, participants repository.ParticipantRepository) *GoalService {
	return &GoalService{
		repo:         repo,
		participants: participants,
	}
}

type CreateGoalInput struct {
	Title            string
	Description      string
	Deadline         time.Time
	StakeAmountCents int
}

// Create inserts the goal together with its owner participant row in one
// transaction. New goals go straight to active.
func (s *GoalService) Create(userID string, input CreateGoalInput) (*model.Goal, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}
	if !input.Deadline.After(time.Now()) {
		return nil, ErrDeadlineInPast
	}
	if input.StakeAmountCents < 0 {
		return nil, ErrNegativeStake
	}

	now := time.Now()
	goal := &model.Goal{
		ID:               uuid.New().String(),
		UserID:           userID,
		Title:            input.Title,
		Description:      input.Description,
		Deadline:         input.Deadline,
		Status:           model.GoalStatusActive,
		StakeAmountCents: input.StakeAmountCents,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	owner := &model.GoalParticipant{
		ID:        uuid.New().String(),
		GoalID:    goal.ID,
		UserID:    userID,
		Role:      model.ParticipantRoleOwner,
		JoinedAt:  &now,
		CreatedAt: now,
	}

	err := s.repo.CreateWithOwner(goal, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// ByID returns the goal only when userID participates in it. Non-participants
// get not-found, never a hint that the goal exists.
func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(goalID)
	if err != nil {
		return nil, err
	}

	if goal.UserID != userID {
		_, err = s.participants.ByGoalAndUser(goalID, userID)
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, repository.ErrGoalNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	return goal, nil
}

func (s *GoalService) ByOwner(userID string) ([]*model.Goal, error) {
	return s.repo.ByOwner(userID)
}

// ActiveByOwner returns pending and active goals ordered by nearest deadline.
func (s *GoalService) ActiveByOwner(userID string) ([]*model.Goal, error) {
	return s.repo.ActiveByOwner(userID)
}

// UpdateStatus applies an owner-initiated status change.
func (s *GoalService) UpdateStatus(userID, goalID, status string) (*model.Goal, error) {
	if !model.ValidGoalStatus(status) {
		return nil, ErrInvalidStatus
	}

	goal, err := s.repo.ByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, ErrNotGoalOwner
	}
	if !goal.IsOpen() {
		return nil, ErrGoalNotEditable
	}

	return s.repo.UpdateStatus(userID, goalID, status)
}

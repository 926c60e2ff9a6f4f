package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

const (
	inviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I
)

// InviteDetails is what a prospective partner sees before joining.
type InviteDetails struct {
	Goal             *model.Goal `json:"goal"`
	OwnerDisplayName string      `json:"ownerDisplayName"`
	AlreadyJoined    bool        `json:"alreadyJoined"`
}

type InviteService struct {
	participants repository.ParticipantRepository
	goals        repository.GoalRepository
	users        repository.UserRepository
}

func NewInviteService(participants repository.ParticipantRepository, goals repository.GoalRepository, users repository.UserRepository) *InviteService {
	return &InviteService{
		participants: participants,
		goals:        goals,
		users:        users,
	}
}

// CreateInviteCode writes a fresh code onto the owner's participant row.
// Calling it again overwrites the previous code; a goal has at most one
// live invite code at a time.
func (s *InviteService) CreateInviteCode(userID, goalID string) (string, error) {
	goal, err := s.goals.ByID(goalID)
	if err != nil {
		return "", err
	}
	if goal.UserID != userID {
		return "", ErrNotGoalOwner
	}

	code, err := generateInviteCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	err = s.participants.SetInviteCode(goalID, code)
	if err != nil {
		return "", fmt.Errorf("failed to store invite code: %w", err)
	}

	return code, nil
}

// ExistingInviteCode returns the owner's current code, or nil if none was
// ever created.
func (s *InviteService) ExistingInviteCode(goalID string) (*string, error) {
	return s.participants.OwnerInviteCode(goalID)
}

// ResolveInvite looks up the goal behind a code and reports whether the
// requesting user already participates.
func (s *InviteService) ResolveInvite(code, requestingUserID string) (*InviteDetails, error) {
	ownerRow, err := s.participants.ByInviteCode(code)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.ByID(ownerRow.GoalID)
	if err != nil {
		return nil, err
	}

	details := &InviteDetails{Goal: goal}

	owner, err := s.users.ByID(goal.UserID)
	if err == nil {
		details.OwnerDisplayName = owner.DisplayName
	}

	if requestingUserID != "" {
		_, err = s.participants.ByGoalAndUser(goal.ID, requestingUserID)
		if err == nil {
			details.AlreadyJoined = true
		} else if !errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, err
		}
	}

	return details, nil
}

// Join adds the user as a partner. A second join for the same goal fails
// with repository.ErrAlreadyJoined instead of creating another row.
func (s *InviteService) Join(goalID, userID string) (*model.GoalParticipant, error) {
	_, err := s.goals.ByID(goalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	participant := &model.GoalParticipant{
		ID:        uuid.New().String(),
		GoalID:    goalID,
		UserID:    userID,
		Role:      model.ParticipantRolePartner,
		JoinedAt:  &now,
		CreatedAt: now,
	}

	err = s.participants.Create(participant)
	if err != nil {
		return nil, err
	}

	return participant, nil
}

// Participants lists the goal's participant rows. Only participants may see
// them; outsiders get not-found.
func (s *InviteService) Participants(userID, goalID string) ([]*model.GoalParticipant, error) {
	_, err := s.participants.ByGoalAndUser(goalID, userID)
	if errors.Is(err, repository.ErrParticipantNotFound) {
		return nil, repository.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.participants.ByGoal(goalID)
}

func generateInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	_, err := rand.Read(buf)
	if err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

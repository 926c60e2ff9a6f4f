package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeproof/stakeproof/internal/model"
	"github.com/stakeproof/stakeproof/internal/repository"
)

type fakeParticipantRepo struct {
	repository.ParticipantRepository

	rows      []*model.GoalParticipant
	codes     map[string]string // goalID -> owner invite code
	createErr error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{codes: make(map[string]string)}
}

func (f *fakeParticipantRepo) Create(p *model.GoalParticipant) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, row := range f.rows {
		if row.GoalID == p.GoalID && row.UserID == p.UserID {
			return repository.ErrAlreadyJoined
		}
	}
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakeParticipantRepo) ByGoal(goalID string) ([]*model.GoalParticipant, error) {
	var out []*model.GoalParticipant
	for _, row := range f.rows {
		if row.GoalID == goalID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) ByGoalAndUser(goalID, userID string) (*model.GoalParticipant, error) {
	for _, row := range f.rows {
		if row.GoalID == goalID && row.UserID == userID {
			return row, nil
		}
	}
	return nil, repository.ErrParticipantNotFound
}

func (f *fakeParticipantRepo) ByInviteCode(code string) (*model.GoalParticipant, error) {
	for goalID, c := range f.codes {
		if c != code {
			continue
		}
		for _, row := range f.rows {
			if row.GoalID == goalID && row.Role == model.ParticipantRoleOwner {
				return row, nil
			}
		}
	}
	return nil, repository.ErrInviteNotFound
}

func (f *fakeParticipantRepo) SetInviteCode(goalID, code string) error {
	f.codes[goalID] = code
	return nil
}

func (f *fakeParticipantRepo) OwnerInviteCode(goalID string) (*string, error) {
	code, ok := f.codes[goalID]
	if !ok {
		return nil, nil
	}
	return &code, nil
}

type fakeUserRepo struct {
	repository.UserRepository

	users map[string]*model.User
}

func (f *fakeUserRepo) Upsert(user *model.User) error {
	if f.users == nil {
		f.users = make(map[string]*model.User)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ByID(id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func inviteFixture(t *testing.T) (*InviteService, *fakeParticipantRepo, *model.Goal) {
	t.Helper()
	goal := testGoal("goal-1", "user-1")
	participants := newFakeParticipantRepo()
	participants.rows = append(participants.rows, &model.GoalParticipant{
		ID: "part-1", GoalID: "goal-1", UserID: "user-1", Role: model.ParticipantRoleOwner,
	})
	users := &fakeUserRepo{users: map[string]*model.User{
		"user-1": {ID: "user-1", DisplayName: "Alex"},
	}}
	return NewInviteService(participants, newFakeGoalRepo(goal), users), participants, goal
}

func TestCreateInviteCode(t *testing.T) {
	svc, participants, _ := inviteFixture(t)

	code, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)

	assert.Len(t, code, 8)
	for _, r := range code {
		assert.Contains(t, inviteCodeAlphabet, string(r))
	}
	assert.Equal(t, code, participants.codes["goal-1"])
}

func TestCreateInviteCodeOverwritesPrevious(t *testing.T) {
	svc, participants, _ := inviteFixture(t)

	first, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)
	second, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, participants.codes["goal-1"])
}

func TestCreateInviteCodeRejectsNonOwner(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	_, err := svc.CreateInviteCode("user-2", "goal-1")
	assert.ErrorIs(t, err, ErrNotGoalOwner)
}

func TestExistingInviteCode(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	code, err := svc.ExistingInviteCode("goal-1")
	require.NoError(t, err)
	assert.Nil(t, code, "no code before one is created")

	created, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)

	code, err = svc.ExistingInviteCode("goal-1")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, created, *code)
}

func TestResolveInvite(t *testing.T) {
	svc, _, goal := inviteFixture(t)
	code, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)

	details, err := svc.ResolveInvite(code, "user-2")
	require.NoError(t, err)

	assert.Equal(t, goal.ID, details.Goal.ID)
	assert.Equal(t, "Alex", details.OwnerDisplayName)
	assert.False(t, details.AlreadyJoined)
}

func TestResolveInviteReportsAlreadyJoined(t *testing.T) {
	svc, _, _ := inviteFixture(t)
	code, err := svc.CreateInviteCode("user-1", "goal-1")
	require.NoError(t, err)

	_, err = svc.Join("goal-1", "user-2")
	require.NoError(t, err)

	details, err := svc.ResolveInvite(code, "user-2")
	require.NoError(t, err)
	assert.True(t, details.AlreadyJoined)
}

func TestResolveInviteUnknownCode(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	_, err := svc.ResolveInvite("NOSUCHCD", "user-2")
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)
}

func TestJoinCreatesPartnerRow(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	p, err := svc.Join("goal-1", "user-2")
	require.NoError(t, err)

	assert.Equal(t, model.ParticipantRolePartner, p.Role)
	require.NotNil(t, p.JoinedAt)

	rows, err := svc.Participants("user-2", "goal-1")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParticipantsHiddenFromNonParticipants(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	_, err := svc.Participants("user-9", "goal-1")
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestJoinTwiceFails(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	_, err := svc.Join("goal-1", "user-2")
	require.NoError(t, err)

	_, err = svc.Join("goal-1", "user-2")
	assert.ErrorIs(t, err, repository.ErrAlreadyJoined)
}

func TestJoinUnknownGoal(t *testing.T) {
	svc, _, _ := inviteFixture(t)

	_, err := svc.Join("missing", "user-2")
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeproof/stakeproof/internal/model"
)

func TestParticipantCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	now := time.Now()
	p := &model.GoalParticipant{
		ID: "part-2", GoalID: "goal-1", UserID: "user-2",
		Role: model.ParticipantRolePartner, JoinedAt: &now, CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goal_participants")).
		WithArgs(p.ID, p.GoalID, p.UserID, p.Role, p.InviteCode, p.InvitedAt, p.JoinedAt, p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(p)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantCreateUniqueViolation(t *testing.T) {
	tests := []struct {
		name   string
		driver error
	}{
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: goal_participants.goal_id, goal_participants.user_id")},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "goal_participants_goal_id_user_id_key" (SQLSTATE 23505)`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewParticipantRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO goal_participants")).
				WillReturnError(tt.driver)

			err := repo.Create(&model.GoalParticipant{ID: "part-2", GoalID: "goal-1", UserID: "user-2"})
			assert.ErrorIs(t, err, ErrAlreadyJoined)
		})
	}
}

func TestParticipantByInviteCodeNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM goal_participants WHERE invite_code = $1")).
		WithArgs("NOSUCHCD").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ByInviteCode("NOSUCHCD")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestParticipantSetInviteCodeTargetsOwnerRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE goal_participants SET invite_code = $1")).
		WithArgs("ABCD2345", sqlmock.AnyArg(), "goal-1", model.ParticipantRoleOwner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetInviteCode("goal-1", "ABCD2345")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantSetInviteCodeNoOwnerRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE goal_participants SET invite_code = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetInviteCode("goal-1", "ABCD2345")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantOwnerInviteCodeNull(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT invite_code FROM goal_participants")).
		WithArgs("goal-1", model.ParticipantRoleOwner).
		WillReturnRows(sqlmock.NewRows([]string{"invite_code"}).AddRow(nil))

	code, err := repo.OwnerInviteCode("goal-1")
	require.NoError(t, err)
	assert.Nil(t, code, "never-invited goal has a NULL code, not an error")
}

func TestParticipantOwnerInviteCode(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewParticipantRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT invite_code FROM goal_participants")).
		WithArgs("goal-1", model.ParticipantRoleOwner).
		WillReturnRows(sqlmock.NewRows([]string{"invite_code"}).AddRow("ABCD2345"))

	code, err := repo.OwnerInviteCode("goal-1")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.Equal(t, "ABCD2345", *code)
}

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

func TestProfileByUserID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	now := time.Now()
	username := "alexruns"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM profiles WHERE user_id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "venmo_handle", "created_at", "updated_at"}).
			AddRow("prof-1", "user-1", username, nil, now, now))

	profile, err := repo.ByUserID("user-1")
	require.NoError(t, err)

	assert.Equal(t, "prof-1", profile.ID)
	require.NotNil(t, profile.Username)
	assert.Equal(t, "alexruns", *profile.Username)
	assert.Nil(t, profile.VenmoHandle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileByUserIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM profiles WHERE user_id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ByUserID("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	now := time.Now()
	username := "alexruns"
	profile := &model.Profile{
		ID: "prof-1", UserID: "user-1", Username: &username,
		CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WithArgs("prof-1", "user-1", "alexruns", nil, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(profile)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpsertDuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnError(errors.New("UNIQUE constraint failed: profiles.username"))

	err := repo.Upsert(&model.Profile{ID: "prof-1", UserID: "user-1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

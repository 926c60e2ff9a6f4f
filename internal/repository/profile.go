package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrUsernameTaken   = errors.New("username already taken")
)

type ProfileRepository interface {
	ByUserID(userID string) (*model.Profile, error)
	// Upsert writes the full profile row keyed by user id. One row per user.
	Upsert(profile *model.Profile) error
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) ByUserID(userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	query := `SELECT * FROM profiles WHERE user_id = $1`

	err := r.db.Get(profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}

	return profile, err
}

func (r *profileRepository) Upsert(profile *model.Profile) error {
	query := `INSERT INTO profiles (id, user_id, username, venmo_handle, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (user_id) DO UPDATE SET username = $3, venmo_handle = $4, updated_at = $6`

	_, err := r.db.Exec(query,
		profile.ID,
		profile.UserID,
		profile.Username,
		profile.VenmoHandle,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrUsernameTaken
	}

	return err
}

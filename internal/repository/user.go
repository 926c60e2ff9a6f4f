package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	Upsert(user *model.User) error
	ByID(id string) (*model.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert provisions or refreshes a user row from verified token claims.
func (r *userRepository) Upsert(user *model.User) error {
	query := `INSERT INTO users (id, email, display_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (id) DO UPDATE SET email = $2, display_name = $3, updated_at = $5`

	_, err := r.db.Exec(query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.CreatedAt,
		time.Now(),
	)

	return err
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

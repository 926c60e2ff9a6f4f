package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	// CreateWithOwner inserts the goal and the owner participant row in one
	// transaction, so a goal never exists without its owner row.
	CreateWithOwner(goal *model.Goal, owner *model.GoalParticipant) error
	ByID(goalID string) (*model.Goal, error)
	ByOwner(userID string) ([]*model.Goal, error)
	ActiveByOwner(userID string) ([]*model.Goal, error)
	UpdateStatus(userID, goalID, status string) (*model.Goal, error)
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) CreateWithOwner(goal *model.Goal, owner *model.GoalParticipant) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO goals (id, user_id, title, description, deadline, status, stake_amount_cents, subscription_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Deadline,
		goal.Status,
		goal.StakeAmountCents,
		goal.SubscriptionID,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO goal_participants (id, goal_id, user_id, role, invite_code, invited_at, joined_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		owner.ID,
		owner.GoalID,
		owner.UserID,
		owner.Role,
		owner.InviteCode,
		owner.InvitedAt,
		owner.JoinedAt,
		owner.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *goalRepository) ByID(goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM goals WHERE id = $1`

	err := r.db.Get(goal, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) ByOwner(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) ActiveByOwner(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE user_id = $1 AND status IN ($2, $3) ORDER BY deadline ASC`

	err := r.db.Select(&goals, query, userID, model.GoalStatusPending, model.GoalStatusActive)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) UpdateStatus(userID, goalID, status string) (*model.Goal, error) {
	query := `UPDATE goals SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`

	result, err := r.db.Exec(query, status, time.Now(), goalID, userID)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, ErrGoalNotFound
	}

	return r.ByID(goalID)
}

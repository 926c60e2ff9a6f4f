package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrInviteNotFound      = errors.New("invite code not found")
	ErrAlreadyJoined       = errors.New("user already participates in this goal")
)

type ParticipantRepository interface {
	Create(p *model.GoalParticipant) error
	ByGoal(goalID string) ([]*model.GoalParticipant, error)
	ByGoalAndUser(goalID, userID string) (*model.GoalParticipant, error)
	ByInviteCode(code string) (*model.GoalParticipant, error)
	// SetInviteCode writes the invite code onto the owner row of the goal,
	// replacing any previous code.
	SetInviteCode(goalID, code string) error
	OwnerInviteCode(goalID string) (*string, error)
}

type participantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(p *model.GoalParticipant) error {
	query := `INSERT INTO goal_participants (id, goal_id, user_id, role, invite_code, invited_at, joined_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		p.ID,
		p.GoalID,
		p.UserID,
		p.Role,
		p.InviteCode,
		p.InvitedAt,
		p.JoinedAt,
		p.CreatedAt,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyJoined
	}

	return err
}

func (r *participantRepository) ByGoal(goalID string) ([]*model.GoalParticipant, error) {
	var participants []*model.GoalParticipant
	query := `SELECT * FROM goal_participants WHERE goal_id = $1 ORDER BY joined_at ASC`

	err := r.db.Select(&participants, query, goalID)
	if err != nil {
		return nil, err
	}

	return participants, nil
}

func (r *participantRepository) ByGoalAndUser(goalID, userID string) (*model.GoalParticipant, error) {
	p := &model.GoalParticipant{}
	query := `SELECT * FROM goal_participants WHERE goal_id = $1 AND user_id = $2`

	err := r.db.Get(p, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}

	return p, err
}

func (r *participantRepository) ByInviteCode(code string) (*model.GoalParticipant, error) {
	p := &model.GoalParticipant{}
	query := `SELECT * FROM goal_participants WHERE invite_code = $1`

	err := r.db.Get(p, query, code)
	if err == sql.ErrNoRows {
		return nil, ErrInviteNotFound
	}

	return p, err
}

func (r *participantRepository) SetInviteCode(goalID, code string) error {
	query := `UPDATE goal_participants SET invite_code = $1, invited_at = $2 WHERE goal_id = $3 AND role = $4`

	result, err := r.db.Exec(query, code, time.Now(), goalID, model.ParticipantRoleOwner)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrParticipantNotFound
	}

	return nil
}

func (r *participantRepository) OwnerInviteCode(goalID string) (*string, error) {
	var code sql.NullString
	query := `SELECT invite_code FROM goal_participants WHERE goal_id = $1 AND role = $2`

	err := r.db.Get(&code, query, goalID, model.ParticipantRoleOwner)
	if err == sql.ErrNoRows {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}

	if !code.Valid {
		return nil, nil
	}
	return &code.String, nil
}

// isUniqueViolation maps driver-specific unique constraint errors onto a
// sentinel. Covers modernc sqlite ("UNIQUE constraint failed") and postgres
// ("duplicate key value violates unique constraint", SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "23505")
}

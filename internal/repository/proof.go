package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrProofNotFound = errors.New("proof not found")
)

type ProofRepository interface {
	Create(proof *model.ProofSubmission) error
	ByID(id string) (*model.ProofSubmission, error)
	ByGoal(goalID string) ([]*model.ProofSubmission, error)
	LatestByGoal(goalID string) (*model.ProofSubmission, error)
	// SetResult writes the terminal verification outcome onto the row.
	// Called exactly once per proof; the row is immutable afterwards.
	SetResult(proofID, status string, result *model.VerificationResult) error
	// SetFailed marks a proof whose verification call errored.
	SetFailed(proofID string) error
	Delete(id string) error
}

type proofRepository struct {
	db *sqlx.DB
}

func NewProofRepository(db *sqlx.DB) ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) Create(proof *model.ProofSubmission) error {
	query := `INSERT INTO proof_submissions (id, goal_id, user_id, image_path, verification_status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query,
		proof.ID,
		proof.GoalID,
		proof.UserID,
		proof.ImagePath,
		proof.VerificationStatus,
		proof.CreatedAt,
	)

	return err
}

func (r *proofRepository) ByID(id string) (*model.ProofSubmission, error) {
	proof := &model.ProofSubmission{}
	query := `SELECT * FROM proof_submissions WHERE id = $1`

	err := r.db.Get(proof, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrProofNotFound
	}

	return proof, err
}

func (r *proofRepository) ByGoal(goalID string) ([]*model.ProofSubmission, error) {
	var proofs []*model.ProofSubmission
	query := `SELECT * FROM proof_submissions WHERE goal_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&proofs, query, goalID)
	if err != nil {
		return nil, err
	}

	return proofs, nil
}

func (r *proofRepository) LatestByGoal(goalID string) (*model.ProofSubmission, error) {
	proof := &model.ProofSubmission{}
	query := `SELECT * FROM proof_submissions WHERE goal_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.db.Get(proof, query, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrProofNotFound
	}

	return proof, err
}

func (r *proofRepository) SetResult(proofID, status string, result *model.VerificationResult) error {
	query := `UPDATE proof_submissions
	          SET verification_status = $1, is_valid = $2, confidence = $3, reasoning = $4, checked_at = $5, verified_at = $6
	          WHERE id = $7 AND verification_status = $8`

	res, err := r.db.Exec(query,
		status,
		result.IsValid,
		result.Confidence,
		result.Reasoning,
		result.CheckedAt,
		result.CheckedAt,
		proofID,
		model.ProofStatusPending,
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProofNotFound
	}

	return nil
}

func (r *proofRepository) SetFailed(proofID string) error {
	query := `UPDATE proof_submissions SET verification_status = $1 WHERE id = $2 AND verification_status = $3`

	res, err := r.db.Exec(query, model.ProofStatusFailed, proofID, model.ProofStatusPending)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProofNotFound
	}

	return nil
}

func (r *proofRepository) Delete(id string) error {
	query := `DELETE FROM proof_submissions WHERE id = $1`
	_, err := r.db.Exec(query, id)
	return err
}

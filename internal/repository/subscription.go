package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/stakeproof/stakeproof/internal/model"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type SubscriptionRepository interface {
	ByUserID(userID string) (*model.Subscription, error)
	// Upsert writes the full ledger row keyed by user id. One row per user.
	Upsert(sub *model.Subscription) error
}

type subscriptionRepository struct {
	db *sqlx.DB
}

func NewSubscriptionRepository(db *sqlx.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) ByUserID(userID string) (*model.Subscription, error) {
	sub := &model.Subscription{}
	query := `SELECT * FROM subscriptions WHERE user_id = $1`

	err := r.db.Get(sub, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (r *subscriptionRepository) Upsert(sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, tier, product_id, original_transaction_id, latest_receipt,
			has_used_trial, trial_started_at, trial_ends_at, started_at, expires_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = $3,
			product_id = $4,
			original_transaction_id = $5,
			latest_receipt = $6,
			has_used_trial = $7,
			trial_started_at = $8,
			trial_ends_at = $9,
			started_at = $10,
			expires_at = $11,
			updated_at = $13
	`

	_, err := r.db.Exec(
		query,
		sub.ID,
		sub.UserID,
		sub.Tier,
		sub.ProductID,
		sub.OriginalTransactionID,
		sub.LatestReceipt,
		sub.HasUsedTrial,
		sub.TrialStartedAt,
		sub.TrialEndsAt,
		sub.StartedAt,
		sub.ExpiresAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	return err
}

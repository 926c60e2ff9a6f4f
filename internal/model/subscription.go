package model

import (
	"time"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Subscription is the per-user entitlement ledger row. At most one row per
// user; absence of a row means free tier with trial eligibility intact.
type Subscription struct {
	ID                    string     `db:"id" json:"id"`
	UserID                string     `db:"user_id" json:"userId"`
	Tier                  string     `db:"tier" json:"tier"`
	ProductID             *string    `db:"product_id" json:"productId,omitempty"`
	OriginalTransactionID *string    `db:"original_transaction_id" json:"-"`
	LatestReceipt         *string    `db:"latest_receipt" json:"-"`
	HasUsedTrial          bool       `db:"has_used_trial" json:"hasUsedTrial"`
	TrialStartedAt        *time.Time `db:"trial_started_at" json:"trialStartedAt,omitempty"`
	TrialEndsAt           *time.Time `db:"trial_ends_at" json:"trialEndsAt,omitempty"`
	StartedAt             *time.Time `db:"started_at" json:"startedAt,omitempty"`
	ExpiresAt             *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updatedAt"`
}

// IsActiveAt derives the entitlement from stored timestamps. Never cached.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.Tier == TierPremium && s.ExpiresAt != nil && s.ExpiresAt.After(now)
}

// TrialActiveAt reports whether a started trial window still covers now.
func (s *Subscription) TrialActiveAt(now time.Time) bool {
	return s.HasUsedTrial && s.TrialEndsAt != nil && s.TrialEndsAt.After(now)
}

// TrialEligibleAt reports whether the user may still start the free trial:
// the trial was never used and no unexpired trial window exists.
func (s *Subscription) TrialEligibleAt(now time.Time) bool {
	if s.HasUsedTrial {
		return false
	}
	return s.TrialEndsAt == nil || !s.TrialEndsAt.After(now)
}

// SubscriptionStatus is the derived view returned to clients.
type SubscriptionStatus struct {
	Tier      string     `json:"tier"`
	IsActive  bool       `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	ProductID *string    `json:"productId,omitempty"`
}

// TrialStatus is the derived trial view returned to clients.
type TrialStatus struct {
	IsEligible    bool       `json:"isEligible"`
	IsActive      bool       `json:"isActive"`
	DaysRemaining *int       `json:"daysRemaining,omitempty"`
	EndsAt        *time.Time `json:"endsAt,omitempty"`
}

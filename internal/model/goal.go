package model

import (
	"time"
)

const (
	GoalStatusPending   = "pending"
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusFailed    = "failed"
	GoalStatusCancelled = "cancelled"
)

// ValidGoalStatus reports whether s is one of the known goal statuses.
func ValidGoalStatus(s string) bool {
	switch s {
	case GoalStatusPending, GoalStatusActive, GoalStatusCompleted, GoalStatusFailed, GoalStatusCancelled:
		return true
	}
	return false
}

type Goal struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"userId"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	Deadline         time.Time `db:"deadline" json:"deadline"`
	Status           string    `db:"status" json:"status"`
	StakeAmountCents int       `db:"stake_amount_cents" json:"stakeAmountCents"`
	SubscriptionID   *string   `db:"subscription_id" json:"subscriptionId,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// IsOpen reports whether the goal still accepts proof submissions.
func (g *Goal) IsOpen() bool {
	return g.Status == GoalStatusPending || g.Status == GoalStatusActive
}

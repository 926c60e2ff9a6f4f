package model

import (
	"time"
)

const (
	ProofStatusPending  = "pending"
	ProofStatusVerified = "verified"
	ProofStatusRejected = "rejected"
	// ProofStatusFailed marks submissions whose verification call errored.
	// Terminal, like verified and rejected. There is no automatic retry.
	ProofStatusFailed = "failed"
)

// ProofTerminal reports whether a verification status will never change again.
func ProofTerminal(status string) bool {
	return status == ProofStatusVerified || status == ProofStatusRejected || status == ProofStatusFailed
}

type ProofSubmission struct {
	ID        string `db:"id" json:"id"`
	GoalID    string `db:"goal_id" json:"goalId"`
	UserID    string `db:"user_id" json:"userId"`
	ImagePath string `db:"image_path" json:"-"`

	// ImageURL is a short-lived presigned URL minted on every read.
	// Never persisted.
	ImageURL string `db:"-" json:"imageUrl,omitempty"`

	VerificationStatus string     `db:"verification_status" json:"verificationStatus"`
	IsValid            *bool      `db:"is_valid" json:"isValid,omitempty"`
	Confidence         *int       `db:"confidence" json:"confidence,omitempty"`
	Reasoning          *string    `db:"reasoning" json:"reasoning,omitempty"`
	CheckedAt          *time.Time `db:"checked_at" json:"checkedAt,omitempty"`
	VerifiedAt         *time.Time `db:"verified_at" json:"verifiedAt,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
}

// VerificationResult is the parsed judgment of the external model.
type VerificationResult struct {
	IsValid    bool      `json:"isValid"`
	Confidence int       `json:"confidence"`
	Reasoning  string    `json:"reasoning"`
	CheckedAt  time.Time `json:"checkedAt"`
}

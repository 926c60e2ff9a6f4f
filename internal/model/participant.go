package model

import (
	"time"
)

const (
	ParticipantRoleOwner   = "owner"
	ParticipantRolePartner = "partner"
)

type GoalParticipant struct {
	ID         string     `db:"id" json:"id"`
	GoalID     string     `db:"goal_id" json:"goalId"`
	UserID     string     `db:"user_id" json:"userId"`
	Role       string     `db:"role" json:"role"`
	InviteCode *string    `db:"invite_code" json:"inviteCode,omitempty"`
	InvitedAt  *time.Time `db:"invited_at" json:"invitedAt,omitempty"`
	JoinedAt   *time.Time `db:"joined_at" json:"joinedAt,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

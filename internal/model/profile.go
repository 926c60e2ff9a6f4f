package model

import (
	"time"
)

// Profile holds the user-editable public identity: a display username and
// the Venmo handle partners use to settle stakes. Both optional. At most
// one row per user; absence of a row means nothing was set yet.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Username    *string   `db:"username" json:"username"`
	VenmoHandle *string   `db:"venmo_handle" json:"venmoHandle"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

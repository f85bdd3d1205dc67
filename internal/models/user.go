package models

import "time"

// User represents a Telegram user known to the bot. The primary key is
// the Telegram user id itself. Family starts out equal to the user's
// own id (every user is a one-person family at first contact) and
// changes only when an invite is redeemed.
type User struct {
	ID            int64         `json:"id" db:"id"`
	Family        int64         `json:"family" db:"family"`
	CurrentAction CurrentAction `json:"current_action" db:"current_action"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// ClearAction resets the user's pending conversational action.
func (u *User) ClearAction() {
	u.CurrentAction = CurrentAction{}
}

package models

import "time"

// Invite is a short-lived, single-use numeric token granting the right
// to switch into the issuing family. The code is globally unique while
// the invite is live.
type Invite struct {
	Code      int       `json:"code" db:"code"`
	Family    int64     `json:"family" db:"family"`
	Expires   time.Time `json:"expires" db:"expires"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the invite can no longer be redeemed.
func (i *Invite) IsExpired(now time.Time) bool {
	return i.Expires.Before(now)
}

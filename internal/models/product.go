package models

import "time"

// Product represents a perishable item registered by a family. The
// storage key is (code, family); codes are short numbers meant to be
// written on the package and typed back by hand.
type Product struct {
	Code      int        `json:"code" db:"code"`
	Family    int64      `json:"family" db:"family"`
	Name      string     `json:"name" db:"name"`
	Expires   time.Time  `json:"expires" db:"expires"`
	Withdrawn *time.Time `json:"withdrawn" db:"withdrawn"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsWithdrawn returns true if the product was consumed or discarded.
func (p *Product) IsWithdrawn() bool {
	return p.Withdrawn != nil
}

// IsExpired reports whether the expiry date has passed.
func (p *Product) IsExpired(now time.Time) bool {
	return p.Expires.Before(now)
}

package repository

import (
	"context"
	"time"

	"github.com/Kerhoff/prodbot/internal/models"
)

// Repos bundles the repositories that share one unit of work. Inside
// Store.RunTx all of them are backed by the same database transaction,
// so a locked read stays locked until the unit of work commits.
type Repos struct {
	Users    UserRepository
	Products ProductRepository
	Invites  InviteRepository
}

// Store owns the database handle and runs units of work.
type Store interface {
	// RunTx executes fn inside a single transaction, committing when fn
	// returns nil and rolling back otherwise.
	RunTx(ctx context.Context, fn func(r Repos) error) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetForUpdate returns the user row under a write-intent lock, or
	// nil when no row exists.
	GetForUpdate(ctx context.Context, id int64) (*models.User, error)
	// Create inserts the user, silently doing nothing when a row with
	// the same id already exists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	// GetByFamily returns every member of a family.
	GetByFamily(ctx context.Context, family int64) ([]*models.User, error)
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	// GetForUpdate returns the product identified by (family, code)
	// under a write-intent lock, or nil when no row exists.
	GetForUpdate(ctx context.Context, family int64, code int) (*models.Product, error)
	// ListActive returns the non-withdrawn products of a family ordered
	// by expiry ascending. A non-zero expiredBefore restricts the result
	// to products expiring strictly before that instant. limit <= 0
	// means no limit.
	ListActive(ctx context.Context, family int64, expiredBefore time.Time, limit int) ([]*models.Product, error)
	// CountActive counts non-withdrawn products of a family, restricted
	// the same way as ListActive when expiredBefore is non-zero.
	CountActive(ctx context.Context, family int64, expiredBefore time.Time) (int, error)
	CodeExists(ctx context.Context, family int64, code int) (bool, error)
	Withdraw(ctx context.Context, family int64, code int, at time.Time) error
	// LockFamily serializes writers of one family's product set for the
	// remainder of the transaction.
	LockFamily(ctx context.Context, family int64) error
	// ExpiredFamilies returns the distinct families that have at least
	// one active product already past its expiry date.
	ExpiredFamilies(ctx context.Context, now time.Time) ([]int64, error)
	// DeleteWithdrawnExpiredBefore permanently removes withdrawn
	// products whose expiry date lies before cutoff.
	DeleteWithdrawnExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InviteRepository defines the interface for invite data operations
type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) (*models.Invite, error)
	// GetForUpdate returns the invite under a write-intent lock, or nil
	// when no row exists.
	GetForUpdate(ctx context.Context, code int) (*models.Invite, error)
	CodeExists(ctx context.Context, code int) (bool, error)
	Delete(ctx context.Context, code int) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	// LockAll serializes invite code allocation; invite codes are
	// globally unique so there is a single lock.
	LockAll(ctx context.Context) error
}

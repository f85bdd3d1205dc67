package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Kerhoff/prodbot/internal/repository"
)

// DBTX is the subset of database/sql methods the repositories need.
// It is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs units of work against Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store on top of an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RunTx executes fn inside one transaction. All repositories passed to
// fn share that transaction, so FOR UPDATE reads keep their locks until
// the unit of work commits or rolls back.
func (s *Store) RunTx(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newRepos(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newRepos(db DBTX) repository.Repos {
	return repository.Repos{
		Users:    NewUserRepository(db),
		Products: NewProductRepository(db),
		Invites:  NewInviteRepository(db),
	}
}

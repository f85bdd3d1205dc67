package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

// inviteAllocLock is the advisory lock key used while allocating invite
// codes. Invite codes are globally unique, so a single key suffices.
const inviteAllocLock = int64(-927000001)

type inviteRepository struct {
	db DBTX
}

// NewInviteRepository creates a new invite repository
func NewInviteRepository(db DBTX) repository.InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) LockAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, inviteAllocLock); err != nil {
		return fmt.Errorf("failed to lock invites: %w", err)
	}
	return nil
}

func (r *inviteRepository) Create(ctx context.Context, invite *models.Invite) (*models.Invite, error) {
	query := `
		INSERT INTO invites (code, family, expires, created_at)
		VALUES ($1, $2, $3, $4)`

	invite.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invite.Code,
		invite.Family,
		invite.Expires,
		invite.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	return invite, nil
}

func (r *inviteRepository) GetForUpdate(ctx context.Context, code int) (*models.Invite, error) {
	query := `
		SELECT code, family, expires, created_at
		FROM invites
		WHERE code = $1
		FOR UPDATE`

	invite := &models.Invite{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&invite.Code,
		&invite.Family,
		&invite.Expires,
		&invite.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invite for update: %w", err)
	}

	return invite, nil
}

func (r *inviteRepository) CodeExists(ctx context.Context, code int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM invites WHERE code = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}
	return exists, nil
}

func (r *inviteRepository) Delete(ctx context.Context, code int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("invite %d not found", code)
	}

	return nil
}

func (r *inviteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM invites WHERE expires < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/prodbot/internal/models"
	"github.com/Kerhoff/prodbot/internal/repository"
)

type userRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, family, current_action, created_at, updated_at
		FROM users
		WHERE id = $1
		FOR UPDATE`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Family,
		&user.CurrentAction,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user for update: %w", err)
	}

	return user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	// ON CONFLICT DO NOTHING keeps concurrent first contacts from the
	// same identity down to a single row; the caller re-reads the
	// authoritative row under lock afterwards.
	query := `
		INSERT INTO users (id, family, current_action, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Family,
		user.CurrentAction,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET family = $2, current_action = $3, updated_at = $4
		WHERE id = $1
		RETURNING updated_at`

	user.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Family,
		user.CurrentAction,
		user.UpdatedAt,
	).Scan(&user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByFamily(ctx context.Context, family int64) ([]*models.User, error) {
	query := `
		SELECT id, family, current_action, created_at, updated_at
		FROM users
		WHERE family = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, family)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Family,
			&user.CurrentAction,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/synergy-shm/synergy/internal/platform/db"
	"github.com/synergy-shm/synergy/internal/platform/httpx"
	"github.com/synergy-shm/synergy/internal/rbac"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userSelect = `SELECT u.id::text, u.email, u.first_name, u.last_name, u.role_level, u.subscription_type,
	COALESCE(u.parent_user_id::text, ''), u.status, u.created_at, u.last_login_at,
	COALESCE(array_agg(pm.project_id::text ORDER BY pm.project_id) FILTER (WHERE pm.project_id IS NOT NULL), '{}')
FROM users u
LEFT JOIN project_members pm ON pm.user_id = u.id`

// ListUsers returns all users with their project grants.
func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, userSelect+` GROUP BY u.id ORDER BY u.created_at, u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUser fetches one user.
func (r *PGRepository) GetUser(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, userSelect+` WHERE u.id::text = $1 GROUP BY u.id`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a pending user and its optional project grant in one
// transaction.
func (r *PGRepository) CreateUser(ctx context.Context, input NewUser) (*User, error) {
	var id string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var parent any
		if input.ParentID != "" {
			parent = input.ParentID
		}
		err := tx.QueryRow(ctx, `INSERT INTO users (email, first_name, last_name, role_level, subscription_type, parent_user_id, status, is_active)
VALUES (lower($1), $2, $3, $4, $5, $6, 'pending', false) RETURNING id::text`,
			strings.TrimSpace(input.Email), input.FirstName, input.LastName, int(input.Level), input.SubscriptionType, parent).Scan(&id)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
			}
			return err
		}
		if input.ProjectID == "" {
			return nil
		}
		_, err = tx.Exec(ctx, `INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, input.ProjectID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetUser(ctx, id)
}

// UpdateLevel changes the role level of a user.
func (r *PGRepository) UpdateLevel(ctx context.Context, id string, level rbac.Level) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role_level = $2, updated_at = now() WHERE id::text = $1`, id, int(level))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	var status string
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Level, &user.SubscriptionType,
		&user.ParentID, &status, &user.CreatedAt, &user.LastLogin, &user.ProjectIDs)
	user.Status = Status(status)
	return user, err
}

var _ Repository = (*PGRepository)(nil)

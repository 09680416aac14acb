package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by the repository. Tests inject
// a pgxmock implementation.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads clinic users from the relational database.
type Repository struct {
	db Querier
}

// NewRepository initializes a read-only user repository.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("identity: db querier required")
	}
	return &Repository{db: db}
}

// GetByID fetches a single user.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, role, email, full_name, COALESCE(specialization, ''), created_at
		FROM users
		WHERE id = $1
	`
	var u User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Username,
		&u.Role,
		&u.Email,
		&u.FullName,
		&u.Specialization,
		&u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("identity: select user: %w", err)
	}
	return &u, nil
}

// ListDoctors returns every doctor for the booking picker, ordered by name.
func (r *Repository) ListDoctors(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, role, email, full_name, COALESCE(specialization, ''), created_at
		FROM users
		WHERE role = $1
		ORDER BY full_name
	`
	rows, err := r.db.Query(ctx, query, RoleDoctor)
	if err != nil {
		return nil, fmt.Errorf("identity: list doctors: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Role,
			&u.Email,
			&u.FullName,
			&u.Specialization,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("identity: scan doctor: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("identity: list doctors: %w", err)
	}
	return out, nil
}

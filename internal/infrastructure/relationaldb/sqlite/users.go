package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// SaveUser inserts or updates a user.
func (r *Repository) SaveUser(ctx context.Context, user *entities.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = timeNow()
	}
	query := `
		INSERT INTO users (id, name, role, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			status = excluded.status
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		string(user.Role),
		string(user.Status),
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// FindUser finds a user by ID. Returns nil if not found.
func (r *Repository) FindUser(ctx context.Context, id string) (*entities.User, error) {
	query := `SELECT id, name, role, status, created_at FROM users WHERE id = ?`

	var u entities.User
	var role, status string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &role, &status, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = entities.Role(role)
	u.Status = entities.AccountStatus(status)
	return &u, nil
}

// Increment atomically adds one to a user's counter.
func (r *Repository) Increment(ctx context.Context, userID string, counter entities.Counter) error {
	query := `
		INSERT INTO user_counters (user_id, counter, value)
		VALUES (?, ?, 1)
		ON CONFLICT(user_id, counter) DO UPDATE SET
			value = value + 1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, string(counter)); err != nil {
		return fmt.Errorf("incrementing counter: %w", err)
	}
	return nil
}

// Get returns all counters for a user. Missing counters are zero.
func (r *Repository) Get(ctx context.Context, userID string) (map[entities.Counter]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT counter, value FROM user_counters WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying counters: %w", err)
	}
	defer rows.Close()

	counts := make(map[entities.Counter]int64, len(entities.AllCounters))
	for _, c := range entities.AllCounters {
		counts[c] = 0
	}
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning counter: %w", err)
		}
		counts[entities.Counter(name)] = value
	}
	return counts, rows.Err()
}

package ports

import (
	"context"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// UserStore persists user accounts.
type UserStore interface {
	// SaveUser inserts or updates a user's name, role and status.
	SaveUser(ctx context.Context, user *entities.User) error

	// FindUser finds a user by ID. Returns nil if not found.
	FindUser(ctx context.Context, id string) (*entities.User, error)
}

// Counters holds per-user contribution counters.
type Counters interface {
	// Increment atomically adds one to a user's counter.
	Increment(ctx context.Context, userID string, counter entities.Counter) error

	// Get returns all counters for a user. Missing counters are zero.
	Get(ctx context.Context, userID string) (map[entities.Counter]int64, error)
}

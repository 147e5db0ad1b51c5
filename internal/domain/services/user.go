package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// UserService manages accounts and resolves request actors.
type UserService struct {
	users    ports.UserStore
	counters ports.Counters
	now      func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(users ports.UserStore, counters ports.Counters) *UserService {
	return &UserService{users: users, counters: counters, now: time.Now}
}

// Resolve returns the actor for a user id. Unknown ids are forbidden.
func (s *UserService) Resolve(ctx context.Context, id string) (entities.Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Actor{}, fmt.Errorf("%w: missing actor id", entities.ErrForbidden)
	}
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return entities.Actor{}, fmt.Errorf("finding user: %w", err)
	}
	if u == nil {
		return entities.Actor{}, fmt.Errorf("%w: unknown user %q", entities.ErrForbidden, id)
	}
	return entities.ActorFromUser(u), nil
}

// Add creates a user, or updates its name and role when it already exists.
func (s *UserService) Add(ctx context.Context, id, name string, role entities.Role) (*entities.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrValidation)
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if u == nil {
		u = &entities.User{ID: id, Status: entities.AccountActive, CreatedAt: s.now()}
	}
	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if u.Name == "" {
		u.Name = id
	}
	u.Role = role

	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return u, nil
}

// SetRole changes an existing user's role.
func (s *UserService) SetRole(ctx context.Context, id string, role entities.Role) (*entities.User, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	return s.update(ctx, id, func(u *entities.User) { u.Role = role })
}

// SetStatus changes an existing user's account status.
func (s *UserService) SetStatus(ctx context.Context, id string, status entities.AccountStatus) (*entities.User, error) {
	switch status {
	case entities.AccountActive, entities.AccountSuspended, entities.AccountBlocked, entities.AccountRestricted:
	default:
		return nil, fmt.Errorf("%w: invalid account status %q", entities.ErrValidation, status)
	}
	return s.update(ctx, id, func(u *entities.User) { u.Status = status })
}

// Get returns a user with its contribution counters.
func (s *UserService) Get(ctx context.Context, id string) (*entities.User, error) {
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", entities.ErrNotFound, id)
	}
	if s.counters != nil {
		counts, err := s.counters.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reading counters: %w", err)
		}
		u.Counters = counts
	}
	return u, nil
}

func (s *UserService) update(ctx context.Context, id string, apply func(*entities.User)) (*entities.User, error) {
	u, err := s.users.FindUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", entities.ErrNotFound, id)
	}
	apply(u)
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}
	return u, nil
}

func validateRole(role entities.Role) error {
	switch role {
	case entities.RoleUser, entities.RoleReviewer, entities.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: invalid role %q", entities.ErrValidation, role)
	}
}

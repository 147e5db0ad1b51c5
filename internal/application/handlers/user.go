package handlers

import (
	"context"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
)

// UserHandler handles user administration.
type UserHandler struct {
	users *services.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleAdd creates or updates a user. An empty role means "user".
func (h *UserHandler) HandleAdd(ctx context.Context, id, name, role string) (*entities.User, error) {
	if role == "" {
		role = string(entities.RoleUser)
	}
	return h.users.Add(ctx, id, name, entities.Role(strings.ToLower(role)))
}

// HandleSet updates a user's role and/or account status. Empty values are left unchanged.
func (h *UserHandler) HandleSet(ctx context.Context, id, role, status string) (*entities.User, error) {
	var (
		u   *entities.User
		err error
	)
	if role != "" {
		if u, err = h.users.SetRole(ctx, id, entities.Role(strings.ToLower(role))); err != nil {
			return nil, err
		}
	}
	if status != "" {
		if u, err = h.users.SetStatus(ctx, id, entities.AccountStatus(strings.ToLower(status))); err != nil {
			return nil, err
		}
	}
	if u == nil {
		return h.users.Get(ctx, id)
	}
	return u, nil
}

// HandleShow returns a user with contribution counters.
func (h *UserHandler) HandleShow(ctx context.Context, id string) (*entities.User, error) {
	return h.users.Get(ctx, id)
}

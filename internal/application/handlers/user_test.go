package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

func TestUserHandler_HandleAddDefaultsRole(t *testing.T) {
	h := setupHandlers(t)

	u, err := h.admin.HandleAdd(t.Context(), "dave", "", "")

	require.NoError(t, err)
	assert.Equal(t, entities.RoleUser, u.Role)
	assert.Equal(t, "dave", u.Name)
	assert.Equal(t, entities.AccountActive, u.Status)
}

func TestUserHandler_HandleSet(t *testing.T) {
	h := setupHandlers(t)

	u, err := h.admin.HandleSet(t.Context(), "alice", "Reviewer", "suspended")

	require.NoError(t, err)
	assert.Equal(t, entities.RoleReviewer, u.Role)
	assert.Equal(t, entities.AccountSuspended, u.Status)

	_, err = h.admin.HandleSet(t.Context(), "alice", "owner", "")
	require.ErrorIs(t, err, entities.ErrValidation)

	_, err = h.admin.HandleSet(t.Context(), "nobody", "", "blocked")
	require.ErrorIs(t, err, entities.ErrNotFound)
}

func TestUserHandler_HandleShowCounters(t *testing.T) {
	h := setupHandlers(t)
	c := fileCorrection(t, h, entities.FieldEngine, "Monocle")

	_, err := h.review.HandleReview(t.Context(), "bob", "correction", entities.ReviewRequest{
		ProposalID: c.ID,
		Decision:   entities.DecisionApproved,
	})
	require.NoError(t, err)

	u, err := h.admin.HandleShow(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Counters[entities.CounterCorrectionsApproved])
}

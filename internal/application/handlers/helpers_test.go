package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/mocks"
	"github.com/ersonp/catalog-review/internal/domain/services"
)

type testHandlers struct {
	proposals *mocks.ProposalStore
	catalog   *mocks.CatalogStore
	audit     *mocks.AuditStore
	users     *mocks.UserStore
	notifier  *mocks.Notifier

	proposal *ProposalHandler
	review   *ReviewHandler
	records  *CatalogHandler
	ledger   *AuditHandler
	admin    *UserHandler
}

func setupHandlers(t *testing.T) *testHandlers {
	t.Helper()

	log := zap.NewNop()
	h := &testHandlers{
		proposals: mocks.NewProposalStore(),
		catalog:   mocks.NewCatalogStore(),
		audit:     mocks.NewAuditStore(),
		users:     mocks.NewUserStore(),
		notifier:  mocks.NewNotifier(),
	}

	guard := services.NewEligibilityGuard(nil)
	reconciler := services.NewNotificationReconciler(h.notifier, h.proposals, nil, nil, log)
	ledger := services.NewAuditLedger(h.audit)
	userService := services.NewUserService(h.users, h.users)
	proposalService := services.NewProposalService(h.proposals, h.catalog, guard, reconciler, log)
	reviews := services.NewReviewService(services.ReviewDeps{
		Proposals:  h.proposals,
		Guard:      guard,
		Merge:      services.NewMergeEngine(h.catalog),
		Ledger:     ledger,
		Resolver:   services.NewSupersessionResolver(h.proposals, log),
		Counters:   h.users,
		Reconciler: reconciler,
		Logger:     log,
	})
	batch := services.NewBatchReviewService(reviews, h.proposals, guard, reconciler, nil, log)

	h.proposal = NewProposalHandler(userService, proposalService)
	h.review = NewReviewHandler(userService, reviews, batch)
	h.records = NewCatalogHandler(proposalService)
	h.ledger = NewAuditHandler(ledger)
	h.admin = NewUserHandler(userService)

	ctx := t.Context()
	_, err := h.admin.HandleAdd(ctx, "alice", "Alice", "user")
	require.NoError(t, err)
	_, err = h.admin.HandleAdd(ctx, "bob", "Bob", "reviewer")
	require.NoError(t, err)

	h.catalog.Put(&entities.Record{
		ID:   "rec-celeste",
		Slug: "celeste",
		Fields: map[string]any{
			entities.FieldTitle:       "Celeste",
			entities.FieldEngine:      "XNA",
			entities.FieldReleaseDate: "2018",
		},
	})

	return h
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

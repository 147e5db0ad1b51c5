package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/mocks"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	proposals *mocks.ProposalStore
	catalog   *mocks.CatalogStore
	audit     *mocks.AuditStore
	users     *mocks.UserStore
	notifier  *mocks.Notifier
	logs      *observer.ObservedLogs

	guard      *EligibilityGuard
	reconciler *NotificationReconciler
	reviews    *ReviewService
	batch      *BatchReviewService
	submit     *ProposalService
}

func newTestEnv(t *testing.T, exemptIDs ...string) *testEnv {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)

	env := &testEnv{
		proposals: mocks.NewProposalStore(),
		catalog:   mocks.NewCatalogStore(),
		audit:     mocks.NewAuditStore(),
		users:     mocks.NewUserStore(),
		notifier:  mocks.NewNotifier(),
		logs:      logs,
	}

	env.guard = NewEligibilityGuard(exemptIDs)
	env.reconciler = NewNotificationReconciler(env.notifier, env.proposals, nil, nil, log)

	merge := NewMergeEngine(env.catalog)
	merge.now = func() time.Time { return fixedNow }
	ledger := NewAuditLedger(env.audit)
	ledger.now = func() time.Time { return fixedNow }

	env.reviews = NewReviewService(ReviewDeps{
		Proposals:  env.proposals,
		Guard:      env.guard,
		Merge:      merge,
		Ledger:     ledger,
		Resolver:   NewSupersessionResolver(env.proposals, log),
		Counters:   env.users,
		Reconciler: env.reconciler,
		Logger:     log,
	})
	env.reviews.now = func() time.Time { return fixedNow }

	env.batch = NewBatchReviewService(env.reviews, env.proposals, env.guard, env.reconciler, nil, log)
	env.submit = NewProposalService(env.proposals, env.catalog, env.guard, env.reconciler, log)
	env.submit.now = func() time.Time { return fixedNow }

	return env
}

var (
	alice = entities.Actor{ID: "alice", Name: "Alice", Role: entities.RoleUser, Status: entities.AccountActive}
	bob   = entities.Actor{ID: "bob", Name: "Bob", Role: entities.RoleReviewer, Status: entities.AccountActive}
	carol = entities.Actor{ID: "carol", Name: "Carol", Role: entities.RoleUser, Status: entities.AccountActive}
)

func (e *testEnv) seedRecord(slug string, fields map[string]any) *entities.Record {
	rec := &entities.Record{ID: "rec-" + slug, Slug: slug, Fields: fields, CreatedAt: fixedNow}
	e.catalog.Put(rec)
	return rec
}

func (e *testEnv) seedCorrection(t *testing.T, id, slug, field string, oldValue, newValue any, submitter entities.Actor) *entities.Correction {
	t.Helper()
	c := &entities.Correction{
		ID:          id,
		RecordSlug:  slug,
		RecordTitle: slug,
		Submitter:   submitter.Person(),
		SubmittedAt: fixedNow,
		Field:       field,
		OldValue:    oldValue,
		NewValue:    newValue,
		Status:      entities.StatusPending,
	}
	require.NoError(t, e.proposals.SaveCorrection(context.Background(), c))
	return c
}

func (e *testEnv) seedSubmission(t *testing.T, id, slug string, data map[string]any, submitter entities.Actor) *entities.Submission {
	t.Helper()
	s := &entities.Submission{
		ID:           id,
		RecordSlug:   slug,
		RecordTitle:  slug,
		Submitter:    submitter.Person(),
		SubmittedAt:  fixedNow,
		ProposedData: data,
		Status:       entities.StatusPending,
	}
	require.NoError(t, e.proposals.SaveSubmission(context.Background(), s))
	return s
}

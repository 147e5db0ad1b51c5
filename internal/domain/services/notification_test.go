package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/mocks"
)

func TestNotificationReconciler_ReconcileIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedCorrection(t, "c1", "celeste", entities.FieldEngine, nil, "FNA", alice)
	refs := []ProposalRef{{Kind: entities.KindCorrection, ID: "c1"}}
	payload := entities.Notification{Event: entities.EventCreated}

	require.NoError(t, env.reconciler.Reconcile(context.Background(), nil, payload, refs))
	assert.Equal(t, []string{"thread-1"}, env.proposals.Correction("c1").NotificationThreads)
	assert.Equal(t, 1, env.proposals.ThreadWriteCount())

	threads := env.proposals.Correction("c1").NotificationThreads
	require.NoError(t, env.reconciler.Reconcile(context.Background(), threads, payload, refs))
	require.NoError(t, env.reconciler.Reconcile(context.Background(), threads, payload, refs))

	assert.Equal(t, []string{"thread-1"}, env.proposals.Correction("c1").NotificationThreads)
	assert.Equal(t, 1, env.proposals.ThreadWriteCount())
	assert.Equal(t, 3, env.notifier.CallCount())
}

func TestNotificationReconciler_NotifierError(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.Err = errors.New("boom")

	err := env.reconciler.Reconcile(context.Background(), []string{"t"}, entities.Notification{}, nil)

	assert.ErrorIs(t, err, entities.ErrNotification)
	assert.Equal(t, 0, env.proposals.ThreadWriteCount())
}

func TestNotificationReconciler_NilNotifier(t *testing.T) {
	proposals := mocks.NewProposalStore()
	r := NewNotificationReconciler(nil, proposals, nil, nil, zap.NewNop())

	require.NoError(t, r.Reconcile(context.Background(), nil, entities.Notification{}, nil))
	r.NotifyCreated([]ProposalRef{{Kind: entities.KindCorrection, ID: "c1"}}, nil)
	assert.Equal(t, 0, proposals.ThreadWriteCount())
}

func TestNotificationReconciler_WithDispatcher(t *testing.T) {
	notifier := mocks.NewNotifier()
	proposals := mocks.NewProposalStore()
	require.NoError(t, proposals.SaveSubmission(context.Background(), &entities.Submission{ID: "s1", Status: entities.StatusPending}))

	d := NewDispatcher(zap.NewNop(), 8, time.Second)
	r := NewNotificationReconciler(notifier, proposals, d, nil, zap.NewNop())

	r.NotifyCreated(
		[]ProposalRef{{Kind: entities.KindSubmission, ID: "s1"}},
		[]entities.NotificationItem{{ProposalID: "s1", Kind: entities.KindSubmission}},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))

	assert.Equal(t, 1, notifier.CallCount())
	assert.Equal(t, []string{"thread-1"}, proposals.Submission("s1").NotificationThreads)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(zap.New(core), 1, time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, d.Enqueue("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	assert.True(t, d.Enqueue("queued", func(ctx context.Context) error { return nil }))
	assert.False(t, d.Enqueue("dropped", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, logs.FilterMessage("dispatch queue full, dropping task").Len())

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.False(t, d.Enqueue("late", func(ctx context.Context) error { return nil }))
}

func TestDispatcher_LogsTaskErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewDispatcher(zap.New(core), 4, time.Second)

	d.Enqueue("failing", func(ctx context.Context) error { return errors.New("nope") })
	require.NoError(t, d.Close(context.Background()))

	require.Equal(t, 1, logs.FilterMessage("background task failed").Len())
	assert.Equal(t, "failing", logs.All()[0].ContextMap()["task"])
}

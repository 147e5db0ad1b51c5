package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// Notification results reported to metrics.
const (
	NotificationPosted  = "posted"
	NotificationUpdated = "updated"
	NotificationFailed  = "failed"
)

// ProposalRef identifies a proposal whose thread ids a notification maintains.
type ProposalRef struct {
	Kind entities.ProposalKind
	ID   string
}

// NotificationReconciler posts or edits notification messages and keeps the
// proposals' stored thread ids in sync with what the transport returned.
// A nil notifier disables notifications.
type NotificationReconciler struct {
	notifier   ports.Notifier
	proposals  ports.ProposalStore
	dispatcher *Dispatcher
	metrics    ports.Metrics
	log        *zap.Logger
}

// NewNotificationReconciler creates a reconciler. When dispatcher is nil,
// reconciliation runs inline on the caller's goroutine.
func NewNotificationReconciler(notifier ports.Notifier, proposals ports.ProposalStore, dispatcher *Dispatcher, metrics ports.Metrics, log *zap.Logger) *NotificationReconciler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &NotificationReconciler{
		notifier:   notifier,
		proposals:  proposals,
		dispatcher: dispatcher,
		metrics:    metrics,
		log:        log,
	}
}

// Reconcile sends payload to threads and persists the returned thread ids on every
// ref when they differ from threads. Running it twice with the same input is safe.
func (r *NotificationReconciler) Reconcile(ctx context.Context, threads []string, payload entities.Notification, refs []ProposalRef) error {
	if r.notifier == nil {
		return nil
	}

	got, err := r.notifier.PostOrUpdate(ctx, threads, payload)
	if err != nil {
		r.metrics.ObserveNotification(NotificationFailed)
		return fmt.Errorf("%w: %w", entities.ErrNotification, err)
	}
	if len(threads) == 0 {
		r.metrics.ObserveNotification(NotificationPosted)
	} else {
		r.metrics.ObserveNotification(NotificationUpdated)
	}

	if entities.SameThreads(got, threads) {
		return nil
	}

	var errs []error
	for _, ref := range refs {
		if err := r.proposals.SetNotificationThreads(ctx, ref.Kind, ref.ID, got); err != nil {
			errs = append(errs, fmt.Errorf("storing threads for %s %s: %w", ref.Kind, ref.ID, err))
		}
	}
	return errors.Join(errs...)
}

// NotifyCreated announces newly created proposals in a single message. Every
// proposal in refs receives the same thread ids.
func (r *NotificationReconciler) NotifyCreated(refs []ProposalRef, items []entities.NotificationItem) {
	if len(refs) == 0 {
		return
	}
	payload := entities.Notification{Event: entities.EventCreated, Items: items}
	r.schedule("notify created "+refs[0].ID, nil, payload, refs)
}

// NotifyReviewed updates the threads of reviewed proposals. When shared is
// non-empty all outcomes are reported in one message on those threads; otherwise
// each outcome updates its own threads. Superseded siblings always update their own.
func (r *NotificationReconciler) NotifyReviewed(outcomes []*entities.ReviewOutcome, shared []string) {
	if len(outcomes) == 0 {
		return
	}

	if len(shared) > 0 {
		items := make([]entities.NotificationItem, 0, len(outcomes))
		refs := make([]ProposalRef, 0, len(outcomes))
		for _, o := range outcomes {
			items = append(items, outcomeItem(o))
			refs = append(refs, ProposalRef{Kind: o.Kind, ID: o.ProposalID()})
		}
		payload := entities.Notification{Event: entities.EventReviewed, Items: items}
		r.schedule("notify reviewed batch", shared, payload, refs)
	} else {
		for _, o := range outcomes {
			payload := entities.Notification{
				Event: entities.EventReviewed,
				Items: []entities.NotificationItem{outcomeItem(o)},
			}
			refs := []ProposalRef{{Kind: o.Kind, ID: o.ProposalID()}}
			r.schedule("notify reviewed "+o.ProposalID(), o.Threads(), payload, refs)
		}
	}

	for _, o := range outcomes {
		for i := range o.Superseded {
			sib := &o.Superseded[i]
			payload := entities.Notification{
				Event: entities.EventReviewed,
				Items: []entities.NotificationItem{SubmissionItem(sib)},
			}
			refs := []ProposalRef{{Kind: entities.KindSubmission, ID: sib.ID}}
			r.schedule("notify superseded "+sib.ID, sib.NotificationThreads, payload, refs)
		}
	}
}

func (r *NotificationReconciler) schedule(name string, threads []string, payload entities.Notification, refs []ProposalRef) {
	if r.notifier == nil {
		return
	}
	threads = append([]string(nil), threads...)
	task := func(ctx context.Context) error {
		return r.Reconcile(ctx, threads, payload, refs)
	}
	if r.dispatcher == nil {
		if err := task(context.Background()); err != nil {
			r.log.Warn("notification failed", zap.String("task", name), zap.Error(err))
		}
		return
	}
	r.dispatcher.Enqueue(name, task)
}

// CorrectionItem summarizes a correction for a notification.
func CorrectionItem(c *entities.Correction) entities.NotificationItem {
	return entities.NotificationItem{
		ProposalID: c.ID,
		Kind:       entities.KindCorrection,
		RecordSlug: c.RecordSlug,
		Title:      c.RecordTitle,
		Field:      c.Field,
		Status:     c.Status,
		Submitter:  c.Submitter,
		Reviewer:   c.Reviewer,
		Notes:      c.ReviewNotes,
	}
}

// SubmissionItem summarizes a submission for a notification.
func SubmissionItem(s *entities.Submission) entities.NotificationItem {
	return entities.NotificationItem{
		ProposalID: s.ID,
		Kind:       entities.KindSubmission,
		RecordSlug: s.RecordSlug,
		Title:      s.RecordTitle,
		Status:     s.Status,
		Submitter:  s.Submitter,
		Reviewer:   s.Reviewer,
		Notes:      s.ReviewNotes,
	}
}

func outcomeItem(o *entities.ReviewOutcome) entities.NotificationItem {
	if o.Correction != nil {
		return CorrectionItem(o.Correction)
	}
	return SubmissionItem(o.Submission)
}

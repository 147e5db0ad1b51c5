package ports

import (
	"context"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// Notifier is the outbound notification transport.
type Notifier interface {
	// PostOrUpdate edits the messages at threadIDs, or posts a new message when
	// threadIDs is empty. It returns the thread ids now carrying the payload.
	// Calling it twice with the same thread ids must be safe.
	PostOrUpdate(ctx context.Context, threadIDs []string, payload entities.Notification) ([]string, error)
}

// Metrics records pipeline observations.
type Metrics interface {
	ObserveReview(kind entities.ProposalKind, decision entities.Decision, result string)
	ObserveBatchSkip(reason string)
	ObserveNotification(result string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

// ObserveReview implements Metrics.
func (NopMetrics) ObserveReview(entities.ProposalKind, entities.Decision, string) {}

// ObserveBatchSkip implements Metrics.
func (NopMetrics) ObserveBatchSkip(string) {}

// ObserveNotification implements Metrics.
func (NopMetrics) ObserveNotification(string) {}

package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// LogNotifier writes notifications to the logger instead of a remote channel.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a log notifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("module", "notify"))}
}

// PostOrUpdate logs the rendered message. New threads get a random id.
func (n *LogNotifier) PostOrUpdate(_ context.Context, threadIDs []string, payload entities.Notification) ([]string, error) {
	if len(threadIDs) == 0 {
		threadIDs = []string{"log-" + uuid.New().String()}
	}
	n.log.Info("notification",
		zap.String("event", string(payload.Event)),
		zap.Strings("threads", threadIDs),
		zap.String("content", Render(payload)))
	return threadIDs, nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// WebhookConfig configures a WebhookNotifier.
type WebhookConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	// RetryInterval is the first backoff interval. Zero uses the backoff default.
	RetryInterval time.Duration
}

// WebhookNotifier posts notification messages to a chat webhook and edits them
// in place on later updates. Thread ids are the message ids the webhook returns.
type WebhookNotifier struct {
	url    string
	client *http.Client
	cfg    WebhookConfig
	log    *zap.Logger
}

type webhookMessage struct {
	Content string                      `json:"content"`
	Event   string                      `json:"event"`
	Items   []entities.NotificationItem `json:"items"`
}

type webhookResponse struct {
	ID string `json:"id"`
}

// errMessageGone marks an edit target the webhook no longer knows.
var errMessageGone = errors.New("message not found")

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(cfg WebhookConfig, log *zap.Logger) (*WebhookNotifier, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &WebhookNotifier{
		url:    strings.TrimRight(cfg.URL, "/"),
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		log:    log.With(zap.String("module", "webhook")),
	}, nil
}

// PostOrUpdate posts a new message when threadIDs is empty and edits each
// existing message otherwise. A message deleted on the remote side is replaced
// by a new post, so the returned ids may differ from threadIDs.
func (n *WebhookNotifier) PostOrUpdate(ctx context.Context, threadIDs []string, payload entities.Notification) ([]string, error) {
	body, err := json.Marshal(webhookMessage{
		Content: Render(payload),
		Event:   string(payload.Event),
		Items:   payload.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling webhook message: %w", err)
	}

	if len(threadIDs) == 0 {
		id, err := n.post(ctx, body)
		if err != nil {
			return nil, err
		}
		return []string{id}, nil
	}

	ids := make([]string, 0, len(threadIDs))
	for _, id := range threadIDs {
		err := n.edit(ctx, id, body)
		if errors.Is(err, errMessageGone) {
			n.log.Info("webhook message gone, reposting", zap.String("message_id", id))
			id, err = n.post(ctx, body)
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (n *WebhookNotifier) post(ctx context.Context, body []byte) (string, error) {
	var out webhookResponse
	err := n.do(ctx, http.MethodPost, n.url+"?wait=true", body, &out)
	if err != nil {
		return "", fmt.Errorf("posting webhook message: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("posting webhook message: response has no message id")
	}
	return out.ID, nil
}

func (n *WebhookNotifier) edit(ctx context.Context, id string, body []byte) error {
	err := n.do(ctx, http.MethodPatch, n.url+"/messages/"+id, body, nil)
	if err != nil && !errors.Is(err, errMessageGone) {
		return fmt.Errorf("editing webhook message %s: %w", id, err)
	}
	return err
}

// do sends one request with retries. 5xx, 429 and transport errors are retried;
// other 4xx responses fail immediately.
func (n *WebhookNotifier) do(ctx context.Context, method, url string, body []byte, out any) error {
	bo := backoff.NewExponentialBackOff()
	if n.cfg.RetryInterval > 0 {
		bo.InitialInterval = n.cfg.RetryInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(n.cfg.MaxRetries)), ctx)

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound && method == http.MethodPatch:
			return backoff.Permanent(errMessageGone)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("webhook returned %s", resp.Status)
		case resp.StatusCode >= 400:
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(msg))))
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding webhook response: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		n.log.Warn("webhook request failed, retrying",
			zap.String("method", method),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return backoff.RetryNotify(operation, policy, notify)
}

package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// fakeWebhook imitates a chat webhook: POST ?wait=true creates a message,
// PATCH /messages/{id} edits one.
type fakeWebhook struct {
	mu       sync.Mutex
	messages map[string]webhookMessage
	next     int
	// failures makes the next N requests return 503.
	failures int32
	requests int32
}

func newFakeWebhook() *fakeWebhook {
	return &fakeWebhook{messages: make(map[string]webhookMessage)}
}

func (f *fakeWebhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.requests, 1)
	if atomic.AddInt32(&f.failures, -1) >= 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var msg webhookMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		if r.URL.Query().Get("wait") != "true" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		f.next++
		id := "m" + string(rune('0'+f.next))
		f.messages[id] = msg
		_ = json.NewEncoder(w).Encode(webhookResponse{ID: id})
	case http.MethodPatch:
		id := strings.TrimPrefix(r.URL.Path, "/hook/messages/")
		if _, ok := f.messages[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.messages[id] = msg
		_ = json.NewEncoder(w).Encode(webhookResponse{ID: id})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeWebhook) message(id string) (webhookMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	return m, ok
}

func newTestNotifier(t *testing.T, fake *fakeWebhook, retries int) *WebhookNotifier {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := NewWebhookNotifier(WebhookConfig{
		URL:           srv.URL + "/hook/",
		Timeout:       time.Second,
		MaxRetries:    retries,
		RetryInterval: time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return n
}

var created = entities.Notification{
	Event: entities.EventCreated,
	Items: []entities.NotificationItem{{
		ProposalID: "c1",
		Kind:       entities.KindCorrection,
		RecordSlug: "celeste",
		Title:      "Celeste",
		Field:      "engine",
		Status:     entities.StatusPending,
		Submitter:  entities.Person{ID: "alice", Name: "Alice"},
	}},
}

func TestWebhookNotifier_PostThenUpdate(t *testing.T) {
	fake := newFakeWebhook()
	n := newTestNotifier(t, fake, 0)
	ctx := context.Background()

	ids, err := n.PostOrUpdate(ctx, nil, created)
	require.NoError(t, err)
	require.Equal(t, []string{"m1"}, ids)

	msg, ok := fake.message("m1")
	require.True(t, ok)
	assert.Equal(t, "New correction for Celeste (engine) by Alice", msg.Content)
	assert.Equal(t, "created", msg.Event)

	reviewed := created
	reviewed.Event = entities.EventReviewed
	reviewed.Items = []entities.NotificationItem{created.Items[0]}
	reviewed.Items[0].Status = entities.StatusApproved
	reviewed.Items[0].Reviewer = &entities.Person{ID: "bob", Name: "Bob"}

	ids, err = n.PostOrUpdate(ctx, ids, reviewed)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)

	msg, _ = fake.message("m1")
	assert.Equal(t, "[APPROVED] correction for Celeste (engine) by Alice, reviewed by Bob", msg.Content)

	// Same update again is harmless.
	ids, err = n.PostOrUpdate(ctx, ids, reviewed)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)
}

func TestWebhookNotifier_RepostsDeletedMessage(t *testing.T) {
	fake := newFakeWebhook()
	n := newTestNotifier(t, fake, 0)

	ids, err := n.PostOrUpdate(context.Background(), []string{"gone"}, created)

	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)
}

func TestWebhookNotifier_RetriesServerErrors(t *testing.T) {
	fake := newFakeWebhook()
	fake.failures = 2
	n := newTestNotifier(t, fake, 3)

	ids, err := n.PostOrUpdate(context.Background(), nil, created)

	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.requests))
}

func TestWebhookNotifier_GivesUpAfterRetries(t *testing.T) {
	fake := newFakeWebhook()
	fake.failures = 10
	n := newTestNotifier(t, fake, 1)

	_, err := n.PostOrUpdate(context.Background(), nil, created)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.requests))
}

func TestWebhookNotifier_ClientErrorIsPermanent(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n, err := NewWebhookNotifier(WebhookConfig{URL: srv.URL, MaxRetries: 5, RetryInterval: time.Millisecond}, zap.NewNop())
	require.NoError(t, err)

	_, err = n.PostOrUpdate(context.Background(), nil, created)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad token")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestNewWebhookNotifier_RequiresURL(t *testing.T) {
	_, err := NewWebhookNotifier(WebhookConfig{}, zap.NewNop())
	require.Error(t, err)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zap.NewNop())

	ids, err := n.PostOrUpdate(context.Background(), nil, created)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.True(t, strings.HasPrefix(ids[0], "log-"))

	again, err := n.PostOrUpdate(context.Background(), ids, created)
	require.NoError(t, err)
	assert.Equal(t, ids, again)
}

func TestRender(t *testing.T) {
	n := entities.Notification{
		Event: entities.EventReviewed,
		Items: []entities.NotificationItem{
			{Kind: entities.KindSubmission, RecordSlug: "tunic", Status: entities.StatusSuperseded, Submitter: entities.Person{ID: "carol"}, Notes: "Superseded by approved submission s1"},
			{Kind: entities.KindCorrection, Title: "Celeste", Field: "engine", Status: entities.StatusRejected, Submitter: entities.Person{ID: "alice", Name: "Alice"}},
		},
	}

	assert.Equal(t,
		"[SUPERSEDED] submission for tunic by carol: Superseded by approved submission s1\n[REJECTED] correction for Celeste (engine) by Alice",
		Render(n))

	long := entities.Notification{Event: entities.EventCreated}
	for i := 0; i < 200; i++ {
		long.Items = append(long.Items, created.Items[0])
	}
	out := Render(long)
	assert.Len(t, out, maxContentLength)
	assert.True(t, strings.HasSuffix(out, "..."))
}

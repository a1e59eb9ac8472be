package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shenikar/incident_board/internal/config"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// chanQueue - очередь для тестов поверх канала
type chanQueue struct {
	items chan string
}

func (q *chanQueue) Pop(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case item := <-q.items:
		return item, nil
	}
}

func newTestWorker(t *testing.T, url string, queue Queue) *Worker {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		WebhookURL:        url,
		WebhookSecret:     "secret",
		WebhookTimeout:    time.Second,
		WebhookMaxRetries: 3,
		WebhookBaseDelay:  time.Millisecond,
	}
	worker := NewWorker(queue, logger, cfg)
	t.Cleanup(worker.httpClient.GetClient().CloseIdleConnections)
	return worker
}

func testPayload(t *testing.T) string {
	t.Helper()
	payload, err := json.Marshal(DispatchEvent{
		ID:         uuid.New(),
		Action:     models.ActionDispatched,
		IncidentID: "INC-1",
		Priority:   models.PriorityHigh,
		UnitIDs:    []string{"PD-15"},
		Timestamp:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return string(payload)
}

func TestWorker_DeliversSignedPayload(t *testing.T) {
	payload := testPayload(t)
	received := make(chan *http.Request, 1)
	bodies := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received <- r
		bodies <- string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	queue := &chanQueue{items: make(chan string, 1)}
	worker := newTestWorker(t, server.URL, queue)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	queue.items <- payload

	select {
	case r := <-received:
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, generateHMACSHA256(payload, "secret"), r.Header.Get("X-Webhook-Signature"))
		assert.Equal(t, payload, <-bodies)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWorker_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	worker := newTestWorker(t, server.URL, &chanQueue{})
	payload := testPayload(t)
	var event DispatchEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))

	err := worker.deliver(context.Background(), event, payload)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWorker_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	worker := newTestWorker(t, server.URL, &chanQueue{})

	err := worker.deliver(context.Background(), DispatchEvent{IncidentID: "INC-1"}, "{}")

	require.Error(t, err)
	assert.ErrorContains(t, err, "status 500")
	assert.Equal(t, int32(3), calls.Load())
}

func TestWorker_SkipsWithoutURL(t *testing.T) {
	worker := newTestWorker(t, "", &chanQueue{})

	err := worker.deliver(context.Background(), DispatchEvent{IncidentID: "INC-1"}, "{}")

	assert.NoError(t, err)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	queue := &chanQueue{items: make(chan string)}
	worker := newTestWorker(t, "", queue)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// битый payload пропускается, воркер продолжает работу
	queue.items <- "not-json"
	queue.items <- testPayload(t)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestGenerateHMACSHA256(t *testing.T) {
	// известное значение HMAC-SHA256("payload", "secret")
	assert.Equal(t,
		"b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4",
		generateHMACSHA256("payload", "secret"),
	)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), DispatchEvent{}))
}

package relation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/certkit/Legra/orchestrator"
)

type fakeQueueStore struct {
	pending  []string
	deferred []string
	requests map[string]orchestrator.CreationRequest
}

func (f *fakeQueueStore) NextPending(_ context.Context, _ time.Duration) (string, error) {
	if len(f.pending) == 0 {
		return "", ErrNotFound
	}
	id := f.pending[0]
	f.pending = f.pending[1:]
	return id, nil
}

func (f *fakeQueueStore) LoadRequest(_ context.Context, correlationID string) (orchestrator.CreationRequest, error) {
	req, ok := f.requests[correlationID]
	if !ok {
		return req, ErrNotFound
	}
	return req, nil
}

func (f *fakeQueueStore) Defer(_ context.Context, req orchestrator.CreationRequest) error {
	f.deferred = append(f.deferred, req.CorrelationID)
	return nil
}

func (f *fakeQueueStore) RedeliverDeferred(_ context.Context) (int, error) {
	moved := len(f.deferred)
	f.pending = append(f.pending, f.deferred...)
	f.deferred = nil
	return moved, nil
}

type fakeHandler struct {
	err     error
	handled []orchestrator.CreationRequest
}

func (f *fakeHandler) HandleCreationRequest(_ context.Context, req orchestrator.CreationRequest) error {
	f.handled = append(f.handled, req)
	return f.err
}

type staticLeader bool

func (s staticLeader) IsLeader(context.Context) (bool, error) {
	return bool(s), nil
}

func testConsumer(store *fakeQueueStore, handler *fakeHandler, leader bool) *Consumer {
	return &Consumer{
		Store:       store,
		Handler:     handler,
		Leader:      staticLeader(leader),
		PollTimeout: time.Millisecond,
	}
}

func queuedStore() *fakeQueueStore {
	return &fakeQueueStore{
		pending: []string{"req_1"},
		requests: map[string]orchestrator.CreationRequest{
			"req_1": {CorrelationID: "req_1", CSR: "pem"},
		},
	}
}

func TestTickConsumes(t *testing.T) {
	store := queuedStore()
	handler := &fakeHandler{}
	testConsumer(store, handler, true).tick()

	if len(handler.handled) != 1 || handler.handled[0].CorrelationID != "req_1" {
		t.Fatalf("expected the request handled, got %+v", handler.handled)
	}
	if len(store.pending) != 0 || len(store.deferred) != 0 {
		t.Fatalf("expected empty queues, got pending=%v deferred=%v", store.pending, store.deferred)
	}
}

func TestTickNonLeaderLeavesQueue(t *testing.T) {
	store := queuedStore()
	handler := &fakeHandler{}
	testConsumer(store, handler, false).tick()

	if len(handler.handled) != 0 {
		t.Fatalf("non-leader must not consume, handled %+v", handler.handled)
	}
	if len(store.pending) != 1 {
		t.Fatalf("expected the request left on pending, got %v", store.pending)
	}
}

func TestLostLeaseReparksRequest(t *testing.T) {
	// tick saw the lease, but it was gone by the time the handler checked
	store := queuedStore()
	handler := &fakeHandler{err: orchestrator.ErrNotLeader}
	testConsumer(store, handler, true).tick()

	if len(store.deferred) != 1 || store.deferred[0] != "req_1" {
		t.Fatalf("expected the request re-parked on deferred, got %v", store.deferred)
	}

	// redelivery hands it back to the (new) leader
	consumer := testConsumer(store, handler, true)
	moved, err := consumer.Store.RedeliverDeferred(context.Background())
	if err != nil || moved != 1 {
		t.Fatalf("expected 1 redelivered, got %d (%v)", moved, err)
	}
	if len(store.pending) != 1 {
		t.Fatalf("expected the request back on pending, got %v", store.pending)
	}
}

func TestHandlerErrorReparksRequest(t *testing.T) {
	store := queuedStore()
	handler := &fakeHandler{err: errors.New("redis down")}
	testConsumer(store, handler, true).tick()

	if len(store.deferred) != 1 {
		t.Fatalf("expected the request re-parked on deferred, got %v", store.deferred)
	}
}

func TestPendingIDWithoutRequestDropped(t *testing.T) {
	store := &fakeQueueStore{
		pending:  []string{"req_orphan"},
		requests: map[string]orchestrator.CreationRequest{},
	}
	handler := &fakeHandler{}
	testConsumer(store, handler, true).tick()

	if len(handler.handled) != 0 || len(store.deferred) != 0 {
		t.Fatalf("expected the orphan dropped, handled=%v deferred=%v", handler.handled, store.deferred)
	}
}

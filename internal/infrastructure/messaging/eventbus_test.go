package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-academy-hub/internal/domain/shared"
)

type recordingHandler struct {
	mu     sync.Mutex
	name   string
	events []shared.Event
	err    error
	panics bool
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Handle(event shared.Event) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	return h.err
}

func (h *recordingHandler) received() []shared.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.Event, len(h.events))
	copy(out, h.events)
	return out
}

func newSyncBus() *InMemoryEventBus {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestInMemoryEventBus_DeliversToSubscribedHandler(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	handler := &recordingHandler{name: "plan-expiry-notifier"}
	require.NoError(t, bus.Subscribe(shared.EventPlanExpired, handler))

	event := shared.NewPlanExpiredEvent("student-1", "parent-1", time.Now(), "sweep")
	require.NoError(t, bus.Publish(event))

	received := handler.received()
	require.Len(t, received, 1)
	assert.Equal(t, shared.EventPlanExpired, received[0].EventType())
	assert.Equal(t, "student-1", received[0].AggregateID())
}

func TestInMemoryEventBus_TypeFiltering(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	planHandler := &recordingHandler{name: "plan-handler"}
	allHandler := &recordingHandler{name: "audit-log"}
	require.NoError(t, bus.Subscribe(shared.EventPlanExpired, planHandler))
	require.NoError(t, bus.SubscribeAll(allHandler))

	sweep := shared.NewSweepCompletedEvent(3, time.Now())
	require.NoError(t, bus.Publish(sweep))

	assert.Empty(t, planHandler.received())
	assert.Len(t, allHandler.received(), 1)
}

func TestInMemoryEventBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	failing := &recordingHandler{name: "failing", err: errors.New("smtp down")}
	require.NoError(t, bus.SubscribeAll(failing))

	err := bus.Publish(shared.NewSweepCompletedEvent(1, time.Now()))
	assert.NoError(t, err)

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalHandlerExecs)
	assert.Equal(t, 0.0, snapshot.HandlerSuccessRate)
}

func TestInMemoryEventBus_RecoversFromHandlerPanic(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(&recordingHandler{name: "panicking", panics: true}))

	assert.NotPanics(t, func() {
		_ = bus.Publish(shared.NewSweepCompletedEvent(1, time.Now()))
	})
}

func TestInMemoryEventBus_ClosedBusRejectsPublish(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewSweepCompletedEvent(0, time.Now()))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventPlanExpired, &recordingHandler{name: "late"})
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestInMemoryEventBus_AsyncDelivery(t *testing.T) {
	cfg := DefaultInMemoryEventBusConfig()
	cfg.WorkerPoolSize = 2
	bus := NewInMemoryEventBus(cfg)

	handler := &recordingHandler{name: "async"}
	require.NoError(t, bus.Subscribe(shared.EventSweepCompleted, handler))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewSweepCompletedEvent(i, time.Now())))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())
	assert.Len(t, handler.received(), 5)
}

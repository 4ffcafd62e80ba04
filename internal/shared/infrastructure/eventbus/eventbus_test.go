package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rankedEvent struct {
	domain.BaseEvent
	Count int `json:"count"`
}

func newRankedEvent(count int) rankedEvent {
	return rankedEvent{
		BaseEvent: domain.NewBaseEvent(uuid.New(), "AnalysisRun", "priority.batch.analyzed"),
		Count:     count,
	}
}

type flakyPublisher struct {
	failures int32
	calls    atomic.Int32
	err      error
}

func (p *flakyPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	n := p.calls.Add(1)
	if n <= p.failures {
		return p.err
	}
	return nil
}

func (p *flakyPublisher) Close() error { return nil }

func fastRetry() eventbus.RetryConfig {
	return eventbus.RetryConfig{
		InitialInterval:  time.Millisecond,
		MaxInterval:      2 * time.Millisecond,
		MaxElapsedTime:   200 * time.Millisecond,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}
}

func TestDispatcher_PublishesEnvelope(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	dispatcher := eventbus.NewDispatcher(bus, nil)

	ctx := observability.WithRequestID(observability.WithCorrelationID(context.Background(), "corr-1"), "req-1")
	event := newRankedEvent(3)

	require.NoError(t, dispatcher.Dispatch(ctx, event))

	msgs := bus.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, event.EventID(), msgs[0].EventID)
	assert.Equal(t, "priority.batch.analyzed", msgs[0].RoutingKey)
	assert.Equal(t, "AnalysisRun", msgs[0].AggregateType)
	assert.Equal(t, "corr-1", msgs[0].Metadata.CorrelationID)
	assert.Equal(t, "req-1", msgs[0].Metadata.RequestID)

	var payload struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, 3, payload.Count)
}

func TestDispatcher_JoinsErrors(t *testing.T) {
	pub := &flakyPublisher{failures: 100, err: errors.New("broker down")}
	dispatcher := eventbus.NewDispatcher(pub, nil)

	err := dispatcher.Dispatch(context.Background(), newRankedEvent(1), newRankedEvent(2))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, int32(2), pub.calls.Load())
}

func TestInProcessBus_Subscribe(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)

	var got []string
	bus.Subscribe("priority.#", func(ctx context.Context, env eventbus.ReceivedEnvelope) error {
		got = append(got, env.RoutingKey)
		return nil
	})
	bus.Subscribe("priority.cycle.*", func(ctx context.Context, env eventbus.ReceivedEnvelope) error {
		return errors.New("handler errors are swallowed")
	})

	dispatcher := eventbus.NewDispatcher(bus, nil)
	require.NoError(t, dispatcher.Dispatch(context.Background(), newRankedEvent(1)))

	assert.Equal(t, []string{"priority.batch.analyzed"}, got)
}

func TestInProcessBus_RejectsBadPayload(t *testing.T) {
	bus := eventbus.NewInProcessBus(nil)
	assert.Error(t, bus.Publish(context.Background(), "x", []byte("{")))
	assert.Empty(t, bus.Messages())
}

func TestMatchRoutingKey(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"priority.batch.analyzed", "priority.batch.analyzed", true},
		{"priority.*.analyzed", "priority.batch.analyzed", true},
		{"priority.*", "priority.batch.analyzed", false},
		{"priority.#", "priority.batch.analyzed", true},
		{"#", "priority.cycle.detected", true},
		{"priority.#.detected", "priority.detected", true},
		{"priority.cycle.detected", "priority.batch.analyzed", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"->"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, eventbus.MatchRoutingKey(tt.pattern, tt.key))
		})
	}
}

func TestResilientPublisher_RetriesTransientErrors(t *testing.T) {
	inner := &flakyPublisher{failures: 2, err: errors.New("timeout")}
	pub := eventbus.NewResilientPublisher(inner, fastRetry(), nil)

	require.NoError(t, pub.Publish(context.Background(), "k", []byte("{}")))
	assert.Equal(t, int32(3), inner.calls.Load())
	assert.Equal(t, gobreaker.StateClosed, pub.State())
}

func TestResilientPublisher_OpensBreaker(t *testing.T) {
	inner := &flakyPublisher{failures: 1000, err: errors.New("connection refused")}
	pub := eventbus.NewResilientPublisher(inner, fastRetry(), nil)

	err := pub.Publish(context.Background(), "k", []byte("{}"))
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, pub.State())

	calls := inner.calls.Load()
	err = pub.Publish(context.Background(), "k", []byte("{}"))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, inner.calls.Load())
}

func TestResilientPublisher_StopsOnCancel(t *testing.T) {
	inner := &flakyPublisher{failures: 1000, err: errors.New("timeout")}
	pub := eventbus.NewResilientPublisher(inner, fastRetry(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pub.Publish(ctx, "k", []byte("{}"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), inner.calls.Load())
}

func TestNoopPublisher(t *testing.T) {
	pub := eventbus.NewNoopPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), "k", nil))
	assert.NoError(t, pub.Close())
}

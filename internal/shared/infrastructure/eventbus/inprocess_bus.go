package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
)

// Handler receives a decoded envelope. The payload is left as raw JSON.
type Handler func(ctx context.Context, env ReceivedEnvelope) error

// ReceivedEnvelope is an envelope read back from the wire.
type ReceivedEnvelope struct {
	domain.Envelope
	Payload json.RawMessage `json:"payload"`
}

type subscription struct {
	pattern string
	handler Handler
}

// InProcessBus delivers published events synchronously to subscribers in
// the same process. It is the local-mode stand-in for RabbitMQ.
type InProcessBus struct {
	mu       sync.Mutex
	subs     []subscription
	messages []ReceivedEnvelope
	logger   *slog.Logger
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers handler for a routing key pattern. Patterns follow
// topic exchange rules: "*" matches one word and "#" matches zero or more.
func (b *InProcessBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
}

// Publish decodes the payload and hands it to every matching subscriber.
// Handler errors are logged, never returned.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var env ReceivedEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	if env.RoutingKey == "" {
		env.RoutingKey = routingKey
	}

	b.mu.Lock()
	b.messages = append(b.messages, env)
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if !MatchRoutingKey(s.pattern, routingKey) {
			continue
		}
		if err := s.handler(ctx, env); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				"routing_key", routingKey,
				"event_id", env.EventID,
				"error", err,
			)
		}
	}
	return nil
}

// Messages returns every envelope published so far.
func (b *InProcessBus) Messages() []ReceivedEnvelope {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ReceivedEnvelope, len(b.messages))
	copy(out, b.messages)
	return out
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}

// MatchRoutingKey reports whether key matches a topic pattern.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	if len(pattern) == 0 {
		return len(key) == 0
	}
	switch pattern[0] {
	case "#":
		for i := 0; i <= len(key); i++ {
			if matchWords(pattern[1:], key[i:]) {
				return true
			}
		}
		return false
	case "*":
		return len(key) > 0 && matchWords(pattern[1:], key[1:])
	default:
		return len(key) > 0 && pattern[0] == key[0] && matchWords(pattern[1:], key[1:])
	}
}

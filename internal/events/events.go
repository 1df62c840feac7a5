// Package events publishes domain notifications for downstream consumers
// such as email or analytics workers. Delivery is best effort.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Routing keys.
const (
	AccountCreated    = "account.created"
	TrialStarted      = "trial.started"
	ArtifactGenerated = "artifact.generated"
)

// Publisher delivers an encoded event under a routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload []byte) error
	Close() error
}

// AccountCreatedEvent carries no contact details; consumers resolve them by
// account id.
type AccountCreatedEvent struct {
	AccountID  string    `json:"accountId"`
	OccurredAt time.Time `json:"occurredAt"`
}

type TrialStartedEvent struct {
	AccountID  string    `json:"accountId"`
	TrialStart time.Time `json:"trialStart"`
	TrialEnd   time.Time `json:"trialEnd"`
	OccurredAt time.Time `json:"occurredAt"`
}

type ArtifactGeneratedEvent struct {
	AccountID     string    `json:"accountId"`
	ArtifactID    string    `json:"artifactId"`
	Kind          string    `json:"kind"`
	EffectiveDate string    `json:"effectiveDate"`
	TrialReport   bool      `json:"trialReport"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Queue size and per-event publish timeout of the Emitter.
const (
	QueueSize      = 256
	PublishTimeout = 5 * time.Second
)

type envelope struct {
	routingKey string
	payload    []byte
}

// Emitter encodes events and hands them to a Publisher from a single
// background goroutine, so requests never wait on the broker. Failures and
// overflow are logged and swallowed.
type Emitter struct {
	pub    Publisher
	logger zerolog.Logger
	queue  chan envelope
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewEmitter(pub Publisher, logger zerolog.Logger) *Emitter {
	if pub == nil {
		pub = NewLogPublisher(logger)
	}
	e := &Emitter{
		pub:    pub,
		logger: logger,
		queue:  make(chan envelope, QueueSize),
		done:   make(chan struct{}),
	}
	go e.run()
	return e
}

// Emit queues event under routingKey. It never blocks.
func (e *Emitter) Emit(_ context.Context, routingKey string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Error().Err(err).Str("routing_key", routingKey).Msg("events: encode failed")
		return
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		e.logger.Warn().Str("routing_key", routingKey).Msg("events: emitter closed, event dropped")
		return
	}
	select {
	case e.queue <- envelope{routingKey: routingKey, payload: payload}:
	default:
		e.logger.Warn().Str("routing_key", routingKey).Msg("events: queue full, event dropped")
	}
}

func (e *Emitter) run() {
	defer close(e.done)
	for env := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		if err := e.pub.Publish(ctx, env.routingKey, env.payload); err != nil {
			e.logger.Warn().Err(err).Str("routing_key", env.routingKey).Msg("events: publish failed")
		}
		cancel()
	}
}

// Close delivers queued events, then closes the publisher.
func (e *Emitter) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return nil
	}
	e.closed = true
	close(e.queue)
	e.mu.Unlock()

	<-e.done
	return e.pub.Close()
}

// LogPublisher writes events to the service log. It is the default when no
// broker is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	p.logger.Info().Str("routing_key", routingKey).RawJSON("event", payload).Msg("event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

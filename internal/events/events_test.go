package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	keys     []string
	payloads [][]byte
	err      error
	ctxErr   error
	closed   bool
}

func (r *recordingPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	r.keys = append(r.keys, key)
	r.payloads = append(r.payloads, payload)
	r.ctxErr = ctx.Err()
	return r.err
}

func (r *recordingPublisher) Close() error {
	r.closed = true
	return nil
}

func TestEmitEncodesEvent(t *testing.T) {
	pub := &recordingPublisher{}
	e := NewEmitter(pub, zerolog.Nop())
	at := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	e.Emit(context.Background(), ArtifactGenerated, ArtifactGeneratedEvent{
		AccountID: "acc-1", ArtifactID: "art-1", Kind: "report", EffectiveDate: "2025-03-10", OccurredAt: at,
	})
	require.NoError(t, e.Close())

	require.Equal(t, []string{ArtifactGenerated}, pub.keys)
	var got map[string]any
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, "acc-1", got["accountId"])
	assert.Equal(t, "2025-03-10", got["effectiveDate"])
	assert.True(t, pub.closed)
}

func TestEmitSurvivesCancelledRequest(t *testing.T) {
	pub := &recordingPublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEmitter(pub, zerolog.Nop())
	e.Emit(ctx, AccountCreated, AccountCreatedEvent{AccountID: "acc-1"})
	require.NoError(t, e.Close())
	require.Len(t, pub.keys, 1)
	assert.NoError(t, pub.ctxErr)
}

func TestEmitLogsPublishFailure(t *testing.T) {
	var buf bytes.Buffer
	pub := &recordingPublisher{err: errors.New("broker down")}

	e := NewEmitter(pub, zerolog.New(&buf))
	e.Emit(context.Background(), TrialStarted, TrialStartedEvent{AccountID: "acc-1"})
	require.NoError(t, e.Close())
	assert.Contains(t, buf.String(), "broker down")
	assert.Contains(t, buf.String(), TrialStarted)
}

type blockingPublisher struct {
	release chan struct{}
	mu      sync.Mutex
	count   int
}

func (b *blockingPublisher) Publish(ctx context.Context, _ string, _ []byte) error {
	<-b.release
	b.mu.Lock()
	b.count++
	b.mu.Unlock()
	return nil
}

func (b *blockingPublisher) Close() error { return nil }

func TestEmitDoesNotWaitForBroker(t *testing.T) {
	var buf bytes.Buffer
	pub := &blockingPublisher{release: make(chan struct{})}
	e := NewEmitter(pub, zerolog.New(&buf))

	start := time.Now()
	for i := 0; i < QueueSize+10; i++ {
		e.Emit(context.Background(), TrialStarted, TrialStartedEvent{AccountID: "acc-1"})
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, buf.String(), "queue full")

	close(pub.release)
	require.NoError(t, e.Close())
	assert.GreaterOrEqual(t, pub.count, QueueSize)

	e.Emit(context.Background(), TrialStarted, TrialStartedEvent{AccountID: "acc-1"})
	assert.Contains(t, buf.String(), "emitter closed")
}

func TestLogPublisherOmitsContactDetails(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(nil, zerolog.New(&buf))

	e.Emit(context.Background(), AccountCreated, AccountCreatedEvent{AccountID: "acc-1"})
	require.NoError(t, e.Close())
	assert.Contains(t, buf.String(), `"routing_key":"account.created"`)
	assert.Contains(t, buf.String(), `"accountId":"acc-1"`)
	assert.NotContains(t, buf.String(), "email")
}

type fakeChannel struct {
	closed    bool
	err       error
	published []string
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, _ amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, key)
	return nil
}

func (c *fakeChannel) IsClosed() bool { return c.closed }

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type fakeDialer struct {
	channels []*fakeChannel
	err      error
}

func (d *fakeDialer) dial(string, string) (io.Closer, amqpChannel, error) {
	if d.err != nil {
		return nil, nil, d.err
	}
	ch := &fakeChannel{}
	d.channels = append(d.channels, ch)
	return nopCloser{}, ch, nil
}

func TestRabbitMQPublisherReconnectsAfterChannelClose(t *testing.T) {
	d := &fakeDialer{}
	p, err := newRabbitMQPublisher("amqp://broker", "", zerolog.Nop(), d.dial)
	require.NoError(t, err)
	assert.Equal(t, DefaultExchange, p.exchange)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, AccountCreated, []byte(`{}`)))
	d.channels[0].closed = true

	require.NoError(t, p.Publish(ctx, TrialStarted, []byte(`{}`)))
	require.Len(t, d.channels, 2)
	assert.Equal(t, []string{AccountCreated}, d.channels[0].published)
	assert.Equal(t, []string{TrialStarted}, d.channels[1].published)
}

func TestRabbitMQPublisherRedialsAfterPublishFailure(t *testing.T) {
	d := &fakeDialer{}
	p, err := newRabbitMQPublisher("amqp://broker", "kira.events", zerolog.Nop(), d.dial)
	require.NoError(t, err)
	ctx := context.Background()

	d.channels[0].err = errors.New("connection reset")
	require.Error(t, p.Publish(ctx, AccountCreated, []byte(`{}`)))

	require.NoError(t, p.Publish(ctx, AccountCreated, []byte(`{}`)))
	require.Len(t, d.channels, 2)
	assert.Equal(t, []string{AccountCreated}, d.channels[1].published)
}

func TestRabbitMQPublisherReportsDialFailure(t *testing.T) {
	d := &fakeDialer{}
	p, err := newRabbitMQPublisher("amqp://broker", "", zerolog.Nop(), d.dial)
	require.NoError(t, err)
	d.channels[0].closed = true
	d.err = errors.New("refused")

	err = p.Publish(context.Background(), AccountCreated, []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reconnect rabbitmq")

	_, err = newRabbitMQPublisher("amqp://broker", "", zerolog.Nop(), d.dial)
	assert.Error(t, err)
}

package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/livehaul-backend/pkg/config"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

type recordingPublisher struct {
	channel string
	payload []byte
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, channel string, payload []byte) (int64, error) {
	p.channel = channel
	p.payload = payload
	return 1, p.err
}

type failingSink struct{ err error }

func (f failingSink) Notify(context.Context, Event) error { return f.err }

func TestRedisSinkPublishesEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	sink, err := NewRedisSink(pub, "livehaul:")
	require.NoError(t, err)

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	event := Event{Name: EventTripStarted, OccurredAt: at, Data: map[string]string{"tripId": "t-1"}}
	require.NoError(t, sink.Notify(context.Background(), event))

	assert.Equal(t, "livehaul:trip.started", pub.channel)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	assert.Equal(t, "trip.started", decoded["event"])
	assert.Equal(t, "2026-02-01T10:00:00Z", decoded["occurredAt"])
	assert.Equal(t, map[string]any{"tripId": "t-1"}, decoded["data"])
}

func TestRedisSinkWrapsPublishError(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("connection refused")}
	sink, err := NewRedisSink(pub, "")
	require.NoError(t, err)

	err = sink.Notify(context.Background(), NewEvent(EventEscrowFunded, nil))
	require.ErrorContains(t, err, "connection refused")
	assert.Equal(t, "livehaul:escrow.funded", pub.channel)
}

func TestNewRedisSinkRequiresPublisher(t *testing.T) {
	_, err := NewRedisSink(nil, "x")
	require.Error(t, err)
}

func TestMultiSinkCombinesErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	sink := MultiSink{failingSink{first}, Nop{}, nil, failingSink{second}}

	err := sink.Notify(context.Background(), NewEvent(EventDisputeOpened, nil))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}

func TestPublishLogsFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	Publish(context.Background(), failingSink{errors.New("boom")}, logg, NewEvent(EventDisputeResolved, nil))
	assert.Contains(t, buf.String(), "notification delivery failed")
	assert.Contains(t, buf.String(), "dispute.resolved")

	buf.Reset()
	Publish(context.Background(), NewLogSink(logg), logg, NewEvent(EventTripConfirmed, nil))
	assert.Contains(t, buf.String(), "lifecycle event")
	assert.NotContains(t, buf.String(), "notification delivery failed")
}

func TestFromConfig(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "notifications-test", Output: &bytes.Buffer{}})
	pub := &recordingPublisher{}

	sink, err := FromConfig(config.NotificationsConfig{Enabled: false}, pub, logg)
	require.NoError(t, err)
	require.NoError(t, sink.Notify(context.Background(), NewEvent(EventTripDelivered, nil)))
	assert.Empty(t, pub.channel)

	sink, err = FromConfig(config.NotificationsConfig{Enabled: true, ChannelPrefix: "lh"}, pub, logg)
	require.NoError(t, err)
	require.NoError(t, sink.Notify(context.Background(), NewEvent(EventTripDelivered, nil)))
	assert.Equal(t, "lh:trip.delivered", pub.channel)

	_, err = FromConfig(config.NotificationsConfig{Enabled: true}, nil, logg)
	assert.Error(t, err)
}

package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/angelmondragon/livehaul-backend/pkg/config"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

// Sink receives lifecycle events for real-time delivery. Delivery is best
// effort; a failing sink never undoes the transition that raised the event.
type Sink interface {
	Notify(ctx context.Context, event Event) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisSink publishes each event as JSON on the channel <prefix>:<event>.
type RedisSink struct {
	pub    publisher
	prefix string
}

func NewRedisSink(pub publisher, prefix string) (*RedisSink, error) {
	if pub == nil {
		return nil, fmt.Errorf("redis publisher required")
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "livehaul"
	}
	return &RedisSink{pub: pub, prefix: prefix}, nil
}

// Channel returns the channel name used for event.
func (s *RedisSink) Channel(name EventName) string {
	return s.prefix + ":" + name.String()
}

func (s *RedisSink) Notify(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Name, err)
	}
	if _, err := s.pub.Publish(ctx, s.Channel(event.Name), payload); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Name, err)
	}
	return nil
}

// LogSink writes events to the structured log only.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, event Event) error {
	if s.logg == nil {
		return nil
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"event":       event.Name.String(),
		"occurred_at": event.OccurredAt,
	}), "lifecycle event")
	return nil
}

// MultiSink fans an event out to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Notify(ctx context.Context, event Event) error {
	var errs error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		errs = multierr.Append(errs, sink.Notify(ctx, event))
	}
	return errs
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

// Publish notifies sink and logs any delivery failure instead of returning it.
func Publish(ctx context.Context, sink Sink, logg *logger.Logger, event Event) {
	if sink == nil {
		return
	}
	if err := sink.Notify(ctx, event); err != nil && logg != nil {
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"event": event.Name.String(),
			"error": err.Error(),
		}), "notification delivery failed")
	}
}

// FromConfig builds the sink used by the binaries: the log sink alone when
// notifications are disabled, else redis publishing plus the log sink.
func FromConfig(cfg config.NotificationsConfig, pub publisher, logg *logger.Logger) (Sink, error) {
	logSink := NewLogSink(logg)
	if !cfg.Enabled {
		return logSink, nil
	}
	redisSink, err := NewRedisSink(pub, cfg.ChannelPrefix)
	if err != nil {
		return nil, err
	}
	return MultiSink{redisSink, logSink}, nil
}

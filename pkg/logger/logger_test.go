package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithEntity(ctx, "trip", "trip-1")

	log.Error(ctx, "boom", errors.New("boom"))

	require.Contains(t, buf.String(), `"request_id":"req-123"`)
	require.Contains(t, buf.String(), `"trip_id":"trip-1"`)
	require.Contains(t, buf.String(), `"stack"`)
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	require.Contains(t, buf.String(), `"stack"`)

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})
	quiet.Warn(context.Background(), "warny")
	require.NotContains(t, buf.String(), `"stack"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("warn"), Output: buf})
	log.Info(context.Background(), "hidden")
	require.Empty(t, buf.String())
}

func TestParseLevelDefaults(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	require.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
}

func TestLoggerConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Format: FormatConsole, Output: buf})
	log.Info(log.WithEntity(context.Background(), "payment", "pay-9"), "escrow funded")

	require.Contains(t, buf.String(), "escrow funded")
	require.Contains(t, buf.String(), "payment_id=pay-9")
	require.NotContains(t, buf.String(), `{"level"`)
}

func TestLoggerFieldsAreOrderedAndScoped(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	base := log.WithActor(context.Background(), "user-1", "shipper")
	scoped := log.WithFields(base, map[string]any{"operation": "fund_payment", "amount": "1450"})

	log.Info(scoped, "escrow funded")
	line := buf.String()
	require.Contains(t, line, `"user_id":"user-1"`)
	require.Contains(t, line, `"actor_role":"shipper"`)
	require.Less(t, strings.Index(line, `"amount"`), strings.Index(line, `"operation"`))

	buf.Reset()
	log.Info(base, "plain")
	require.NotContains(t, buf.String(), "operation")
}

package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})

	t.Run("Level option controls Enabled", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
		})

		assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo), "Expected info to be disabled at warn level")
		assert.True(t, handler.Enabled(context.Background(), slog.LevelError), "Expected error to be enabled at warn level")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level  slog.Level
		prefix string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}

	for _, tc := range levels {
		t.Run("Handle "+tc.prefix+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), tc.level, "propagated network", 0)
			record.AddAttrs(slog.Int("edges", 42), slog.String("watershed", "17010302"))

			err := handler.Handle(ctx, record)
			assert.NoError(t, err, "Expected Handle to not return an error")

			output := buf.String()
			assert.Contains(t, output, tc.prefix, "Expected output to contain the level")
			assert.Contains(t, output, "propagated network", "Expected output to contain the message")
			assert.Contains(t, output, "edges", "Expected output to contain attribute key")
			assert.Contains(t, output, "42", "Expected output to contain attribute value")
			assert.Contains(t, output, "17010302", "Expected output to contain string attribute value")
		})
	}

	t.Run("Handle record without attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "done", 0))

		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "{}", "Expected empty JSON object for attributes")
	})

	t.Run("Handle formats timestamp", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "time test", 0))

		assert.NoError(t, err)
		assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, buf.String(), "Expected [15:04:05.000] timestamp")
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Logger writes through pretty handler", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)

		logger.Info("building network", slog.Int("segments", 3))
		logger.Debug("hidden")

		assert.Contains(t, buf.String(), "building network")
		assert.Contains(t, buf.String(), "segments")
		assert.NotContains(t, buf.String(), "hidden", "Expected debug record to be filtered at info level")
	})
}

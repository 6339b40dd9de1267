package logger_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/userkit/pkg/logger"
)

func TestAttrs(t *testing.T) {
	t.Run("error attr", func(t *testing.T) {
		attr := logger.Error(errors.New("boom"))
		assert.Equal(t, "error", attr.Key)

		assert.Equal(t, slog.Attr{}, logger.Error(nil))
	})

	t.Run("user id attr", func(t *testing.T) {
		attr := logger.UserID("u-1")
		assert.Equal(t, "user_id", attr.Key)

		assert.Equal(t, slog.Attr{}, logger.UserID(nil))
	})

	t.Run("component attr", func(t *testing.T) {
		attr := logger.Component("session")
		assert.Equal(t, "component", attr.Key)
		assert.Equal(t, "session", attr.Value.String())
	})
}

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(
			logger.WithFormat(logger.FormatJSON),
			logger.WithOutput(&buf),
			logger.WithAttr(logger.Component("test")),
		)

		log.Info("hello")
		assert.Contains(t, buf.String(), `"component":"test"`)
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

		log.Info("filtered")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.New(logger.WithFormat("yaml"))
		})
	})
}

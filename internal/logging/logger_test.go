package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/debot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("Text renames error key", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.NewWithWriter(&buf, slog.LevelInfo, "text")
		require.NoError(t, err)
		logger.Info("failed", "error", errors.New("boom"))
		assert.Contains(t, buf.String(), "err=boom")
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.NewWithWriter(&buf, slog.LevelDebug, "json")
		require.NoError(t, err)
		logger.Debug("hello", "k", 1)
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("Level filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := logging.NewWithWriter(&buf, slog.LevelWarn, "text")
		require.NoError(t, err)
		logger.Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("Unknown format", func(t *testing.T) {
		_, err := logging.NewWithWriter(&bytes.Buffer{}, slog.LevelInfo, "xml")
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	level, err := logging.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = logging.ParseLevel("loud")
	assert.Error(t, err)
}

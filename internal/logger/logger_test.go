package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	err := InitLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestInitLoggerWritesToFile(t *testing.T) {
	t.Cleanup(func() {
		SetLogger(zerolog.Nop())
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "bot.log")
	require.NoError(t, InitLogger(Config{Level: "info", Format: "json", Output: "file", FilePath: path}))
	assert.FileExists(t, path)
}

func TestSetLoggerCapturesEvents(t *testing.T) {
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	Info().Str("session_id", "s-1").Msg("hello")

	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

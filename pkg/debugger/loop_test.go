package debugger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")

	state := liner.NewLiner()
	state.AppendHistory("si 3")
	state.AppendHistory("p $a0 + 1")
	require.NoError(t, saveHistory(state, path))
	state.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "si 3\np $a0 + 1\n", string(data))

	state = liner.NewLiner()
	defer state.Close()
	require.NoError(t, loadHistory(state, path))
}

func TestHistory_ErrorsAreLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	missing := filepath.Join(t.TempDir(), "missing", "history")

	state := liner.NewLiner()
	assert.Error(t, loadHistory(state, missing))
	state.Close()

	reader := &linerReader{state: liner.NewLiner(), historyPath: missing, logger: logger}
	reader.Close()

	assert.Contains(t, logs.String(), "could not save history")
	assert.Contains(t, logs.String(), missing)
}

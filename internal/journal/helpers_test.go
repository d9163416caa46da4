package journal

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore creates a fresh journal in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventCmd(runID string, seq, block int64, fields ...float64) Command {
	return Command{RunID: runID, Seq: seq, Block: block, Kind: KindEvent, Opcode: 'i', Fields: fields}
}

func textCmd(runID string, seq, block int64, text string) Command {
	return Command{RunID: runID, Seq: seq, Block: block, Kind: KindText, Text: text}
}

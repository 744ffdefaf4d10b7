package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_GetLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log.json")
	l := NewIsolatedLogger(path)

	l.Info("VITALS", "vital recorded", map[string]interface{}{"patient_id": "maria_001"})
	l.Info("VITALS", "vital recorded", nil)
	l.Warn("CASCADE", "primary provider failed", map[string]interface{}{"provider": "gemini", "error": "timeout"})
	l.Debug("CASCADE", "below file level", nil)
	require.NoError(t, l.Sync())

	all, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "primary provider failed", all[0].Message, "newest first")
	assert.Equal(t, "CASCADE", all[0].Module)
	assert.Equal(t, "timeout", all[0].Error)
	assert.NotEqual(t, all[1].Id, all[2].Id)

	warns, err := l.GetLogs(LogFilter{Level: "WARN"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "gemini", warns[0].Details["provider"])

	vitals, err := l.GetLogs(LogFilter{Module: "VITALS"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, vitals, 2)

	page, err := l.GetLogs(LogFilter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, all[1].Id, page[0].Id)

	found, err := l.GetLogById(warns[0].Id)
	require.NoError(t, err)
	assert.Equal(t, warns[0].Message, found.Message)

	_, err = l.GetLogById("missing")
	assert.ErrorIs(t, err, ErrLogNotFound)
}

func TestGetLogs_MissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.json"))

	logs, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestNop(t *testing.T) {
	l := NewNop()

	assert.NotPanics(t, func() {
		l.Info("TEST", "ignored", nil)
		l.Error("TEST", "ignored", map[string]interface{}{"error": "boom"})
		l.Zap("TEST").Info("ignored")
	})
	logs, err := l.GetLogs(LogFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

package util

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"fatal", LevelFatal},
		{"DEBUG", LevelDebug},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseLogLevel(tt.input), "input %q", tt.input)
	}
}

func TestRenderEntryText(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "hello",
		Fields:    map[string]interface{}{"appid": 440},
	}

	line, err := renderEntry(entry, FormatText)
	require.NoError(t, err)
	assert.Contains(t, line, "2024/03/01 12:30:00")
	assert.Contains(t, line, "[INFO] hello")
	assert.Contains(t, line, "appid=440")
}

func TestRenderEntryJSON(t *testing.T) {
	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "WARN",
		Message:   "something",
	}

	line, err := renderEntry(entry, FormatJSON)
	require.NoError(t, err)

	var decoded LogEntry
	require.NoError(t, sonic.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "WARN", decoded.Level)
	assert.Equal(t, "something", decoded.Message)
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  LevelWarn,
		fields: make(map[string]interface{}),
	}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.Info("dropped")
	logger.Warn("kept")
	logger.Errorf("kept %s", "too")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
	assert.Contains(t, out, "kept too")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := &Logger{
		level:  LevelDebug,
		fields: make(map[string]interface{}),
	}
	logger.AddOutput(NewConsoleOutput(&buf, FormatText))

	logger.With(Field{Key: "steamid", Value: "p1"}).Info("scoped")

	assert.Contains(t, buf.String(), "steamid=p1")
}

func TestFileOutputAppends(t *testing.T) {
	path := t.TempDir() + "/app.log"

	out, err := NewFileOutput(path, FormatText)
	require.NoError(t, err)

	require.NoError(t, out.Write(LogEntry{Timestamp: time.Now(), Level: "INFO", Message: "one"}))
	require.NoError(t, out.Write(LogEntry{Timestamp: time.Now(), Level: "INFO", Message: "two"}))
	require.NoError(t, out.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}

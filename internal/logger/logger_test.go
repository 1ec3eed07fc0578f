package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }

func TestLogWritesMemoryAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "out.txt")
	l := New(path)
	l.now = fixedClock

	l.Log("hello")
	l.Infof("added %s", "Shape_1")

	assert.Equal(t, []string{
		"[2026-03-01 12:30:00] hello",
		"[2026-03-01 12:30:00] INFO added Shape_1",
	}, l.Lines())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestDebugIsGated(t *testing.T) {
	l := New("")
	l.Debugf("hidden")
	assert.Empty(t, l.Lines())

	l.SetDebug(true)
	l.Debugf("shown %d", 1)
	assert.Contains(t, l.Last(), "DEBUG shown 1")
}

func TestMemoryHistoryIsBounded(t *testing.T) {
	l := New("")
	for i := 0; i < maxLines+10; i++ {
		l.Log("x")
	}
	assert.Len(t, l.Lines(), maxLines)
}

func TestLevelOfReadsTag(t *testing.T) {
	l := New("")
	l.now = fixedClock
	l.Errorf("boom")
	l.Warnf("careful")
	l.Log("plain")
	lines := l.Lines()
	assert.Equal(t, LevelError, LevelOf(lines[0]))
	assert.Equal(t, LevelWarn, LevelOf(lines[1]))
	assert.Equal(t, LevelInfo, LevelOf(lines[2]))
}

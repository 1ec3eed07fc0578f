package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mycad/internal/logger"
)

func newConsole(t *testing.T, names ...string) (*Console, *logger.Logger, *[]string) {
	t.Helper()
	var ran []string
	reg := NewRegistry()
	for _, n := range names {
		fs := NewFlagSet(n)
		reg.Register(n, "test command", fs, func() error {
			ran = append(ran, strings.Join(append([]string{n}, fs.Args()...), " "))
			if n == "fail" {
				return errors.New("boom")
			}
			return nil
		})
	}
	log := logger.New("")
	return NewConsole(reg, log, 10), log, &ran
}

func TestConsoleEditAndEnter(t *testing.T) {
	c, log, ran := newConsole(t, "box")
	c.Insert("boxx")
	c.Backspace()
	c.Insert(" a\nb")
	assert.Equal(t, "box a b", c.Input())

	c.Enter()
	assert.Empty(t, c.Input())
	assert.Equal(t, []string{"box a b"}, *ran)
	assert.True(t, strings.HasSuffix(log.Last(), "INFO > box a b"), log.Last())

	c.Backspace()
	assert.Empty(t, c.Input())
}

func TestConsoleLogsErrors(t *testing.T) {
	c, log, _ := newConsole(t, "fail")
	c.Submit("fail")
	assert.Equal(t, logger.LevelError, logger.LevelOf(log.Last()))
	assert.Contains(t, log.Last(), "boom")

	c.Submit("nope")
	assert.Contains(t, log.Last(), "unknown command: nope")

	n := len(log.Lines())
	c.Submit("   ")
	assert.Len(t, log.Lines(), n)
}

func TestConsoleHistory(t *testing.T) {
	c, _, _ := newConsole(t, "box", "sphere")
	c.Submit("box")
	c.Submit("sphere")

	c.Prev()
	assert.Equal(t, "sphere", c.Input())
	c.Prev()
	assert.Equal(t, "box", c.Input())
	c.Next()
	assert.Equal(t, "sphere", c.Input())
	c.Next()
	assert.Empty(t, c.Input())
}

func TestConsoleComplete(t *testing.T) {
	c, log, _ := newConsole(t, "select", "save", "sphere", "show-all")

	c.Insert("sp")
	c.Complete()
	assert.Equal(t, "sphere ", c.Input())

	c.Enter()
	c.Insert("se")
	c.Complete()
	assert.Equal(t, "select ", c.Input())

	c.Enter()
	c.Insert("s")
	c.Complete()
	assert.Equal(t, "s", c.Input())
	assert.True(t, strings.HasSuffix(log.Last(), "save select show-all sphere"), log.Last())

	c.Enter()
	c.Insert("sphere -r")
	c.Complete()
	assert.Equal(t, "sphere -r", c.Input())
}

func TestConsoleCompleteCommonPrefix(t *testing.T) {
	c, _, _ := newConsole(t, "hide", "hide-all")
	c.Insert("h")
	c.Complete()
	assert.Equal(t, "hide", c.Input())
}

func TestConsoleTail(t *testing.T) {
	c, log, _ := newConsole(t)
	for i := 0; i < 5; i++ {
		log.Log(strings.Repeat("x", 10*i))
	}
	tail := c.Tail(2, 40)
	require.Len(t, tail, 2)
	assert.Len(t, tail[0], 40)
	assert.True(t, strings.HasSuffix(tail[0], "..."))
	assert.Len(t, c.Tail(10, 1000), 5)
}

package commands

import (
	"strings"
	"unicode/utf8"

	"mycad/internal/logger"
)

// Console is the line editor behind the terminal bar: it owns the input buffer and history,
// runs submitted lines through a Registry and reads back the log for display.
type Console struct {
	reg     *Registry
	log     *logger.Logger
	history *History
	input   string
}

// NewConsole returns an empty console keeping at most historyLimit submitted lines.
func NewConsole(reg *Registry, log *logger.Logger, historyLimit int) *Console {
	return &Console{reg: reg, log: log, history: NewHistory(historyLimit)}
}

// Input returns the line being typed.
func (c *Console) Input() string { return c.input }

// Insert appends typed or pasted text. Line breaks in pasted text become spaces.
func (c *Console) Insert(s string) {
	c.input += strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}

// Backspace removes the last rune.
func (c *Console) Backspace() {
	_, size := utf8.DecodeLastRuneInString(c.input)
	c.input = c.input[:len(c.input)-size]
}

// Prev replaces the input with the previous history line.
func (c *Console) Prev() {
	if line, ok := c.history.Prev(); ok {
		c.input = line
	}
}

// Next replaces the input with the next history line, or clears it past the newest.
func (c *Console) Next() { c.input = c.history.Next() }

// Complete extends a partially typed command name. A unique match is completed with a
// trailing space; several matches extend to their common prefix and, when that adds nothing,
// are listed in the log. Lines that already have arguments are left alone.
func (c *Console) Complete() {
	word := strings.TrimLeft(c.input, " ")
	if word == "" || strings.Contains(word, " ") {
		return
	}
	var matches []string
	for _, n := range c.reg.Names() {
		if strings.HasPrefix(n, word) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return
	case 1:
		c.input = matches[0] + " "
		return
	}
	common := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, common) {
			common = common[:len(common)-1]
		}
	}
	if common == word {
		c.log.Infof("%s", strings.Join(matches, " "))
		return
	}
	c.input = common
}

// Enter submits the input line and clears it.
func (c *Console) Enter() {
	line := c.input
	c.input = ""
	c.Submit(line)
}

// Submit runs one line as if typed. The line is echoed to the log and any error is logged.
// Blank lines are ignored.
func (c *Console) Submit(line string) {
	args, ok := Parse(line)
	if !ok {
		return
	}
	c.history.Add(strings.TrimSpace(line))
	c.log.Infof("> %s", strings.TrimSpace(line))
	if err := c.reg.Execute(args); err != nil {
		c.log.Errorf("%v", err)
	}
}

// Tail returns the newest n log lines, each cut to at most width bytes with a trailing "...".
func (c *Console) Tail(n, width int) []string {
	lines := c.log.Lines()
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		if width > 3 && len(l) > width {
			lines[i] = l[:width-3] + "..."
		}
	}
	return lines
}

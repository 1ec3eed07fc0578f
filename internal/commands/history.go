package commands

// History keeps submitted lines for recall with the arrow keys. Consecutive duplicates are
// stored once and the oldest lines are dropped past the limit.
type History struct {
	lines []string
	limit int
	pos   int
}

// NewHistory returns an empty history holding at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Add records line and resets recall to the newest entry.
func (h *History) Add(line string) {
	if line != "" && (len(h.lines) == 0 || h.lines[len(h.lines)-1] != line) {
		h.lines = append(h.lines, line)
		if h.limit > 0 && len(h.lines) > h.limit {
			h.lines = h.lines[len(h.lines)-h.limit:]
		}
	}
	h.pos = len(h.lines)
}

// Prev steps back one line. At the oldest line it keeps returning that line.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps forward one line. Past the newest line it returns "" so the prompt clears.
func (h *History) Next() string {
	if h.pos < len(h.lines) {
		h.pos++
	}
	if h.pos == len(h.lines) {
		return ""
	}
	return h.lines[h.pos]
}

// Len returns the number of stored lines.
func (h *History) Len() int { return len(h.lines) }

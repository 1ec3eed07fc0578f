// Package schedule holds one-shot actions that run on a later frame of the interaction loop.
package schedule

import (
	"slices"
	"time"
)

type task struct {
	due   time.Time
	seq   uint64
	alive func() bool
	fn    func()
}

// Queue is a list of deferred one-shot actions. It is not safe for concurrent use; actions are
// queued and run on the interaction thread.
type Queue struct {
	now   func() time.Time
	tasks []task
	seq   uint64
}

// New returns an empty queue using the wall clock.
func New() *Queue {
	return &Queue{now: time.Now}
}

// SetClock replaces the clock After measures delays from.
func (q *Queue) SetClock(now func() time.Time) { q.now = now }

// After runs fn once, on the first Run at least d from now. alive is checked right before fn
// runs; when it reports false the action is dropped. A nil alive always runs.
func (q *Queue) After(d time.Duration, alive func() bool, fn func()) {
	q.seq++
	q.tasks = append(q.tasks, task{due: q.now().Add(d), seq: q.seq, alive: alive, fn: fn})
}

// Len returns the number of pending actions.
func (q *Queue) Len() int { return len(q.tasks) }

// Run executes every action due at now in due order and returns how many ran. Actions queued
// while running wait for the next call.
func (q *Queue) Run(now time.Time) int {
	var due []task
	q.tasks = slices.DeleteFunc(q.tasks, func(t task) bool {
		if now.Before(t.due) {
			return false
		}
		due = append(due, t)
		return true
	})
	slices.SortFunc(due, func(a, b task) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return int(a.seq) - int(b.seq)
	})
	ran := 0
	for _, t := range due {
		if t.alive != nil && !t.alive() {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

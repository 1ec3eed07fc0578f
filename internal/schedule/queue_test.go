package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueRunsDueActionsOnce(t *testing.T) {
	t0 := time.Unix(0, 0)
	q := New()
	q.SetClock(func() time.Time { return t0 })

	var got []string
	q.After(100*time.Millisecond, nil, func() { got = append(got, "fit") })
	q.After(50*time.Millisecond, nil, func() { got = append(got, "early") })
	q.After(0, nil, func() { got = append(got, "now") })

	assert.Equal(t, 1, q.Run(t0))
	assert.Equal(t, []string{"now"}, got)
	assert.Equal(t, 0, q.Run(t0.Add(40*time.Millisecond)))

	assert.Equal(t, 2, q.Run(t0.Add(time.Second)))
	assert.Equal(t, []string{"now", "early", "fit"}, got)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 0, q.Run(t0.Add(2*time.Second)))
}

func TestQueueChecksLivenessBeforeRunning(t *testing.T) {
	t0 := time.Unix(0, 0)
	q := New()
	q.SetClock(func() time.Time { return t0 })

	alive := true
	ran := false
	q.After(100*time.Millisecond, func() bool { return alive }, func() { ran = true })
	alive = false

	assert.Equal(t, 0, q.Run(t0.Add(time.Second)))
	assert.False(t, ran)
	assert.Equal(t, 0, q.Len(), "a dead action is dropped, not retried")
}

func TestActionsQueuedWhileRunningWait(t *testing.T) {
	t0 := time.Unix(0, 0)
	q := New()
	q.SetClock(func() time.Time { return t0 })

	n := 0
	q.After(0, nil, func() {
		n++
		q.After(0, nil, func() { n++ })
	})
	assert.Equal(t, 1, q.Run(t0))
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, 1, q.Run(t0))
	assert.Equal(t, 2, n)
}

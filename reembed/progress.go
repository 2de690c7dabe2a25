package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a progress line to a writer each time the count
// of finished records crosses a reporting boundary. Safe for concurrent
// use; Start must be called before anything is counted.
type ProgressTracker struct {
	mu    sync.Mutex
	w     io.Writer
	total int
	every int

	done       int
	nextReport int
	begun      time.Time
	running    bool
}

// NewProgressTracker creates a tracker for total records that reports
// every `every` records. Intervals below one are raised to one.
func NewProgressTracker(w io.Writer, total, every int) *ProgressTracker {
	if every < 1 {
		every = 1
	}
	return &ProgressTracker{w: w, total: total, every: every}
}

// Start resets the counters and the clock.
func (t *ProgressTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.begun = time.Now()
	t.done = 0
	t.nextReport = t.every
	t.running = true
}

// Advance counts n more finished records, capped at the total. A progress
// line is printed when the count reaches the next reporting boundary, and
// the boundary moves past the current count so one large batch cannot
// trigger a burst of lines.
func (t *ProgressTracker) Advance(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.done += n
	if t.done > t.total {
		t.done = t.total
	}

	if t.done >= t.nextReport {
		t.print()
		for t.nextReport <= t.done {
			t.nextReport += t.every
		}
	}
}

// Finish forces the count to the total, prints the final line followed by
// a newline, and stops the tracker. Elapsed keeps working afterwards.
func (t *ProgressTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	t.done = t.total
	t.print()
	fmt.Fprintln(t.w)
	t.running = false
}

// Elapsed reports the time since Start.
func (t *ProgressTracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.begun.IsZero() {
		return 0
	}
	return time.Since(t.begun)
}

// print writes one progress line. Caller holds the lock.
func (t *ProgressTracker) print() {
	var rate float64
	if secs := time.Since(t.begun).Seconds(); secs > 0 {
		rate = float64(t.done) / secs
	}

	var pct float64
	if t.total > 0 {
		pct = float64(t.done) / float64(t.total) * 100
	}

	fmt.Fprintf(t.w, "\r%d/%d records (%.1f%%) %.1f records/s", t.done, t.total, pct, rate)
}

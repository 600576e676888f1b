package watcher

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// DebouncedEvent is the settled state of one path after a burst of events.
type DebouncedEvent struct {
	Path string
	Op   EventOp
}

// EventOp is the kind of change seen for a path.
type EventOp int

const (
	OpCreate EventOp = iota
	OpWrite
	OpRemove
	OpRename
)

// maxWaitFactor bounds how long a busy inbox can hold back a batch, as a multiple of the quiet interval.
const maxWaitFactor = 10

// Debouncer groups events per path and releases them as one batch once the inbox
// has been quiet for the interval. A batch is also released when the oldest
// buffered event has waited maxWaitFactor intervals.
type Debouncer struct {
	quiet   time.Duration
	maxWait time.Duration

	mu      sync.Mutex
	pending map[string]EventOp
	first   time.Time // arrival of the oldest pending event
	timer   *time.Timer

	batches chan []DebouncedEvent
	done    chan struct{}
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(quiet time.Duration) *Debouncer {
	return &Debouncer{
		quiet:   quiet,
		maxWait: quiet * maxWaitFactor,
		pending: make(map[string]EventOp),
		batches: make(chan []DebouncedEvent, 16),
		done:    make(chan struct{}),
	}
}

// Output returns the channel batches are delivered on.
func (d *Debouncer) Output() <-chan []DebouncedEvent {
	return d.batches
}

// Add records op for path and pushes the flush back by one quiet interval.
func (d *Debouncer) Add(path string, op EventOp) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	now := time.Now()
	if len(d.pending) == 0 {
		d.first = now
	}
	if prev, ok := d.pending[path]; ok {
		op = mergeOps(prev, op)
	}
	d.pending[path] = op

	delay := d.quiet
	if remaining := d.first.Add(d.maxWait).Sub(now); remaining < delay {
		delay = max(remaining, 0)
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(delay, d.flush)
}

// mergeOps folds a new event into the pending one. A file that was created and
// then written, or removed and created again, is reported as created.
func mergeOps(prev, next EventOp) EventOp {
	switch {
	case prev == OpCreate && next == OpWrite:
		return OpCreate
	case prev == OpRemove && (next == OpCreate || next == OpWrite):
		return OpCreate
	}
	return next
}

// Stop cancels a pending flush, drops buffered events and releases a flush that is
// blocked on a full output channel. Later calls to Add are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.stopped {
		d.stopped = true
		close(d.done)
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	clear(d.pending)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	batch := make([]DebouncedEvent, 0, len(d.pending))
	for path, op := range d.pending {
		batch = append(batch, DebouncedEvent{Path: path, Op: op})
	}
	clear(d.pending)
	d.mu.Unlock()

	slices.SortFunc(batch, func(a, b DebouncedEvent) int {
		return strings.Compare(a.Path, b.Path)
	})
	// Add must not block on a slow consumer, so the send happens unlocked.
	select {
	case d.batches <- batch:
	case <-d.done:
	}
}

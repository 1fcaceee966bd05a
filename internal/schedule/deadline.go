// Package schedule provides one-shot, cancellable deadlines that are polled
// from a single event loop instead of firing on timer goroutines. A deadline
// that was cancelled or re-armed can never be returned by Due, so a stale
// timer cannot act on state it no longer belongs to.
package schedule

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"
)

// Key names a deadline. Arming a key that is already pending replaces it.
type Key string

type deadline struct {
	at  time.Time
	seq uint64
}

// Deadlines is a keyed set of pending one-shot deadlines.
// It is not safe for concurrent use; poll it from the owning event loop.
type Deadlines struct {
	clock   clock.Clock
	seq     uint64
	pending map[Key]deadline
}

// New creates an empty set reading time from c. A nil clock uses wall time.
func New(c clock.Clock) *Deadlines {
	if c == nil {
		c = clock.New()
	}
	return &Deadlines{clock: c, pending: make(map[Key]deadline)}
}

// Clock returns the time source.
func (d *Deadlines) Clock() clock.Clock { return d.clock }

// Arm schedules key to become due after the given delay, cancelling any
// previous deadline under the same key.
func (d *Deadlines) Arm(key Key, after time.Duration) {
	d.seq++
	d.pending[key] = deadline{at: d.clock.Now().Add(after), seq: d.seq}
}

// Cancel drops key if pending.
func (d *Deadlines) Cancel(key Key) {
	delete(d.pending, key)
}

// CancelAll drops every pending deadline.
func (d *Deadlines) CancelAll() {
	d.pending = make(map[Key]deadline)
}

// Pending reports when key is due.
func (d *Deadlines) Pending(key Key) (time.Time, bool) {
	dl, ok := d.pending[key]
	return dl.at, ok
}

// Len returns the number of pending deadlines.
func (d *Deadlines) Len() int { return len(d.pending) }

// Next returns the earliest pending deadline.
func (d *Deadlines) Next() (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, dl := range d.pending {
		if !found || dl.at.Before(best) {
			best, found = dl.at, true
		}
	}
	return best, found
}

// Due removes and returns every key whose deadline has passed, earliest
// first (ties broken by arming order). Each armed deadline is returned at
// most once.
func (d *Deadlines) Due() []Key {
	now := d.clock.Now()
	type fired struct {
		key Key
		dl  deadline
	}
	var due []fired
	for k, dl := range d.pending {
		if !dl.at.After(now) {
			due = append(due, fired{k, dl})
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].dl.at.Equal(due[j].dl.at) {
			return due[i].dl.seq < due[j].dl.seq
		}
		return due[i].dl.at.Before(due[j].dl.at)
	})
	keys := make([]Key, len(due))
	for i, f := range due {
		delete(d.pending, f.key)
		keys[i] = f.key
	}
	return keys
}

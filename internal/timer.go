package internal

import (
	"slices"
	"time"
)

// Timer is a callback scheduled on a Loop. Timers fire during Advance, on the
// loop goroutine, never in the frame they were created in.
type Timer struct {
	at  float64
	seq uint64
	fn  func()

	queue *timerQueue
}

// Stop cancels the timer. It reports false if the timer already fired or was stopped.
func (t *Timer) Stop() bool {
	if t.queue == nil {
		return false
	}
	return t.queue.remove(t)
}

type timerQueue struct {
	seq    uint64
	timers []*Timer // sorted by (at, seq)
}

func (q *timerQueue) add(at float64, fn func()) *Timer {
	q.seq++
	t := &Timer{at: at, seq: q.seq, fn: fn, queue: q}

	i, _ := slices.BinarySearchFunc(q.timers, t, compareTimers)
	q.timers = slices.Insert(q.timers, i, t)

	return t
}

func (q *timerQueue) remove(t *Timer) bool {
	i := slices.Index(q.timers, t)
	if i < 0 {
		return false
	}
	q.timers = slices.Delete(q.timers, i, i+1)
	t.queue = nil
	return true
}

// due pops every timer scheduled at or before now.
func (q *timerQueue) due(now float64) []*Timer {
	n := 0
	for n < len(q.timers) && q.timers[n].at <= now {
		n++
	}

	due := slices.Clone(q.timers[:n])
	q.timers = slices.Delete(q.timers, 0, n)
	for _, t := range due {
		t.queue = nil
	}

	return due
}

func (q *timerQueue) clear() {
	for _, t := range q.timers {
		t.queue = nil
	}
	q.timers = nil
}

func (q *timerQueue) Len() int {
	return len(q.timers)
}

func compareTimers(a, b *Timer) int {
	switch {
	case a.at < b.at:
		return -1
	case a.at > b.at:
		return 1
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	}
	return 0
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// delayed is an update waiting for its delay to elapse.
type delayed struct {
	timer   *Timer
	promise *Promise
}

// delaySet tracks pending delayed updates so they can be cancelled together.
type delaySet struct {
	pending []*delayed
}

func (d *delaySet) schedule(loop *Loop, delay time.Duration, p *Promise, fn func()) {
	entry := &delayed{promise: p}
	entry.timer = loop.SetTimeout(func() {
		if i := slices.Index(d.pending, entry); i >= 0 {
			d.pending = slices.Delete(d.pending, i, i+1)
		}
		fn()
	}, delay)

	d.pending = append(d.pending, entry)
}

// cancel stops every pending timer and resolves its promise as cancelled.
func (d *delaySet) cancel(value any) {
	pending := d.pending
	d.pending = nil

	for _, entry := range pending {
		entry.timer.Stop()
		entry.promise.resolve(Result{Value: value, Cancelled: true})
	}
}

func (d *delaySet) Len() int {
	return len(d.pending)
}

package internal

import "slices"

// Phase is the lifecycle stage of a controller or spring value.
type Phase uint8

const (
	PhaseCreated Phase = iota
	PhaseActive
	PhaseIdle
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseActive:
		return "active"
	case PhaseIdle:
		return "idle"
	}
	return "unknown"
}

// eventBatch collects the lifecycle callbacks of every update that touched an
// owner during a frame. Each callback appears once per update record; rest
// results for the same record are merged.
type eventBatch struct {
	onStart  []*startHandle
	onChange []*changeHandle

	onRest  []*restHandle
	results map[*restHandle]Result
}

func newEventBatch() *eventBatch {
	return &eventBatch{results: make(map[*restHandle]Result)}
}

func (b *eventBatch) start(h *startHandle) {
	if h != nil && !slices.Contains(b.onStart, h) {
		b.onStart = append(b.onStart, h)
	}
}

func (b *eventBatch) change(h *changeHandle) {
	if h != nil && !slices.Contains(b.onChange, h) {
		b.onChange = append(b.onChange, h)
	}
}

// rest records r for h, merging it with what was already recorded: finished
// only if every run finished, cancelled if any was.
func (b *eventBatch) rest(h *restHandle, r Result) {
	if h == nil {
		return
	}

	prev, ok := b.results[h]
	if !ok {
		b.onRest = append(b.onRest, h)
		b.results[h] = r
		return
	}

	prev.Finished = prev.Finished && r.Finished
	prev.Cancelled = prev.Cancelled || r.Cancelled
	b.results[h] = prev
}

func (b *eventBatch) pendingChange() bool {
	return len(b.onChange) > 0
}

func (b *eventBatch) pendingRest() bool {
	return len(b.onRest) > 0
}

// flush runs the batched callbacks of one frame. active is whether the owner
// still animates after the frame; values snapshots the owner's values and is
// only called when a callback needs them.
func (b *eventBatch) flush(phase *Phase, active bool, values func() any) {
	// starts only fire when the owner becomes active, runs that finish within
	// their first frame included; the ones queued while active wait for the
	// next activation
	if *phase != PhaseActive && (active || len(b.onStart) > 0) {
		*phase = PhaseActive
		b.flushStart()
	}

	var snapshot any
	if b.pendingChange() || (!active && b.pendingRest()) {
		snapshot = values()
	}

	b.flushChange(snapshot)

	if !active {
		if *phase == PhaseActive {
			*phase = PhaseIdle
		}
		b.flushRest(snapshot)
	}
}

func (b *eventBatch) flushStart() {
	handles := b.onStart
	b.onStart = nil

	for _, h := range handles {
		h.fn()
	}
}

func (b *eventBatch) flushChange(values any) {
	handles := b.onChange
	b.onChange = nil

	for _, h := range handles {
		h.fn(values)
	}
}

func (b *eventBatch) flushRest(values any) {
	handles := b.onRest
	results := b.results
	b.onRest = nil
	b.results = make(map[*restHandle]Result)

	for _, h := range handles {
		r := results[h]
		r.Value = values
		h.fn(r)
	}
}

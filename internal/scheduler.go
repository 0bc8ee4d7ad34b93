package internal

// frameHandler is anything the Loop drives once per frame. It reports whether
// it wants to stay registered for the next frame.
type frameHandler interface {
	frame(now float64) (active bool, err error)
}

// Scheduler is the ordered registry of frame handlers. Handlers may be added
// or removed while a frame is running: additions are visited in the same
// frame, removals leave a hole that is compacted once the frame is over.
type Scheduler struct {
	running  bool
	handlers []frameHandler
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		running:  false,
		handlers: make([]frameHandler, 0),
	}
}

// Add registers h, reporting false if it already was.
func (s *Scheduler) Add(h frameHandler) bool {
	if s.Has(h) {
		return false
	}
	s.handlers = append(s.handlers, h)
	return true
}

func (s *Scheduler) Remove(h frameHandler) {
	for i, other := range s.handlers {
		if other != h {
			continue
		}

		if s.running {
			s.handlers[i] = nil
		} else {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
		}
		return
	}
}

func (s *Scheduler) Has(h frameHandler) bool {
	for _, other := range s.handlers {
		if other == h {
			return true
		}
	}
	return false
}

func (s *Scheduler) Len() int {
	n := 0
	for _, h := range s.handlers {
		if h != nil {
			n++
		}
	}
	return n
}

// Run visits every handler once, dropping the ones fn reports as inactive.
func (s *Scheduler) Run(fn func(h frameHandler) bool) {
	if s.running {
		return
	}
	s.running = true

	// len is re-read on purpose, handlers added mid-frame run too
	for i := 0; i < len(s.handlers); i++ {
		h := s.handlers[i]
		if h == nil {
			continue
		}

		if !fn(h) && s.handlers[i] == h {
			s.handlers[i] = nil
		}
	}

	s.compact()
	s.running = false
}

func (s *Scheduler) Clear() {
	if s.running {
		for i := range s.handlers {
			s.handlers[i] = nil
		}
		return
	}
	s.handlers = s.handlers[:0]
}

func (s *Scheduler) compact() {
	kept := s.handlers[:0]
	for _, h := range s.handlers {
		if h != nil {
			kept = append(kept, h)
		}
	}
	clear(s.handlers[len(kept):])
	s.handlers = kept
}

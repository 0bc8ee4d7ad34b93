package internal

import (
	"errors"
	"fmt"
)

// SpringValue animates one value (a number, a string or an array of numbers)
// towards its targets. It is either owned by a Controller, which drives it and
// batches its events, or standalone, in which case it registers itself with
// the loop.
type SpringValue struct {
	*Owner

	key  string
	loop *Loop

	node  *Node
	anims []*Animation

	defaults  Config
	law       MotionLaw
	immediate bool

	// normalized origin used by resets and loops, and the current goal
	from any
	to   any

	phase   Phase
	paused  bool
	resumed bool

	// the run in progress
	current *Promise
	active  *update
	loops   int

	// the update that started the latest run, replayed by Reset
	last *update

	delays delaySet

	parent *Controller
	events *eventBatch

	// standalone only
	eventPhase Phase
	runner     *runner
}

// NewSpringValue creates a standalone spring value holding initial. When props
// is given its config becomes the value's default config and, if it has a
// target, it is started right away.
func NewSpringValue(loop *Loop, initial any, props *Props) (*SpringValue, error) {
	defaults := DefaultConfig()
	if props != nil {
		defaults = defaults.Merge(props.Config)
	}

	s, err := newSpringValue(loop, "", initial, defaults, nil)
	if err != nil {
		return nil, err
	}

	if props != nil && (props.To != nil || props.From != nil) {
		s.Start(props)
	}

	return s, nil
}

func newSpringValue(loop *Loop, key string, initial any, defaults Config, parent *Controller) (*SpringValue, error) {
	v, err := normalizeValue(initial)
	if err != nil {
		return nil, fmt.Errorf("spring %q: %w", key, err)
	}
	v, err = resolveValue(v)
	if err != nil {
		return nil, fmt.Errorf("spring %q: %w", key, err)
	}

	s := &SpringValue{
		Owner:    NewOwner(),
		key:      key,
		loop:     loop,
		defaults: defaults,
		parent:   parent,
		from:     v,
		to:       v,
	}

	if items, ok := v.([]any); ok {
		leaves := make([]any, len(items))
		for i, item := range items {
			leaf := NewLeaf(item)
			leaves[i] = leaf
			s.anims = append(s.anims, newAnimation(leaf, item, i))
		}
		s.node = NewSequence(leaves...)
	} else {
		leaf := NewLeaf(v)
		s.node = leaf
		s.anims = []*Animation{newAnimation(leaf, v, 0)}
	}

	if parent != nil {
		s.events = parent.events
	} else {
		s.events = newEventBatch()
		s.runner = newRunner(loop, s.events, s.get, s.Start, s.schedule)
	}

	s.OnCleanup(s.dispose)

	return s, nil
}

func newAnimation(leaf *Node, value any, index int) *Animation {
	a := &Animation{Node: leaf, From: value, To: value, Done: true, index: index}
	if f, ok := value.(float64); ok {
		a.Position = f
		a.LastPosition = f
	}
	return a
}

func (s *SpringValue) Key() string { return s.key }

// Node is the graph node holding the animated value, for deriving
// interpolations from it.
func (s *SpringValue) Node() *Node { return s.node }

// Get returns the current value: a float64, a string or a []float64.
func (s *SpringValue) Get() any {
	return Plain(s.node.Value())
}

func (s *SpringValue) get() any { return s.Get() }

// Goal returns the value the spring is animating towards.
func (s *SpringValue) Goal() any {
	if node, ok := s.to.(*Node); ok {
		return Plain(node.Value())
	}
	return Plain(s.to)
}

func (s *SpringValue) Phase() Phase { return s.phase }

func (s *SpringValue) Animating() bool { return s.phase == PhaseActive }

func (s *SpringValue) Paused() bool { return s.paused }

// Idle reports whether the value is at rest with no delayed update or script
// pending.
func (s *SpringValue) Idle() bool {
	if s.Animating() || s.delays.Len() > 0 {
		return false
	}
	return s.runner == nil || s.runner.idle()
}

// Start applies an update and returns a promise settled once the run it
// started ends.
func (s *SpringValue) Start(props *Props) *Promise {
	u := normalize(props)

	promises := []*Promise{s.start(u)}
	if s.runner != nil {
		promises = append(promises, s.runner.schedule(u))
	}

	return All(promises, func(results []Result) Result {
		return mergeResults(s.Get(), results)
	})
}

// Stop ends the current run where it is. Its promise resolves cancelled.
func (s *SpringValue) Stop() {
	s.delays.cancel(s.Get())
	if s.runner != nil {
		s.runner.stop()
	}
	s.finish(Result{Cancelled: true})
}

// Pause freezes the current run. Time spent paused does not count towards it.
func (s *SpringValue) Pause() {
	if s.Animating() {
		s.paused = true
	}
}

func (s *SpringValue) Resume() {
	if !s.paused {
		return
	}
	s.paused = false
	s.resumed = true
	s.schedule()
}

// Reset restarts the current (or last) run from its origin.
func (s *SpringValue) Reset() *Promise {
	u := s.last
	if u == nil {
		u = normalize(nil)
	}

	props := *u.props
	props.Reset = true
	props.Cancel = false
	props.Delay = 0

	reset := *u
	reset.props = &props
	reset.from, reset.to = nil, nil
	reset.script = nil

	p := NewPromise()
	s.apply(&reset, p)
	return p
}

// Set jumps to value, stopping the current run.
func (s *SpringValue) Set(value any) error {
	if s.Disposed() {
		return ErrDisposed
	}

	v, err := s.normalize(value)
	if err != nil {
		return err
	}

	s.Stop()
	s.to = v
	s.jump(v)
	return nil
}

func (s *SpringValue) start(u *update) *Promise {
	p := NewPromise()

	if s.Disposed() {
		p.resolve(Result{Value: s.Get()})
		return p
	}

	if u.props.Delay > 0 {
		s.delays.schedule(s.loop, u.props.Delay, p, func() {
			s.apply(u, p)
		})
		return p
	}

	s.apply(u, p)
	return p
}

func (s *SpringValue) apply(u *update, p *Promise) {
	props := u.props

	if s.Disposed() {
		p.resolve(Result{Value: s.Get()})
		return
	}

	if props.Cancel {
		s.Stop()
		p.resolve(Result{Value: s.Get(), Cancelled: true})
		return
	}

	from, hasFrom, err := s.pick(u.from)
	if err != nil {
		s.reject(p, err)
		return
	}
	to, hasTo, err := s.pick(u.to)
	if err != nil {
		s.reject(p, err)
		return
	}

	cfg := s.defaults.Merge(props.Config)
	law, err := cfg.Law()
	if err != nil {
		s.reject(p, err)
		return
	}

	if props.OnProps != nil {
		props.OnProps(props, s)
	}

	// scripts drive the value through their own steps, the update itself
	// only moves it to its origin
	if u.script != nil {
		if hasFrom {
			s.from = from
			s.jump(from)
		}
		p.resolve(Result{Value: s.Get(), Finished: true})
		return
	}

	animating := s.Animating()
	reset := props.Reset || (s.phase == PhaseCreated && hasFrom)

	if hasFrom {
		s.from = from
	}
	if hasTo {
		s.to = to
	}

	// a newer run replaces the one in progress, its promise settles once
	// the new run is set up
	if prev := s.current; prev != nil {
		s.current, s.active = nil, nil
		defer func() { prev.resolve(Result{Value: s.Get()}) }()
	}

	if reset {
		s.jump(s.from)
	}

	_, decaying := law.(DecayLaw)
	if !animating && !decaying && s.atGoal() {
		p.resolve(Result{Value: s.Get(), Finished: true})
		return
	}

	explicitVelocity := props.Config != nil && props.Config.Velocity != nil
	carry := animating && !reset && !explicitVelocity

	s.law = law
	s.immediate = isSet(cfg.Immediate)

	now := s.loop.Now()
	for i, a := range s.anims {
		velocity := initialVelocity(law)
		if carry {
			velocity = a.Velocity
		}

		a.From = a.Node.Value()
		a.To = elementAt(s.to, i)
		a.Start(now, velocity)
		a.Node.SetDone(false)
	}

	s.current, s.active, s.last = p, u, u
	s.loops = props.Loop
	s.paused = props.Pause
	s.resumed = false

	if !animating {
		s.phase = PhaseActive
		s.events.start(u.onStart)
	}

	s.schedule()
}

// advance integrates every unfinished element to now. Called inside a graph
// batch by whoever drives the value.
func (s *SpringValue) advance(now float64) error {
	if !s.Animating() || s.paused {
		return nil
	}

	if s.resumed {
		s.resumed = false
		for _, a := range s.anims {
			if !a.Done {
				a.Shift(now - a.LastTime)
			}
		}
	}

	changed := false
	var errs []error

	for _, a := range s.anims {
		if a.Done {
			continue
		}

		value, err := a.Step(s.law, s.immediate, now)
		if err != nil {
			var stepErr *StepError
			if errors.As(err, &stepErr) {
				stepErr.Key = s.key
			}
			errs = append(errs, err)
			continue
		}

		if !isEqual(a.Node.Value(), value) {
			s.loop.graph.Set(a.Node, value)
			changed = true
		}
		if a.Done {
			a.Node.SetDone(true)
		}
	}

	if changed && s.active != nil {
		s.events.change(s.active.onChange)
	}

	if len(errs) > 0 {
		s.finish(Result{})
		return errors.Join(errs...)
	}

	if !s.settled() {
		return nil
	}

	if s.loops != 0 {
		if s.loops > 0 {
			s.loops--
		}
		s.restart(now)
		return nil
	}

	// decay has no target, its goal is wherever it stopped
	if _, ok := s.law.(DecayLaw); ok {
		s.to = s.node.Value()
	}

	s.finish(Result{Finished: true})
	return nil
}

// finish ends the run in progress with r.
func (s *SpringValue) finish(r Result) {
	if !s.Animating() {
		return
	}

	u, p := s.active, s.current
	s.phase = PhaseIdle
	s.active, s.current = nil, nil
	s.paused, s.resumed = false, false
	s.loops = 0

	for _, a := range s.anims {
		a.Done = true
		a.Node.SetDone(true)
	}

	r.Value = s.Get()
	if u != nil {
		s.events.rest(u.onRest, r)
	}

	// the owner flushes the rest events on its next frame
	s.schedule()

	if p != nil {
		p.resolve(r)
	}
}

func (s *SpringValue) restart(now float64) {
	s.jump(s.from)

	velocity := initialVelocity(s.law)
	for i, a := range s.anims {
		a.From = a.Node.Value()
		a.To = elementAt(s.to, i)
		a.Start(now, velocity)
		a.Node.SetDone(false)
	}
}

func (s *SpringValue) settled() bool {
	for _, a := range s.anims {
		if !a.Done {
			return false
		}
	}
	return true
}

func (s *SpringValue) atGoal() bool {
	for i, a := range s.anims {
		goal := elementAt(s.to, i)
		if _, follows := goal.(*Node); follows {
			return false
		}
		if !isEqual(a.Node.Value(), goal) {
			return false
		}
	}
	return true
}

// jump writes v straight into the leaves.
func (s *SpringValue) jump(v any) {
	resolved, err := resolveValue(v)
	if err != nil {
		return
	}

	s.loop.graph.Batch(func() {
		for i, a := range s.anims {
			value := elementAt(resolved, i)
			s.loop.graph.Set(a.Node, value)

			if f, ok := value.(float64); ok {
				a.Position = f
				a.LastPosition = f
			}
		}
	})
}

// pick extracts this value's entry from an update field. Maps are looked up
// by key; anything else is taken as the value itself for standalone springs.
func (s *SpringValue) pick(values any) (any, bool, error) {
	if values == nil {
		return nil, false, nil
	}

	if m, ok := values.(map[string]any); ok {
		v, ok := m[s.key]
		if !ok || v == nil {
			return nil, false, nil
		}
		values = v
	} else if s.parent != nil {
		return nil, false, nil
	}

	v, err := s.normalize(values)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// normalize checks that v can drive this value.
func (s *SpringValue) normalize(value any) (any, error) {
	v, err := normalizeValue(value)
	if err != nil {
		return nil, fmt.Errorf("spring %q: %w", s.key, err)
	}

	shape := v
	if node, ok := v.(*Node); ok {
		if shape, err = normalizeValue(node.Value()); err != nil {
			return nil, fmt.Errorf("spring %q: %w", s.key, err)
		}
	}

	if n := arity(shape); n != len(s.anims) || isArray(shape) != (s.node.Kind() == KindSequence) {
		return nil, fmt.Errorf("spring %q: %w: got %d values, want %d", s.key, ErrLengthMismatch, n, len(s.anims))
	}

	return v, nil
}

func (s *SpringValue) reject(p *Promise, err error) {
	s.loop.logger.Warn("spring update rejected", "key", s.key, "err", err)
	p.resolve(Result{Value: s.Get()})
}

// schedule makes sure whoever drives the value gets a frame.
func (s *SpringValue) schedule() {
	if s.Disposed() {
		return
	}
	if s.parent != nil {
		s.parent.schedule()
		return
	}
	s.loop.register(s)
}

func (s *SpringValue) driving() bool {
	return s.Animating() && !s.paused
}

func (s *SpringValue) frame(now float64) (bool, error) {
	var err error
	s.loop.graph.Batch(func() {
		err = s.advance(now)
	})

	s.events.flush(&s.eventPhase, s.Animating(), s.get)

	return s.driving(), err
}

func (s *SpringValue) dispose() {
	s.Stop()
	s.node.DetachAll()
	if s.parent == nil {
		s.loop.deregister(s)
	}
}

func initialVelocity(law MotionLaw) float64 {
	switch law := law.(type) {
	case SpringLaw:
		return law.Velocity
	case DecayLaw:
		return law.Velocity
	}
	return 0
}

func isArray(v any) bool {
	_, ok := v.([]any)
	return ok
}

package internal

import (
	"errors"
	"slices"
)

// Controller owns a keyed set of spring values, applies updates to them and
// batches their lifecycle events: onStart when the set starts animating,
// onChange once per frame, onRest once all of them came to rest.
type Controller struct {
	*Owner

	loop *Loop

	keys    []string
	springs map[string]*SpringValue

	defaults Config

	queue  []*update
	phase  Phase
	events *eventBatch
	runner *runner
}

// NewController creates a controller on loop. props, if given, provides the
// default config of every spring and is started right away.
func NewController(loop *Loop, props *Props) *Controller {
	c := &Controller{
		Owner:    NewOwner(),
		loop:     loop,
		springs:  make(map[string]*SpringValue),
		defaults: DefaultConfig(),
		events:   newEventBatch(),
	}
	c.runner = newRunner(loop, c.events, c.get, c.startOne, c.schedule)

	c.OnCleanup(func() {
		c.runner.stop()
		c.queue = nil
		c.keys = nil
		c.springs = make(map[string]*SpringValue)
		c.loop.deregister(c)
	})

	if props != nil {
		c.defaults = c.defaults.Merge(props.Config)
		c.Start(props)
	}

	return c
}

// Get returns the current value of every spring by key.
func (c *Controller) Get() map[string]any {
	values := make(map[string]any, len(c.keys))
	for _, key := range c.keys {
		values[key] = c.springs[key].Get()
	}
	return values
}

func (c *Controller) get() any { return c.Get() }

// Keys returns the spring keys in creation order.
func (c *Controller) Keys() []string {
	return slices.Clone(c.keys)
}

func (c *Controller) Spring(key string) *SpringValue {
	return c.springs[key]
}

func (c *Controller) Springs() map[string]*SpringValue {
	springs := make(map[string]*SpringValue, len(c.springs))
	for key, s := range c.springs {
		springs[key] = s
	}
	return springs
}

func (c *Controller) Phase() Phase { return c.phase }

// Idle reports whether no script is running and every spring is at rest.
func (c *Controller) Idle() bool {
	if !c.runner.idle() {
		return false
	}
	for _, s := range c.springs {
		if !s.Idle() {
			return false
		}
	}
	return true
}

// Update queues props for the next argument-less Start.
func (c *Controller) Update(props *Props) *Controller {
	c.queue = append(c.queue, normalize(props))
	return c
}

// Start applies the given updates, or the queued ones when called without
// arguments. The promise settles once every run they started has ended.
func (c *Controller) Start(props ...*Props) *Promise {
	var queue []*update
	if len(props) == 0 {
		queue, c.queue = c.queue, nil
	} else {
		for _, p := range props {
			queue = append(queue, normalize(p))
		}
	}

	if c.Disposed() {
		return Resolved(Result{Value: c.Get()})
	}

	var promises []*Promise
	for _, u := range queue {
		c.prepare(u)

		keys := u.keys
		if len(keys) == 0 {
			keys = c.keys
		}

		for _, key := range keys {
			if s := c.springs[key]; s != nil {
				promises = append(promises, s.start(u))
			}
		}

		promises = append(promises, c.runner.schedule(u))
	}

	return All(promises, func(results []Result) Result {
		return mergeResults(c.Get(), results)
	})
}

// Stop stops the given springs, or everything (scripts included) when
// called without keys.
func (c *Controller) Stop(keys ...string) {
	if len(keys) == 0 {
		c.runner.stop()
		keys = c.keys
	}

	for _, key := range keys {
		if s := c.springs[key]; s != nil {
			s.Stop()
		}
	}
}

func (c *Controller) Pause(keys ...string) {
	for _, s := range c.selected(keys) {
		s.Pause()
	}
}

func (c *Controller) Resume(keys ...string) {
	for _, s := range c.selected(keys) {
		s.Resume()
	}
}

// Reset restarts every spring from its origin.
func (c *Controller) Reset() *Promise {
	promises := make([]*Promise, 0, len(c.keys))
	for _, s := range c.selected(nil) {
		promises = append(promises, s.Reset())
	}

	return All(promises, func(results []Result) Result {
		return mergeResults(c.Get(), results)
	})
}

func (c *Controller) startOne(props *Props) *Promise {
	return c.Start(props)
}

// prepare creates the springs an update introduces, starting at their from
// value (or their target when there is none).
func (c *Controller) prepare(u *update) {
	for _, key := range u.keys {
		if _, ok := c.springs[key]; ok {
			continue
		}

		initial := lookup(u.from, key)
		if initial == nil {
			initial = lookup(u.to, key)
		}

		s, err := newSpringValue(c.loop, key, initial, c.defaults, c)
		if err != nil {
			c.loop.logger.Warn("spring not created", "key", key, "err", err)
			continue
		}

		c.AddChild(s.Owner)
		c.keys = append(c.keys, key)
		c.springs[key] = s
	}
}

func (c *Controller) selected(keys []string) []*SpringValue {
	if len(keys) == 0 {
		keys = c.keys
	}

	springs := make([]*SpringValue, 0, len(keys))
	for _, key := range keys {
		if s := c.springs[key]; s != nil {
			springs = append(springs, s)
		}
	}
	return springs
}

func (c *Controller) schedule() {
	if c.Disposed() {
		return
	}
	c.loop.register(c)
}

func (c *Controller) animating() bool {
	for _, s := range c.springs {
		if s.Animating() {
			return true
		}
	}
	return false
}

func (c *Controller) driving() bool {
	for _, s := range c.springs {
		if s.driving() {
			return true
		}
	}
	return false
}

func (c *Controller) frame(now float64) (bool, error) {
	var errs []error

	c.loop.graph.Batch(func() {
		for _, key := range slices.Clone(c.keys) {
			if s := c.springs[key]; s != nil {
				if err := s.advance(now); err != nil {
					errs = append(errs, err)
				}
			}
		}
	})

	c.events.flush(&c.phase, c.animating(), c.get)

	return c.driving(), errors.Join(errs...)
}

func lookup(values any, key string) any {
	if m, ok := values.(map[string]any); ok {
		return m[key]
	}
	return nil
}

package internal

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// runner plays the async scripts of one owner (a controller or a standalone
// spring value). Only one script runs at a time: starting a new one cancels
// the previous.
type runner struct {
	loop   *Loop
	events *eventBatch

	get   func() any
	start func(*Props) *Promise
	wake  func()

	// bumped on every run and cancel, continuations of older runs bail out
	id      int
	promise *Promise
	timer   *Timer
	span    trace.Span

	delays delaySet
}

func newRunner(loop *Loop, events *eventBatch, get func() any, start func(*Props) *Promise, wake func()) *runner {
	return &runner{
		loop:   loop,
		events: events,
		get:    get,
		start:  start,
		wake:   wake,
	}
}

// idle reports whether no script is in flight.
func (r *runner) idle() bool {
	return r.promise == nil && r.delays.Len() == 0
}

// schedule handles the owner-level part of an update once its delay elapsed:
// cancelling the running script, or starting a new one. Updates without
// either resolve as finished right away.
func (r *runner) schedule(u *update) *Promise {
	p := NewPromise()

	if u.script == nil && !u.props.Cancel {
		p.resolve(Result{Value: r.get(), Finished: true})
		return p
	}

	begin := func() {
		if u.props.Cancel {
			r.cancel()
			p.resolve(Result{Value: r.get(), Cancelled: true})
			return
		}

		r.run(u.script, u.props.Loop).Then(func(res Result) {
			r.events.rest(u.onRest, res)
			r.wake()
			p.resolve(res)
		})
	}

	if u.props.Delay > 0 {
		r.delays.schedule(r.loop, u.props.Delay, p, begin)
	} else {
		begin()
	}

	return p
}

func (r *runner) run(s *script, loops int) *Promise {
	r.cancel()

	r.id++
	id := r.id
	p := NewPromise()
	r.promise = p

	_, r.span = r.loop.tracer.Start(context.Background(), "spring.script",
		trace.WithAttributes(
			attribute.Int("spring.run_id", id),
			attribute.Int("spring.loop", loops),
			attribute.Bool("spring.script_func", s.fn != nil),
		),
	)

	step := 0
	last := Result{Value: r.get(), Finished: true}

	var next func()
	next = func() {
		r.timer = nil
		if r.id != id {
			return
		}

		props := s.at(step, last)
		if props == nil && step > 0 && loops != 0 {
			if loops > 0 {
				loops--
			}
			step = 0
			props = s.at(step, last)
		}

		if props == nil {
			r.finish(id, Result{Value: r.get(), Finished: true})
			return
		}

		r.span.AddEvent("step", trace.WithAttributes(attribute.Int("spring.step", step)))
		step++

		begin := func() {
			r.timer = nil
			if r.id != id {
				return
			}

			stepProps := *props
			stepProps.Delay = 0

			result := r.start(&stepProps)
			settled := result.Settled()

			result.Then(func(res Result) {
				if r.id != id {
					return
				}
				last = res

				// a step that settled synchronously continues next frame
				if settled {
					r.timer = r.loop.SetTimeout(next, 0)
				} else {
					next()
				}
			})
		}

		if props.Delay > 0 {
			r.timer = r.loop.SetTimeout(begin, props.Delay)
		} else {
			begin()
		}
	}

	next()

	return p
}

func (r *runner) finish(id int, res Result) {
	if r.id != id || r.promise == nil {
		return
	}

	p := r.promise
	r.promise = nil

	r.span.SetAttributes(attribute.Bool("spring.finished", res.Finished))
	r.span.End()
	r.loop.metrics.script("finished")

	p.resolve(res)
}

// cancel stops the running script, resolving it as cancelled.
func (r *runner) cancel() {
	if r.promise == nil {
		return
	}

	r.id++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}

	p := r.promise
	r.promise = nil

	r.span.SetAttributes(attribute.Bool("spring.cancelled", true))
	r.span.End()
	r.loop.metrics.script("cancelled")

	p.resolve(Result{Value: r.get(), Cancelled: true})
}

// stop cancels the running script and every delayed update still waiting.
func (r *runner) stop() {
	r.cancel()
	r.delays.cancel(r.get())
}

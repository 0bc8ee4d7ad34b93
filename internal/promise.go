package internal

import (
	"context"
	"sync"
)

// Result is the terminal report of one animation run or one flushed batch of
// updates. Cancelled results are never finished.
type Result struct {
	Value     any
	Finished  bool
	Cancelled bool
}

// Promise settles exactly once with a Result. Continuations registered with
// Then run synchronously on the goroutine that settles it; Wait can be used
// from any goroutine.
type Promise struct {
	mu sync.Mutex

	settled   bool
	result    Result
	callbacks []func(Result)
	done      chan struct{}
}

func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolved returns an already settled promise.
func Resolved(r Result) *Promise {
	p := NewPromise()
	p.resolve(r)
	return p
}

func (p *Promise) resolve(r Result) bool {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return false
	}

	p.settled = true
	p.result = r
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(r)
	}

	return true
}

// Then calls fn with the result once settled, immediately if already settled.
func (p *Promise) Then(fn func(Result)) {
	p.mu.Lock()
	if !p.settled {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	r := p.result
	p.mu.Unlock()

	fn(r)
}

func (p *Promise) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settled
}

// Result returns the result and whether the promise has settled.
func (p *Promise) Result() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.settled
}

// Done is closed once the promise settles.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the promise settles or ctx is done.
func (p *Promise) Wait(ctx context.Context) (Result, error) {
	select {
	case <-p.done:
		r, _ := p.Result()
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// All settles once every promise has, with the results combined by combine.
func All(promises []*Promise, combine func([]Result) Result) *Promise {
	all := NewPromise()

	if len(promises) == 0 {
		all.resolve(combine(nil))
		return all
	}

	results := make([]Result, len(promises))
	remaining := len(promises)

	for i, p := range promises {
		p.Then(func(r Result) {
			results[i] = r
			remaining--
			if remaining == 0 {
				all.resolve(combine(results))
			}
		})
	}

	return all
}

// mergeResults combines the results of the parts of one update: finished only
// if every part finished, cancelled if any part was.
func mergeResults(value any, results []Result) Result {
	r := Result{Value: value, Finished: true}
	for _, part := range results {
		r.Finished = r.Finished && part.Finished
		r.Cancelled = r.Cancelled || part.Cancelled
	}
	if r.Cancelled {
		r.Finished = false
	}
	return r
}

package internal

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const DefaultInterval = 16 * time.Millisecond

const tracerName = "github.com/AnatoleLucet/spring"

// Loop is the frame scheduler every controller and spring value runs on. All of
// its state belongs to the goroutine that drives it (through Advance, Frame or
// Run); other goroutines hand work over with Post.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	clock    Clock
	epoch    time.Time
	interval time.Duration

	// last time passed to Advance, in milliseconds
	now float64

	graph     *Graph
	scheduler *Scheduler
	timers    *timerQueue

	logger  *slog.Logger
	metrics *metrics
	tracer  trace.Tracer
}

type Option func(*Loop)

// WithClock makes Now and Frame read c instead of the last Advance time.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

func WithInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRegisterer enables the loop metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(l *Loop) {
		l.metrics = newMetrics(reg)
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(l *Loop) {
		if tracer != nil {
			l.tracer = tracer
		}
	}
}

func NewLoop(opts ...Option) *Loop {
	l := &Loop{
		wake:      make(chan struct{}, 1),
		interval:  DefaultInterval,
		graph:     NewGraph(),
		scheduler: NewScheduler(),
		timers:    &timerQueue{},
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.clock != nil {
		l.epoch = l.clock.Now()
	}

	return l
}

func (l *Loop) Graph() *Graph {
	return l.graph
}

func (l *Loop) Logger() *slog.Logger {
	return l.logger
}

// Now is the current frame time in milliseconds.
func (l *Loop) Now() float64 {
	if l.clock != nil {
		return millis(l.clock.Now().Sub(l.epoch))
	}
	return l.now
}

// Awake reports whether there is anything left for the loop to do.
func (l *Loop) Awake() bool {
	l.mu.Lock()
	pending := len(l.tasks)
	l.mu.Unlock()

	return pending > 0 || l.scheduler.Len() > 0 || l.timers.Len() > 0
}

// Post queues fn to run on the loop goroutine before the next frame. It is the
// only Loop method safe to call from other goroutines.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	l.notify()
}

// SetTimeout runs fn once delay has elapsed. Timers only fire from Advance and
// never in the frame that created them.
func (l *Loop) SetTimeout(fn func(), delay time.Duration) *Timer {
	t := l.timers.add(l.Now()+millis(delay), fn)
	l.notify()
	return t
}

// Advance runs one frame at time now (milliseconds): queued tasks first, then
// due timers, then every registered handler in registration order.
func (l *Loop) Advance(now float64) error {
	start := time.Now()
	l.now = now

	l.runTasks()

	for _, t := range l.timers.due(now) {
		t.fn()
	}

	var errs []error
	l.scheduler.Run(func(h frameHandler) bool {
		active, err := h.frame(now)
		if err != nil {
			l.metrics.stepError()
			l.logger.Warn("frame step failed", "err", err)
			errs = append(errs, err)
		}
		if !active {
			l.logger.Debug("handler idle", "handlers", l.scheduler.Len()-1)
		}
		return active
	})

	l.metrics.frame(time.Since(start), l.scheduler.Len())

	return errors.Join(errs...)
}

// Frame advances the loop to the clock's current time.
func (l *Loop) Frame() error {
	if l.clock == nil {
		l.clock = systemClock{}
		l.epoch = l.clock.Now()
	}
	return l.Advance(l.Now())
}

// Run drives frames every interval while the loop is awake, and sleeps until
// woken by new work otherwise. It returns ctx.Err() once ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if l.clock == nil {
		l.clock = systemClock{}
		l.epoch = l.clock.Now()
	}

	var ticker *time.Ticker
	var tick <-chan time.Time

	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		l.runTasks()

		switch awake := l.Awake(); {
		case awake && ticker == nil:
			ticker = time.NewTicker(l.interval)
			tick = ticker.C
		case !awake && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-tick:
			_ = l.Frame()
		}
	}
}

// Stop drops every registered handler, pending timer and task.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.tasks = nil
	l.mu.Unlock()

	l.scheduler.Clear()
	l.timers.clear()
	l.metrics.handlers(0)
}

func (l *Loop) register(h frameHandler) {
	if !l.scheduler.Add(h) {
		return
	}
	l.logger.Debug("handler registered", "handlers", l.scheduler.Len())
	l.metrics.handlers(l.scheduler.Len())
	l.notify()
}

func (l *Loop) deregister(h frameHandler) {
	l.scheduler.Remove(h)
	l.metrics.handlers(l.scheduler.Len())
}

func (l *Loop) runTasks() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

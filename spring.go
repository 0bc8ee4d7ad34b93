// Package spring computes animated values frame by frame, with spring
// physics, eased durations or decay, and derives values from them through a
// dependency graph of interpolations.
package spring

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/AnatoleLucet/spring/internal"
)

type (
	Loop        = internal.Loop
	Option      = internal.Option
	Clock       = internal.Clock
	ManualClock = internal.ManualClock
	Timer       = internal.Timer

	Config     = internal.Config
	Easing     = internal.Easing
	Props      = internal.Props
	ScriptFunc = internal.ScriptFunc
	Result     = internal.Result
	Promise    = internal.Promise
	Phase      = internal.Phase

	Controller  = internal.Controller
	SpringValue = internal.SpringValue

	Node               = internal.Node
	Extrapolate        = internal.Extrapolate
	InterpolatorConfig = internal.InterpolatorConfig

	StepError = internal.StepError
)

const (
	PhaseCreated = internal.PhaseCreated
	PhaseActive  = internal.PhaseActive
	PhaseIdle    = internal.PhaseIdle

	ExtrapolateExtend   = internal.ExtrapolateExtend
	ExtrapolateClamp    = internal.ExtrapolateClamp
	ExtrapolateIdentity = internal.ExtrapolateIdentity

	LoopForever     = internal.LoopForever
	DefaultInterval = internal.DefaultInterval
)

var (
	ErrConflictingLaws = internal.ErrConflictingLaws
	ErrRangeMismatch   = internal.ErrRangeMismatch
	ErrRangeTooShort   = internal.ErrRangeTooShort
	ErrOutputType      = internal.ErrOutputType
	ErrStringShape     = internal.ErrStringShape
	ErrValueType       = internal.ErrValueType
	ErrLengthMismatch  = internal.ErrLengthMismatch
	ErrNoSources       = internal.ErrNoSources
	ErrUnknownEasing   = internal.ErrUnknownEasing
	ErrUnknownPreset   = internal.ErrUnknownPreset
	ErrDisposed        = internal.ErrDisposed
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Ptr returns a pointer to v, for the optional fields of Config.
func Ptr[T any](v T) *T {
	return &v
}

// NewLoop creates a frame loop. Drive it with Advance, Frame or Run.
func NewLoop(opts ...Option) *Loop {
	return internal.NewLoop(opts...)
}

// DefaultLoop returns the loop of the calling goroutine, created on first use.
func DefaultLoop() *Loop {
	return internal.GetLoop()
}

// NewManualClock creates a clock that only moves when told to.
func NewManualClock(start time.Time) *ManualClock {
	return internal.NewManualClock(start)
}

// WithClock makes the loop read frame times from c.
func WithClock(c Clock) Option { return internal.WithClock(c) }

// WithInterval sets the frame interval used by Run.
func WithInterval(d time.Duration) Option { return internal.WithInterval(d) }

func WithLogger(logger *slog.Logger) Option { return internal.WithLogger(logger) }

// WithRegisterer exports the loop metrics to reg.
func WithRegisterer(reg prometheus.Registerer) Option { return internal.WithRegisterer(reg) }

func WithTracer(tracer trace.Tracer) Option { return internal.WithTracer(tracer) }

// DefaultConfig returns the default spring config.
func DefaultConfig() Config {
	return internal.DefaultConfig()
}

// Preset returns a named spring config: default, gentle, wobbly, stiff, slow
// or molasses.
func Preset(name string) (Config, error) {
	return internal.PresetByName(name)
}

func Presets() []string {
	return internal.PresetNames()
}

// EasingByName looks up a named easing such as "inOutCubic".
func EasingByName(name string) (Easing, error) {
	return internal.EasingByName(name)
}

func Easings() []string {
	return internal.EasingNames()
}

// Linear is the default easing.
func Linear(t float64) float64 {
	return internal.Linear(t)
}

// NewController creates a controller on the default loop.
func NewController(props *Props) *Controller {
	return internal.NewController(DefaultLoop(), props)
}

// NewControllerOn creates a controller on loop.
func NewControllerOn(loop *Loop, props *Props) *Controller {
	return internal.NewController(loop, props)
}

// Animatable is the set of values a Value can hold.
type Animatable interface {
	float64 | string | []float64
}

// Value is a typed standalone spring value.
type Value[T Animatable] struct {
	spring *internal.SpringValue
}

// NewValue creates a spring value on the default loop.
func NewValue[T Animatable](initial T, props ...*Props) (*Value[T], error) {
	return NewValueOn(DefaultLoop(), initial, props...)
}

// NewValueOn creates a spring value on loop. The first props, if any, set the
// default config and start the value.
func NewValueOn[T Animatable](loop *Loop, initial T, props ...*Props) (*Value[T], error) {
	var p *Props
	if len(props) > 0 {
		p = props[0]
	}

	s, err := internal.NewSpringValue(loop, initial, p)
	if err != nil {
		return nil, err
	}

	return &Value[T]{spring: s}, nil
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return as[T](v.spring.Get())
}

// Goal returns the value being animated towards.
func (v *Value[T]) Goal() T {
	return as[T](v.spring.Goal())
}

// To animates towards target with the value's default config, or cfg if given.
func (v *Value[T]) To(target T, cfg ...*Config) *Promise {
	p := &Props{To: target}
	if len(cfg) > 0 {
		p.Config = cfg[0]
	}
	return v.spring.Start(p)
}

// Start applies an update. Its To may be a T or an async script.
func (v *Value[T]) Start(props *Props) *Promise {
	return v.spring.Start(props)
}

// Set jumps to value without animating.
func (v *Value[T]) Set(value T) error {
	return v.spring.Set(value)
}

func (v *Value[T]) Stop()             { v.spring.Stop() }
func (v *Value[T]) Pause()            { v.spring.Pause() }
func (v *Value[T]) Resume()           { v.spring.Resume() }
func (v *Value[T]) Reset() *Promise   { return v.spring.Reset() }
func (v *Value[T]) Idle() bool        { return v.spring.Idle() }
func (v *Value[T]) Animating() bool   { return v.spring.Animating() }
func (v *Value[T]) Phase() Phase      { return v.spring.Phase() }
func (v *Value[T]) Node() *Node       { return v.spring.Node() }
func (v *Value[T]) Dispose()          { v.spring.Dispose() }
func (v *Value[T]) Raw() *SpringValue { return v.spring }

// Map derives a node from sources with fn. A single array source is spread
// into positional arguments.
func Map(fn func(args ...any) any, sources ...*Node) (*Node, error) {
	return internal.Map(sources, fn)
}

// Interpolate derives a node mapping the value of its first source through cfg.
func Interpolate(cfg InterpolatorConfig, sources ...*Node) (*Node, error) {
	return internal.Interpolate(sources, cfg)
}

// Range derives a node mapping source from inputRange onto output.
func Range(source *Node, inputRange []float64, output []any, extrapolate ...Extrapolate) (*Node, error) {
	return internal.Range([]*Node{source}, inputRange, output, extrapolate...)
}

// NewInterpolator returns the plain interpolation function described by cfg.
func NewInterpolator(cfg InterpolatorConfig) (func(float64) any, error) {
	return internal.NewInterpolator(cfg)
}

// Get reads a node as T. Arrays of numbers read as []float64.
func Get[T any](n *Node) T {
	return as[T](internal.Plain(n.Value()))
}

// All settles once every promise has: finished if all of them finished,
// cancelled if any was.
func All(promises ...*Promise) *Promise {
	return internal.All(promises, func(results []Result) Result {
		r := Result{Finished: true}
		values := make([]any, len(results))
		for i, part := range results {
			values[i] = part.Value
			r.Finished = r.Finished && part.Finished
			r.Cancelled = r.Cancelled || part.Cancelled
		}
		r.Value = values
		if r.Cancelled {
			r.Finished = false
		}
		return r
	})
}

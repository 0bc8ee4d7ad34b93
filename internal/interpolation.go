package internal

import "math"

// NewInterpolation creates a node deriving its value from sources with fn.
// A single Sequence source is spread so fn receives its elements positionally.
func NewInterpolation(fn func(args ...any) any, sources ...*Node) *Node {
	n := &Node{
		kind:    KindInterpolation,
		sources: sources,
		compute: func(args []any) any { return fn(args...) },
		flags:   FlagDirty,
	}
	n.height = n.payloadHeight()

	return n
}

func (n *Node) derive() any {
	if n.attached() && !n.HasFlag(FlagDirty) {
		return n.value
	}

	value := n.compute(n.args())

	if n.attached() {
		n.value = value
		n.RemoveFlag(FlagDirty)
	}

	return value
}

func (n *Node) args() []any {
	if len(n.sources) == 1 && n.sources[0].kind == KindSequence {
		return n.sources[0].Value().([]any)
	}

	args := make([]any, len(n.sources))
	for i, source := range n.sources {
		args[i] = source.Value()
	}
	return args
}

// Map derives a node from one or more sources with a custom mapping function.
func Map(sources []*Node, fn func(args ...any) any) (*Node, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	return NewInterpolation(fn, sources...), nil
}

// Interpolate derives a node mapping the first source value through cfg.
func Interpolate(sources []*Node, cfg InterpolatorConfig) (*Node, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	interpolate, err := NewInterpolator(cfg)
	if err != nil {
		return nil, err
	}

	return NewInterpolation(func(args ...any) any {
		input, ok := toFloat(args[0])
		if !ok {
			input = math.NaN()
		}
		return interpolate(input)
	}, sources...), nil
}

// Range is the shortcut form of Interpolate.
func Range(sources []*Node, inputRange []float64, output []any, extrapolate ...Extrapolate) (*Node, error) {
	cfg := InterpolatorConfig{Range: inputRange, Output: output}
	if len(extrapolate) > 0 {
		cfg.Extrapolate = extrapolate[0]
	}

	return Interpolate(sources, cfg)
}

// To chains a mapping function onto n.
func (n *Node) To(fn func(args ...any) any) *Node {
	return NewInterpolation(fn, n)
}

// Interpolate chains a range interpolation onto n.
func (n *Node) Interpolate(cfg InterpolatorConfig) (*Node, error) {
	return Interpolate([]*Node{n}, cfg)
}

// Range chains the range shortcut onto n.
func (n *Node) Range(inputRange []float64, output []any, extrapolate ...Extrapolate) (*Node, error) {
	return Range([]*Node{n}, inputRange, output, extrapolate...)
}

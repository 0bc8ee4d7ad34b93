package internal

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Extrapolate decides what happens to inputs outside the interpolation range.
type Extrapolate string

const (
	ExtrapolateExtend   Extrapolate = "extend"
	ExtrapolateClamp    Extrapolate = "clamp"
	ExtrapolateIdentity Extrapolate = "identity"
)

// InterpolatorConfig maps an input range onto an output range.
// Output entries are either all numbers or all strings with the same shape.
type InterpolatorConfig struct {
	Range  []float64
	Output []any

	// Extrapolate applies to both sides unless a side is set explicitly.
	Extrapolate      Extrapolate
	ExtrapolateLeft  Extrapolate
	ExtrapolateRight Extrapolate

	// Map pre-maps the input before the range lookup.
	Map func(float64) float64

	// Easing is applied to the segment progress.
	Easing Easing
}

// matches numbers with an optional sign, fraction and exponent
var numberPattern = regexp.MustCompile(`[+\-]?(?:0|[1-9]\d*)(?:\.\d*)?(?:[eE][+\-]?\d+)?`)

// NewInterpolator validates cfg and returns the interpolation function.
func NewInterpolator(cfg InterpolatorConfig) (func(float64) any, error) {
	inputRange := cfg.Range
	if inputRange == nil {
		inputRange = []float64{0, 1}
	}
	if len(inputRange) < 2 {
		return nil, ErrRangeTooShort
	}
	if len(inputRange) != len(cfg.Output) {
		return nil, fmt.Errorf("%w: %d breakpoints, %d outputs", ErrRangeMismatch, len(inputRange), len(cfg.Output))
	}

	if _, ok := cfg.Output[0].(string); ok {
		return newStringInterpolator(cfg, inputRange)
	}

	output := make([]float64, len(cfg.Output))
	for i, v := range cfg.Output {
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("%w: output[%d] is %T", ErrOutputType, i, v)
		}
		output[i] = f
	}

	interpolate := newNumberInterpolator(cfg, inputRange, output)
	return func(input float64) any { return interpolate(input) }, nil
}

func newNumberInterpolator(cfg InterpolatorConfig, inputRange, output []float64) func(float64) float64 {
	easing := cfg.Easing
	if easing == nil {
		easing = Linear
	}

	left, right := cfg.ExtrapolateLeft, cfg.ExtrapolateRight
	if left == "" {
		left = cfg.Extrapolate
	}
	if right == "" {
		right = cfg.Extrapolate
	}

	return func(input float64) float64 {
		i := findRange(input, inputRange)
		return interpolateSegment(
			input,
			inputRange[i], inputRange[i+1],
			output[i], output[i+1],
			easing, left, right, cfg.Map,
		)
	}
}

func newStringInterpolator(cfg InterpolatorConfig, inputRange []float64) (func(float64) any, error) {
	template, ok := cfg.Output[0].(string)
	if !ok {
		return nil, ErrOutputType
	}
	shape := len(numberPattern.FindAllString(template, -1))

	// one numeric output range per token position
	tokens := make([][]float64, shape)
	for i, v := range cfg.Output {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: output[%d] is %T", ErrOutputType, i, v)
		}

		found := numberPattern.FindAllString(s, -1)
		if len(found) != shape {
			return nil, fmt.Errorf("%w: %q has %d tokens, want %d", ErrStringShape, s, len(found), shape)
		}

		for j, token := range found {
			f, err := strconv.ParseFloat(token, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrStringShape, token)
			}
			tokens[j] = append(tokens[j], f)
		}
	}

	interpolators := make([]func(float64) float64, shape)
	for j := range tokens {
		interpolators[j] = newNumberInterpolator(cfg, inputRange, tokens[j])
	}

	return func(input float64) any {
		i := 0
		return numberPattern.ReplaceAllStringFunc(template, func(string) string {
			out := formatNumber(interpolators[i](input))
			i++
			return out
		})
	}, nil
}

func findRange(input float64, inputRange []float64) int {
	i := 1
	for ; i < len(inputRange)-1; i++ {
		if inputRange[i] >= input {
			break
		}
	}
	return i - 1
}

func interpolateSegment(
	input, inputMin, inputMax, outputMin, outputMax float64,
	easing Easing,
	left, right Extrapolate,
	premap func(float64) float64,
) float64 {
	result := input
	if premap != nil {
		result = premap(input)
	}

	if result < inputMin {
		switch left {
		case ExtrapolateIdentity:
			return result
		case ExtrapolateClamp:
			result = inputMin
		}
	}

	if result > inputMax {
		switch right {
		case ExtrapolateIdentity:
			return result
		case ExtrapolateClamp:
			result = inputMax
		}
	}

	if outputMin == outputMax {
		return outputMin
	}

	if inputMin == inputMax {
		if input <= inputMin {
			return outputMin
		}
		return outputMax
	}

	switch {
	case math.IsInf(inputMin, -1):
		result = -result
	case math.IsInf(inputMax, 1):
		result = result - inputMin
	default:
		result = (result - inputMin) / (inputMax - inputMin)
	}

	result = easing(result)

	switch {
	case math.IsInf(outputMin, -1):
		result = -result
	case math.IsInf(outputMax, 1):
		result = result + outputMin
	default:
		result = result*(outputMax-outputMin) + outputMin
	}

	return result
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package internal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tanema/gween/ease"
)

// Easing maps animation progress in [0, 1] to eased progress.
type Easing func(float64) float64

func Linear(t float64) float64 { return t }

// FromTween adapts a gween tween function to an Easing.
func FromTween(fn ease.TweenFunc) Easing {
	return func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
}

var easings = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"inQuad":    ease.InQuad,
	"outQuad":   ease.OutQuad,
	"inOutQuad": ease.InOutQuad,
	"outInQuad": ease.OutInQuad,

	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"outInCubic": ease.OutInCubic,

	"inQuart":    ease.InQuart,
	"outQuart":   ease.OutQuart,
	"inOutQuart": ease.InOutQuart,
	"outInQuart": ease.OutInQuart,

	"inQuint":    ease.InQuint,
	"outQuint":   ease.OutQuint,
	"inOutQuint": ease.InOutQuint,
	"outInQuint": ease.OutInQuint,

	"inSine":    ease.InSine,
	"outSine":   ease.OutSine,
	"inOutSine": ease.InOutSine,
	"outInSine": ease.OutInSine,

	"inExpo":    ease.InExpo,
	"outExpo":   ease.OutExpo,
	"inOutExpo": ease.InOutExpo,
	"outInExpo": ease.OutInExpo,

	"inCirc":    ease.InCirc,
	"outCirc":   ease.OutCirc,
	"inOutCirc": ease.InOutCirc,
	"outInCirc": ease.OutInCirc,

	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
	"outInElastic": ease.OutInElastic,

	"inBack":    ease.InBack,
	"outBack":   ease.OutBack,
	"inOutBack": ease.InOutBack,
	"outInBack": ease.OutInBack,

	"inBounce":    ease.InBounce,
	"outBounce":   ease.OutBounce,
	"inOutBounce": ease.InOutBounce,
	"outInBounce": ease.OutInBounce,
}

// EasingByName looks up a named easing, case-insensitively.
func EasingByName(name string) (Easing, error) {
	if strings.EqualFold(name, "linear") || name == "" {
		return Linear, nil
	}

	for key, fn := range easings {
		if strings.EqualFold(key, name) {
			return FromTween(fn), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownEasing, name)
}

func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

package internal

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	DefaultTension   = 170.0
	DefaultFriction  = 26.0
	DefaultMass      = 1.0
	DefaultPrecision = 0.01
	DefaultDecayRate = 0.998
)

// Config holds the motion parameters of an update. Nil pointers and zero values
// inherit from the owner's defaults, so an explicit zero tension needs a pointer.
//
// The motion law is chosen by which fields are set: Duration selects easing,
// Decay selects exponential decay, anything else is a spring. When merged, a
// config that picks a law (Duration, Decay, or Tension/Friction alone) drops
// the law of the defaults it is merged onto.
type Config struct {
	Tension   *float64
	Friction  *float64
	Mass      *float64
	Precision *float64

	// Velocity is the initial velocity, in units per second for springs and
	// units per millisecond for decay.
	Velocity *float64

	Duration time.Duration
	Easing   Easing

	Decay     *bool
	DecayRate float64

	// Clamp stops a spring as soon as it overshoots its target.
	Clamp *bool

	// Immediate skips integration and jumps to the target on the next frame.
	Immediate *bool
}

func ptr[T any](v T) *T { return &v }

func isSet(p *bool) bool { return p != nil && *p }

// DefaultConfig is the default spring.
func DefaultConfig() Config {
	return Config{
		Tension:   ptr(DefaultTension),
		Friction:  ptr(DefaultFriction),
		Mass:      ptr(DefaultMass),
		Precision: ptr(DefaultPrecision),
		Velocity:  ptr(0.0),
		Easing:    Linear,
		DecayRate: DefaultDecayRate,
	}
}

func preset(tension, friction float64) Config {
	return Config{Tension: ptr(tension), Friction: ptr(friction)}
}

var presets = map[string]Config{
	"default":  preset(170, 26),
	"gentle":   preset(120, 14),
	"wobbly":   preset(180, 12),
	"stiff":    preset(210, 20),
	"slow":     preset(280, 60),
	"molasses": preset(280, 120),
}

func PresetByName(name string) (Config, error) {
	cfg, ok := presets[strings.ToLower(name)]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return cfg, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Merge returns c with every field set in o applied on top.
func (c Config) Merge(o *Config) Config {
	if o == nil {
		return c
	}

	if o.Tension != nil {
		c.Tension = o.Tension
	}
	if o.Friction != nil {
		c.Friction = o.Friction
	}
	if o.Mass != nil {
		c.Mass = o.Mass
	}
	if o.Precision != nil {
		c.Precision = o.Precision
	}
	if o.Velocity != nil {
		c.Velocity = o.Velocity
	}
	if o.Duration != 0 {
		c.Duration = o.Duration
	}
	if o.Easing != nil {
		c.Easing = o.Easing
	}
	if o.Decay != nil {
		c.Decay = o.Decay
	}
	if o.DecayRate != 0 {
		c.DecayRate = o.DecayRate
	}
	if o.Clamp != nil {
		c.Clamp = o.Clamp
	}
	if o.Immediate != nil {
		c.Immediate = o.Immediate
	}

	// the law picked by o replaces the one picked by c
	switch {
	case o.Duration > 0 && o.Decay == nil:
		c.Decay = nil
	case isSet(o.Decay) && o.Duration == 0:
		c.Duration = 0
	case o.Duration == 0 && o.Decay == nil && (o.Tension != nil || o.Friction != nil):
		c.Duration = 0
		c.Decay = nil
	}

	return c
}

func deref(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Law resolves the motion law of a merged config.
func (c Config) Law() (MotionLaw, error) {
	velocity := deref(c.Velocity, 0)

	switch {
	case c.Duration > 0 && isSet(c.Decay):
		return nil, ErrConflictingLaws

	case c.Duration > 0:
		easing := c.Easing
		if easing == nil {
			easing = Linear
		}
		return DurationLaw{
			Duration: float64(c.Duration) / float64(time.Millisecond),
			Easing:   easing,
		}, nil

	case isSet(c.Decay):
		rate := c.DecayRate
		if rate == 0 {
			rate = DefaultDecayRate
		}
		return DecayLaw{Rate: rate, Velocity: velocity}, nil
	}

	mass := deref(c.Mass, DefaultMass)
	if mass <= 0 {
		mass = DefaultMass
	}

	return SpringLaw{
		Tension:   deref(c.Tension, DefaultTension),
		Friction:  deref(c.Friction, DefaultFriction),
		Mass:      mass,
		Precision: deref(c.Precision, DefaultPrecision),
		Velocity:  velocity,
		Clamp:     isSet(c.Clamp),
	}, nil
}

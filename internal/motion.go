package internal

// MotionLaw is the integration rule of one animation run:
// SpringLaw, DurationLaw or DecayLaw.
type MotionLaw interface {
	law()
}

type SpringLaw struct {
	Tension   float64
	Friction  float64
	Mass      float64
	Precision float64
	Velocity  float64
	Clamp     bool
}

// DurationLaw eases from one value to another over Duration milliseconds.
type DurationLaw struct {
	Duration float64
	Easing   Easing
}

// DecayLaw slows an initial velocity down exponentially. It has no target.
type DecayLaw struct {
	Rate     float64
	Velocity float64
}

func (SpringLaw) law()   {}
func (DurationLaw) law() {}
func (DecayLaw) law()    {}

package internal

import "math"

const (
	// springs integrate in fixed 1ms steps
	stepsPerSecond = 1000.0

	// frames further apart than this are not caught up on
	maxFrameGap = 64.0

	// decay stops once a frame moves less than this
	decayThreshold = 0.1
)

// Animation is the integration record of one animated leaf. It is only
// mutated by Step and by its owning spring between frames.
type Animation struct {
	Node *Node

	// From and To hold float64 or string values; To may also be a *Node the
	// leaf follows.
	From any
	To   any

	Position     float64
	Velocity     float64
	LastPosition float64
	LastTime     float64
	StartTime    float64

	Done bool

	// element index inside an array value
	index int
}

// Start arms the record for a new run beginning at now.
func (a *Animation) Start(now, velocity float64) {
	a.StartTime = now
	a.LastTime = now
	a.Velocity = velocity
	a.Done = false

	if from, ok := a.From.(float64); ok {
		a.Position = from
		a.LastPosition = from
	}
}

// Shift moves the record's clock forward by d milliseconds, so a paused run
// resumes where it stopped.
func (a *Animation) Shift(d float64) {
	a.StartTime += d
	a.LastTime += d
}

// target resolves the current target value and whether it comes from another node.
func (a *Animation) target() (any, *Node) {
	node, ok := a.To.(*Node)
	if !ok {
		return a.To, nil
	}

	value := node.Value()
	if items, ok := value.([]any); ok {
		if a.index < len(items) {
			return items[a.index], node
		}
		return a.LastPosition, node
	}
	return value, node
}

// Step advances the record to time now (milliseconds) and returns the value the
// leaf should hold. If the law panics (a user easing, usually) the record is
// left untouched and a *StepError is returned.
func (a *Animation) Step(law MotionLaw, immediate bool, now float64) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, &StepError{Index: a.index, Cause: r}
		}
	}()

	to, source := a.target()

	toNum, toIsNum := to.(float64)
	fromNum, fromIsNum := a.From.(float64)

	// jump to the end for immediate runs and anything that isn't a number
	if immediate || !toIsNum || !fromIsNum {
		a.Done = source == nil || source.Done()
		if toIsNum {
			a.Position = toNum
			a.LastPosition = toNum
		}
		a.LastTime = now
		return to, nil
	}

	position := a.LastPosition
	velocity := a.Velocity
	done := false

	switch law := law.(type) {
	case DurationLaw:
		progress := (now - a.StartTime) / law.Duration
		progress = math.Max(0, math.Min(1, progress))

		position = fromNum + law.Easing(progress)*(toNum-fromNum)
		done = now >= a.StartTime+law.Duration

	case DecayLaw:
		k := 1 - law.Rate
		elapsed := now - a.StartTime

		position = fromNum + (law.Velocity/k)*(1-math.Exp(-k*elapsed))
		velocity = law.Velocity * math.Exp(-k*elapsed)

		done = elapsed > 0 && math.Abs(a.LastPosition-position) < decayThreshold
		if done {
			// decay has no target, it ends wherever it stopped
			toNum = position
		}

	case SpringLaw:
		lastTime := a.LastTime
		if now > lastTime+maxFrameGap {
			lastTime = now
		}

		// http://gafferongames.com/game-physics/fix-your-timestep/
		steps := int(math.Floor(now - lastTime))
		for range steps {
			force := -law.Tension * (position - toNum)
			damping := -law.Friction * velocity
			acceleration := (force + damping) / law.Mass
			velocity += acceleration / stepsPerSecond
			position += velocity / stepsPerSecond
		}

		overshooting := false
		if law.Clamp && law.Tension != 0 {
			if fromNum < toNum {
				overshooting = position > toNum
			} else {
				overshooting = position < toNum
			}
		}

		settled := math.Abs(velocity) <= law.Precision
		arrived := law.Tension == 0 || math.Abs(toNum-position) <= law.Precision

		done = overshooting || (settled && arrived)
	}

	// followers aren't done until what they follow is
	if source != nil && !source.Done() {
		done = false
	}

	if done {
		position = toNum
	}

	a.Position = position
	a.LastPosition = position
	a.Velocity = velocity
	a.LastTime = now
	a.Done = done

	return position, nil
}

package internal

import (
	"slices"
	"time"
)

// LoopForever makes a script or a plain update repeat until stopped.
const LoopForever = -1

// ScriptFunc produces the next step of an async script. It receives the index
// of the step and the result of the previous one (Finished for the first
// step) and returns nil to end the script.
type ScriptFunc func(step int, last Result) *Props

// Props is one update record.
//
// To is a map[string]any of per-key targets for controllers, a direct value
// for standalone spring values, or an async script: []*Props, []Props or a
// ScriptFunc. From and Reset restart runs from a given value.
type Props struct {
	From any
	To   any

	Config *Config
	Delay  time.Duration

	// Loop repeats the run (or the script) this many more times, LoopForever
	// for no end.
	Loop int

	Cancel bool
	Reset  bool
	Pause  bool

	OnStart  func()
	OnChange func(values any)
	OnRest   func(Result)
	OnProps  func(props *Props, spring *SpringValue)
}

// script is the async part of an update.
type script struct {
	steps []*Props
	fn    ScriptFunc
}

func (s *script) at(i int, last Result) *Props {
	if s.fn != nil {
		return s.fn(i, last)
	}
	if i < len(s.steps) {
		return s.steps[i]
	}
	return nil
}

// handles wrap the update's callbacks once so batched events can be
// deduplicated per update record.
type startHandle struct{ fn func() }
type changeHandle struct{ fn func(any) }
type restHandle struct{ fn func(Result) }

// update is a normalized Props record.
type update struct {
	props *Props

	from any
	to   any

	// keys affected by the update, empty means every key
	keys []string

	script *script

	onStart  *startHandle
	onChange *changeHandle
	onRest   *restHandle
}

func normalize(p *Props) *update {
	if p == nil {
		p = &Props{}
	}

	u := &update{props: p, from: p.From, to: p.To}

	switch to := p.To.(type) {
	case []*Props:
		u.script, u.to = &script{steps: to}, nil
	case []Props:
		steps := make([]*Props, len(to))
		for i := range to {
			steps[i] = &to[i]
		}
		u.script, u.to = &script{steps: steps}, nil
	case ScriptFunc:
		u.script, u.to = &script{fn: to}, nil
	case func(int, Result) *Props:
		u.script, u.to = &script{fn: to}, nil
	}

	u.keys = affectedKeys(u.from, u.to)

	if p.OnStart != nil {
		u.onStart = &startHandle{fn: p.OnStart}
	}
	if p.OnChange != nil {
		u.onChange = &changeHandle{fn: p.OnChange}
	}
	if p.OnRest != nil {
		u.onRest = &restHandle{fn: p.OnRest}
	}

	return u
}

// affectedKeys lists the keys with a defined value in either map, sorted.
func affectedKeys(values ...any) []string {
	var keys []string

	for _, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for key, value := range m {
			if value != nil && !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
	}

	slices.Sort(keys)
	return keys
}

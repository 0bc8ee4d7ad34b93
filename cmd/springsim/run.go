package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/spring"
)

type runOptions struct {
	from float64
	to   float64

	preset    string
	tension   float64
	friction  float64
	mass      float64
	precision float64
	velocity  float64
	clamp     bool

	duration time.Duration
	easing   string

	decay bool
	rate  float64

	fps    int
	max    int
	format string
}

type sample struct {
	Frame int     `json:"frame"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Animate a value and print one sample per frame",
		Long: `Animate a value from --from to --to on a manual clock and print the
value at every frame until it comes to rest (or --max frames elapsed).

The motion law follows the flags: --duration selects an eased animation,
--decay an exponential decay, anything else a spring.

Examples:
  springsim run --to 100
  springsim run --to 1 --preset wobbly --format json
  springsim run --to 100 --duration 300ms --easing inOutCubic
  springsim run --decay --velocity 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}

			samples, err := simulate(opts, cfg)
			if err != nil {
				return err
			}

			return writeSamples(cmd.OutOrStdout(), opts.format, samples)
		},
	}

	def := spring.DefaultConfig()

	cmd.Flags().Float64Var(&opts.from, "from", 0, "Start value")
	cmd.Flags().Float64Var(&opts.to, "to", 1, "Target value")
	cmd.Flags().StringVarP(&opts.preset, "preset", "p", "", "Named spring config (see 'springsim presets')")
	cmd.Flags().Float64Var(&opts.tension, "tension", *def.Tension, "Spring stiffness")
	cmd.Flags().Float64Var(&opts.friction, "friction", *def.Friction, "Spring damping")
	cmd.Flags().Float64Var(&opts.mass, "mass", *def.Mass, "Spring mass")
	cmd.Flags().Float64Var(&opts.precision, "precision", *def.Precision, "Distance to the target considered at rest")
	cmd.Flags().Float64Var(&opts.velocity, "velocity", 0, "Initial velocity")
	cmd.Flags().BoolVar(&opts.clamp, "clamp", false, "Stop the spring once it overshoots")
	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Animate over a fixed duration instead of a spring")
	cmd.Flags().StringVarP(&opts.easing, "easing", "e", "", "Easing used with --duration (see 'springsim easings')")
	cmd.Flags().BoolVar(&opts.decay, "decay", false, "Decay from --from with --velocity instead of animating to --to")
	cmd.Flags().Float64Var(&opts.rate, "rate", def.DecayRate, "Decay rate")
	cmd.Flags().IntVar(&opts.fps, "fps", 60, "Frames per second")
	cmd.Flags().IntVar(&opts.max, "max", 600, "Maximum number of frames")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "csv", "Output format (csv, json)")

	return cmd
}

// config builds the animation config from the flags. A preset provides the
// tension and friction unless they were given explicitly.
func (o runOptions) config(cmd *cobra.Command) (spring.Config, error) {
	cfg := spring.DefaultConfig()

	if o.preset != "" {
		p, err := spring.Preset(o.preset)
		if err != nil {
			return cfg, err
		}
		cfg.Tension, cfg.Friction = p.Tension, p.Friction
	}

	changed := cmd != nil && cmd.Flags().Changed("tension")
	if o.preset == "" || changed {
		cfg.Tension = spring.Ptr(o.tension)
	}
	changed = cmd != nil && cmd.Flags().Changed("friction")
	if o.preset == "" || changed {
		cfg.Friction = spring.Ptr(o.friction)
	}

	cfg.Mass = spring.Ptr(o.mass)
	cfg.Precision = spring.Ptr(o.precision)
	cfg.Velocity = spring.Ptr(o.velocity)
	cfg.Clamp = spring.Ptr(o.clamp)
	cfg.Duration = o.duration
	cfg.Decay = spring.Ptr(o.decay)
	cfg.DecayRate = o.rate

	if o.easing != "" {
		e, err := spring.EasingByName(o.easing)
		if err != nil {
			return cfg, err
		}
		cfg.Easing = e
	}

	return cfg, nil
}

// simulate animates a value on its own loop and samples it once per frame.
// The first sample is taken before any frame ran.
func simulate(o runOptions, cfg spring.Config) ([]sample, error) {
	if o.fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", o.fps)
	}
	if o.max <= 0 {
		return nil, fmt.Errorf("max must be positive, got %d", o.max)
	}

	loop := spring.NewLoop()
	defer loop.Stop()

	v, err := spring.NewValueOn(loop, o.from)
	if err != nil {
		return nil, err
	}
	defer v.Dispose()

	done := v.To(o.to, &cfg)

	frame := 1000 / float64(o.fps)
	samples := []sample{{Frame: 0, Time: 0, Value: v.Get()}}

	for i := 1; i <= o.max && !done.Settled(); i++ {
		now := float64(i) * frame
		if err := loop.Advance(now); err != nil {
			return samples, err
		}
		samples = append(samples, sample{Frame: i, Time: now, Value: v.Get()})
	}

	return samples, nil
}

func writeSamples(w io.Writer, format string, samples []sample) error {
	switch format {
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"frame", "time", "value"}); err != nil {
			return err
		}
		for _, s := range samples {
			err := cw.Write([]string{
				strconv.Itoa(s.Frame),
				strconv.FormatFloat(s.Time, 'f', 3, 64),
				strconv.FormatFloat(s.Value, 'g', -1, 64),
			})
			if err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(samples)
	}

	return fmt.Errorf("unknown format %q (expected csv or json)", format)
}

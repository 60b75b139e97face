package app

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"cellsim/internal/control"
	"cellsim/internal/core"
	"cellsim/internal/schedulers/partition"
	"cellsim/pkg/rules"
)

// ErrUsage marks command-line errors that should print usage and exit 1.
var ErrUsage = errors.New("usage error")

// Minimum grid dimensions accepted on the command line are MinCols+1 and
// MinRows+1.
const (
	MinCols = 5
	MinRows = 5
)

// Config represents the command-line parameters for the application.
type Config struct {
	Cols, Rows, Threads int

	Strategy   string
	Lifetime   string
	Rule       string
	Border     string
	Color      bool
	Delay      time.Duration
	Seed       int64
	UI         string
	Scale      int
	Turns      uint64
	Duration   time.Duration
	LogEvery   time.Duration
	Record     string
	RecordFPS  int
	CPUProfile string
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Strategy:  partition.Name,
		Lifetime:  partition.Persistent.String(),
		Rule:      "1",
		Border:    rules.Dead.String(),
		Seed:      42,
		UI:        "term",
		Scale:     4,
		LogEvery:  time.Second,
		RecordFPS: 25,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "update strategy: partition or celllock")
	fs.StringVar(&c.Lifetime, "lifetime", c.Lifetime, "partition workers: persistent or ephemeral")
	fs.StringVar(&c.Rule, "rule", c.Rule, "rule: 1 life, 2 coral, 3 amoeba, 4 maze")
	fs.StringVar(&c.Border, "border", c.Border, "border policy: dead, random, clipped or wrapped")
	fs.BoolVar(&c.Color, "color", c.Color, "color cells by age")
	fs.DurationVar(&c.Delay, "delay", c.Delay, "pause per generation or cell update (0 selects the strategy default, negative disables)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for grid randomization")
	fs.StringVar(&c.UI, "ui", c.UI, "front end: term, window or none")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier for window and recording")
	fs.Uint64Var(&c.Turns, "turns", c.Turns, "stop after this many generations (0 runs until quit)")
	fs.DurationVar(&c.Duration, "duration", c.Duration, "stop the headless run after this long (0 runs until quit)")
	fs.DurationVar(&c.LogEvery, "log-every", c.LogEvery, "headless progress log interval")
	fs.StringVar(&c.Record, "record", c.Record, "write an MJPEG AVI of the run to this file")
	fs.IntVar(&c.RecordFPS, "record-fps", c.RecordFPS, "frame rate of the recording")
	fs.StringVar(&c.CPUProfile, "cpuprofile", c.CPUProfile, "write a CPU profile to this file")
}

// Parse reads flags and the three positional arguments
// <num_cols> <num_rows> <num_threads>. Flags may appear before, between or
// after the positional arguments.
func (c *Config) Parse(fs *flag.FlagSet, args []string) error {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if len(pos) != 3 {
		return fmt.Errorf("%w: expected <num_cols> <num_rows> <num_threads>, got %d arguments", ErrUsage, len(pos))
	}
	vals := make([]int, 3)
	for i, s := range pos {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrUsage, s)
		}
		vals[i] = v
	}
	c.Cols, c.Rows, c.Threads = vals[0], vals[1], vals[2]
	return c.validate()
}

func (c *Config) validate() error {
	switch {
	case c.Cols <= MinCols:
		return fmt.Errorf("%w: num_cols must be greater than %d", ErrUsage, MinCols)
	case c.Rows <= MinRows:
		return fmt.Errorf("%w: num_rows must be greater than %d", ErrUsage, MinRows)
	case c.Threads <= 0:
		return fmt.Errorf("%w: num_threads must be positive", ErrUsage)
	case c.Strategy == partition.Name && c.Threads > c.Rows:
		return fmt.Errorf("%w: num_threads must not exceed num_rows for the partition strategy", ErrUsage)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive", ErrUsage)
	}
	if _, ok := core.Engines()[c.Strategy]; !ok {
		return fmt.Errorf("%w: unknown strategy %q (have %v)", ErrUsage, c.Strategy, core.EngineNames())
	}
	switch c.UI {
	case "term", "window", "none":
	default:
		return fmt.Errorf("%w: unknown ui %q", ErrUsage, c.UI)
	}
	return nil
}

// Controller translates the configuration into a control.Config. An unknown
// rule yields rules.ErrUnknownRule; every other problem is a usage error.
func (c *Config) Controller() (control.Config, error) {
	rule, err := rules.ParseRule(c.Rule)
	if err != nil {
		return control.Config{}, err
	}
	border, err := rules.ParseBorder(c.Border)
	if err != nil {
		return control.Config{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if _, err := partition.ParseLifetime(c.Lifetime); err != nil {
		return control.Config{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return control.Config{
		Rows:     c.Rows,
		Cols:     c.Cols,
		Workers:  c.Threads,
		Strategy: c.Strategy,
		Lifetime: c.Lifetime,
		Rule:     rule,
		Border:   border,
		Color:    c.Color,
		Delay:    c.Delay,
		Seed:     c.Seed,
		Turns:    c.Turns,
	}, nil
}

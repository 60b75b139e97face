package app

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"

	"cellsim/internal/schedulers/celllock"
	"cellsim/pkg/rules"
)

func parse(args ...string) (*Config, error) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("cellsim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)
	return cfg, cfg.Parse(fs, args)
}

func TestParsePositionalAndFlags(t *testing.T) {
	cfg, err := parse("-rule", "maze", "40", "30", "-border", "wrapped", "4", "-delay", "1ms")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Cols != 40 || cfg.Rows != 30 || cfg.Threads != 4 {
		t.Fatalf("dims = %dx%d threads %d", cfg.Cols, cfg.Rows, cfg.Threads)
	}
	cc, err := cfg.Controller()
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	if cc.Rule != rules.Maze || cc.Border != rules.Wrapped || cc.Delay != time.Millisecond {
		t.Fatalf("unexpected controller config %+v", cc)
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	cases := [][]string{
		{"40", "30"},
		{"40", "30", "4", "9"},
		{"5", "30", "4"},
		{"40", "5", "4"},
		{"40", "30", "0"},
		{"40", "30", "x"},
		{"40", "8", "9"},
		{"-ui", "web", "40", "30", "4"},
		{"-nope", "40", "30", "4"},
		{"-strategy", "gpu", "40", "30", "4"},
	}
	for _, args := range cases {
		if _, err := parse(args...); !errors.Is(err, ErrUsage) {
			t.Errorf("Parse(%v) err = %v, want ErrUsage", args, err)
		}
	}
}

func TestCellLockAllowsMoreThreadsThanRows(t *testing.T) {
	if _, err := parse("-strategy", celllock.Name, "40", "8", "16"); err != nil {
		t.Fatalf("Parse: %v", err)
	}
}

func TestControllerRuleErrors(t *testing.T) {
	cfg, err := parse("-rule", "7", "10", "10", "2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.Controller(); !errors.Is(err, rules.ErrUnknownRule) {
		t.Fatalf("Controller err = %v, want ErrUnknownRule", err)
	}

	cfg, err = parse("-border", "mirror", "10", "10", "2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := cfg.Controller(); !errors.Is(err, ErrUsage) {
		t.Fatalf("Controller err = %v, want ErrUsage", err)
	}
}

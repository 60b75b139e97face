package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"cellsim/internal/app"
	"cellsim/internal/control"
	"cellsim/internal/record"
	"cellsim/internal/schedulers/partition"
	"cellsim/internal/term"
	"cellsim/pkg/rules"
)

const (
	exitUsage   = 1
	exitFailure = 2
	exitRule    = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := app.NewConfig()
	fs := flag.NewFlagSet("cellsim", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: cellsim [flags] <num_cols> <num_rows> <num_threads>")
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
	}
	cfg.Bind(fs)
	if err := cfg.Parse(fs, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return exitUsage
	}

	cc, err := cfg.Controller()
	if err != nil {
		return exitCode(err)
	}

	if cfg.CPUProfile != "" {
		stop, err := startCPUProfile(cfg.CPUProfile)
		if err != nil {
			log.Printf("cpu profile: %v", err)
			return exitFailure
		}
		defer stop()
	}

	var rec *record.Recorder
	if cfg.Record != "" {
		rec, err = record.New(cfg.Record, cfg.Rows, cfg.Cols, cfg.Scale, cfg.RecordFPS)
		if err != nil {
			log.Print(err)
			return exitFailure
		}
		cc.Listener = rec
	}

	ctrl, err := control.New(cc)
	if err != nil {
		if rec != nil {
			_ = rec.Close()
		}
		return exitCode(err)
	}
	if rec != nil {
		rec.Attach(ctrl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("cellsim: %dx%d grid, %d %s workers, rule %s, border %s, seed %d",
		cfg.Cols, cfg.Rows, cfg.Threads, ctrl.Strategy(), cc.Rule.Notation(), cc.Border, cfg.Seed)
	if err := ctrl.Start(ctx); err != nil {
		log.Printf("start: %v", err)
		return exitFailure
	}

	code := 0
	if err := runUI(ctx, cfg, ctrl); err != nil {
		log.Print(err)
		code = exitFailure
	}
	if err := ctrl.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
		code = exitFailure
	}
	if rec != nil {
		if err := rec.Close(); err != nil {
			log.Print(err)
			code = exitFailure
		}
		log.Printf("recorded %d frames to %s (%d dropped)", rec.Written(), cfg.Record, rec.Dropped())
	}
	log.Printf("stopped at generation %d", ctrl.Generation())
	return code
}

func runUI(ctx context.Context, cfg *app.Config, ctrl *control.Controller) error {
	switch cfg.UI {
	case "window":
		return app.RunWindow(ctrl, cfg.Scale)
	case "term":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		return term.Run(ctx, ctrl, screen, 0)
	default:
		return app.RunHeadless(ctx, ctrl, cfg.LogEvery, cfg.Duration)
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, rules.ErrUnknownRule):
		log.Print(err)
		return exitRule
	case errors.Is(err, app.ErrUsage), errors.Is(err, partition.ErrTooManyWorkers):
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	default:
		log.Print(err)
		return exitFailure
	}
}

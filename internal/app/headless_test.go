package app

import (
	"context"
	"testing"
	"time"

	"cellsim/internal/control"
	"cellsim/pkg/rules"
)

func TestRunHeadlessStopsWhenFinished(t *testing.T) {
	c, err := control.New(control.Config{Rows: 12, Cols: 12, Workers: 2, Rule: rules.GameOfLife, Seed: 1, Turns: 5, Delay: time.Microsecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- RunHeadless(context.Background(), c, time.Millisecond, 0) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("RunHeadless: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("RunHeadless did not return")
	}
	if g := c.Generation(); g != 5 {
		t.Fatalf("generation = %d, want 5", g)
	}
}

func TestRunHeadlessHonoursLimit(t *testing.T) {
	c, err := control.New(control.Config{Rows: 12, Cols: 12, Workers: 2, Rule: rules.GameOfLife, Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Shutdown()
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	start := time.Now()
	if err := RunHeadless(context.Background(), c, time.Hour, 20*time.Millisecond); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("limit ignored")
	}
}

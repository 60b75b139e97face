package term

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"cellsim/internal/control"
	"cellsim/internal/core"
	"cellsim/internal/render"
	"cellsim/pkg/rules"
)

func newController(t *testing.T) *control.Controller {
	t.Helper()
	c, err := control.New(control.Config{Rows: 8, Cols: 8, Workers: 2, Rule: rules.GameOfLife, Seed: 4, Delay: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

func TestDrawPaintsSnapshot(t *testing.T) {
	c := newController(t)
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer s.Fini()
	s.SetSize(80, 24)

	v := &view{screen: s, ctrl: c}
	v.draw()
	cells := c.Snapshot(nil)
	for i, state := range cells[:8] {
		_, _, style, _ := s.GetContent(2*i, 0)
		_, bg, _ := style.Decompose()
		if want := tcell.FromImageColor(render.ColorOf(state)); bg != want {
			t.Fatalf("cell %d background = %v, want %v", i, bg, want)
		}
	}
}

func TestRunDispatchesKeys(t *testing.T) {
	c := newController(t)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s := tcell.NewSimulationScreen("UTF-8")
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- run(context.Background(), c, s, time.Millisecond, func() { close(ready) })
	}()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("Run returned before the screen was ready: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("screen never initialized")
	}
	s.InjectKey(tcell.KeyRune, '3', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'c', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after q")
	}
	if c.State().Rule() != rules.Amoeba {
		t.Fatalf("rule = %v, want amoeba", c.State().Rule())
	}
	if !c.State().Color() {
		t.Fatalf("color mode not enabled")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	c := newController(t)
	s := tcell.NewSimulationScreen("UTF-8")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, c, s, time.Millisecond) }()
	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run ignored context cancellation")
	}
}

type fakeControls struct {
	st   *core.State
	keys chan rune
	quit chan struct{}
}

func (f *fakeControls) Dims() (int, int) { return f.st.Rows, f.st.Cols }

func (f *fakeControls) Snapshot(dst []uint32) []uint32 {
	return append(dst[:0], make([]uint32, f.st.Rows*f.st.Cols)...)
}

func (f *fakeControls) LiveWorkers() int { return 0 }
func (f *fakeControls) Generation() uint64 { return 0 }
func (f *fakeControls) Strategy() string { return "fake" }
func (f *fakeControls) State() *core.State { return f.st }
func (f *fakeControls) Parameters() core.ParameterSnapshot { return core.ParameterSnapshot{} }
func (f *fakeControls) SetRule(r rules.Rule) error { return f.st.SetRule(r) }
func (f *fakeControls) Quit() { close(f.quit) }
func (f *fakeControls) Done() <-chan struct{} { return f.quit }
func (f *fakeControls) HandleKey(k rune) bool {
	f.keys <- k
	if k == 'q' {
		f.Quit()
	}
	return true
}

func TestRunDrivesAnyControls(t *testing.T) {
	st, err := core.NewState(6, 6, 1, rules.Dead, rules.GameOfLife, time.Millisecond)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	f := &fakeControls{st: st, keys: make(chan rune, 4), quit: make(chan struct{})}
	s := tcell.NewSimulationScreen("UTF-8")
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- run(context.Background(), f, s, time.Millisecond, func() { close(ready) }) }()
	<-ready
	s.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after q")
	}
	if k := <-f.keys; k != 'x' {
		t.Fatalf("first key = %q, want 'x'", k)
	}
}

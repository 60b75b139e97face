// Package term is the terminal front end: it paints snapshots of a running
// controller into a tcell screen and forwards key presses to it.
package term

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"cellsim/internal/core"
	"cellsim/internal/render"
	"cellsim/pkg/rules"
)

// DefaultRefresh is the redraw interval used when Run is given zero.
const DefaultRefresh = 50 * time.Millisecond

var styles [rules.NbColors]tcell.Style

func init() {
	for i, c := range render.Palette {
		styles[i] = tcell.StyleDefault.Background(tcell.FromImageColor(c)).Foreground(tcell.ColorGray)
	}
}

func styleOf(state uint32) tcell.Style {
	if int(state) >= len(styles) {
		return styles[len(styles)-1]
	}
	return styles[state]
}

type view struct {
	screen tcell.Screen
	ctrl   core.Controls
	cells  []uint32
}

// draw paints each cell as two columns, clipped to the screen, followed by
// the state pane.
func (v *view) draw() {
	v.cells = v.ctrl.Snapshot(v.cells)
	rows, cols := v.ctrl.Dims()
	sw, sh := v.screen.Size()
	lines := v.ctrl.State().GridLines()

	v.screen.Clear()
	for r := 0; r < rows && r < sh; r++ {
		for c := 0; c < cols && 2*c+1 < sw; c++ {
			state := v.cells[r*cols+c]
			ch := ' '
			if lines && state == 0 {
				ch = '.'
			}
			st := styleOf(state)
			v.screen.SetContent(2*c, r, ch, nil, st)
			v.screen.SetContent(2*c+1, r, ' ', nil, st)
		}
	}

	paneX := 2*cols + 2
	paneY := 0
	if paneX+24 > sw {
		paneX, paneY = 0, rows+1
	}
	label := tcell.StyleDefault.Foreground(tcell.ColorSilver)
	for i, line := range v.ctrl.Parameters().Lines() {
		putString(v.screen, paneX, paneY+i, line, label)
	}
	help := "q quit  space reset  +/- speed  1-4 rule  c color  l grid"
	putString(v.screen, paneX, paneY+len(v.ctrl.Parameters().Lines())+1, help, label.Dim(true))
	v.screen.Show()
}

func putString(s tcell.Screen, x, y int, str string, style tcell.Style) {
	for _, r := range str {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// Run initializes screen, redraws it every refresh and dispatches keys to
// ctrl until the user quits or ctx ends. screen is finalized on return.
func Run(ctx context.Context, ctrl core.Controls, screen tcell.Screen, refresh time.Duration) error {
	return run(ctx, ctrl, screen, refresh, nil)
}

// run is Run with a hook called once the screen accepts events.
func run(ctx context.Context, ctrl core.Controls, screen tcell.Screen, refresh time.Duration, ready func()) error {
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("term: init screen: %w", err)
	}
	defer screen.Fini()
	screen.Clear()

	v := &view{screen: screen, ctrl: ctrl}
	v.draw()
	if ready != nil {
		ready()
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(refresh)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
				return
			case <-ctrl.Done():
				_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
				return
			case <-tick.C:
				v.draw()
			}
		}
	}()
	defer wg.Wait()
	defer close(stop)

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				ctrl.Quit()
				return nil
			case tcell.KeyRune:
				ctrl.HandleKey(ev.Rune())
			}
			select {
			case <-ctrl.Done():
				return nil
			default:
			}
		}
	}
}

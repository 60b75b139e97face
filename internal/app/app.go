//go:build ebiten

package app

import (
	"errors"
	"fmt"

	"cellsim/internal/core"
	"cellsim/internal/render"
	"cellsim/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const hudWidth = 240

// Game adapts running controls to the ebiten.Game interface. The engine
// advances on its own workers; Update only forwards input.
type Game struct {
	ctrl    core.Controls
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD

	rows, cols int
	scale      int
	cells      []uint32
	chars      []rune
}

// New constructs a Game for the provided controls.
func New(ctrl core.Controls, scale int) *Game {
	rows, cols := ctrl.Dims()
	return &Game{
		ctrl:    ctrl,
		painter: render.NewGridPainter(rows, cols),
		overlay: ui.NewOverlay(rows, cols, scale),
		hud:     ui.NewHUD(ctrl, hudWidth),
		rows:    rows,
		cols:    cols,
		scale:   scale,
	}
}

// Update forwards key presses to the controller.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.ctrl.Quit()
	}
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		g.ctrl.HandleKey(r)
	}
	g.hud.Update(g.cols * g.scale)

	select {
	case <-g.ctrl.Done():
		return ebiten.Termination
	default:
	}
	return nil
}

// Draw renders the latest snapshot.
func (g *Game) Draw(screen *ebiten.Image) {
	g.cells = g.ctrl.Snapshot(g.cells)
	g.painter.Blit(screen, g.cells, g.scale)
	g.overlay.Draw(screen, g.ctrl.State().GridLines())
	g.hud.Draw(screen, g.cols*g.scale, g.rows*g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cols*g.scale + g.hud.Width(), g.rows * g.scale
}

// RunWindow opens a window on ctrl and blocks until it closes.
func RunWindow(ctrl core.Controls, scale int) error {
	game := New(ctrl, scale)
	w, h := game.Layout(0, 0)
	ebiten.SetWindowTitle(fmt.Sprintf("cellsim: %s, %d threads", ctrl.Strategy(), ctrl.State().Workers))
	ebiten.SetWindowSize(w, h)
	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

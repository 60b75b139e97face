//go:build ebiten

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Overlay draws cell borders on top of the grid when the grid-line hint is on.
type Overlay struct {
	rows, cols int
	scale      int
	pixel      *ebiten.Image
	col        color.RGBA
}

// NewOverlay constructs an overlay for a rows x cols grid drawn at scale.
func NewOverlay(rows, cols, scale int) *Overlay {
	o := &Overlay{rows: rows, cols: cols, scale: scale, col: color.RGBA{R: 48, G: 48, B: 56, A: 255}}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Draw renders one-pixel grid lines when enabled. Scales below 3 leave no
// room for a visible cell body, so nothing is drawn.
func (o *Overlay) Draw(screen *ebiten.Image, enabled bool) {
	if !enabled || o.scale < 3 {
		return
	}
	w := float64(o.cols * o.scale)
	h := float64(o.rows * o.scale)
	for c := 1; c < o.cols; c++ {
		x := float64(c * o.scale)
		o.drawRect(screen, x, 0, 1, h)
	}
	for r := 1; r < o.rows; r++ {
		y := float64(r * o.scale)
		o.drawRect(screen, 0, y, w, 1)
	}
}

func (o *Overlay) drawRect(screen *ebiten.Image, x, y, w, h float64) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(o.col)
	screen.DrawImage(o.pixel, op)
}

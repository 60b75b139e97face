package render

import (
	"image"
	"image/color"

	"cellsim/pkg/rules"
)

// Palette maps a cell state to its color: dead, then ages 1 through
// rules.MaxAge.
var Palette = [rules.NbColors]color.RGBA{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 0, G: 255, B: 0, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
}

// ColorOf returns the palette entry for state, clamping out-of-range values
// to the last entry.
func ColorOf(state uint32) color.RGBA {
	if int(state) >= len(Palette) {
		return Palette[len(Palette)-1]
	}
	return Palette[state]
}

// fillPaletteRGBA converts cell values into RGBA pixels using the palette.
func fillPaletteRGBA(buf []byte, cells []uint32) {
	for i, c := range cells {
		base := i * 4
		col := ColorOf(c)
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Image renders cells as an RGBA image with each cell drawn as a
// scale x scale block. When gridLines is set the last pixel row and column of
// every block are darkened.
func Image(cells []uint32, rows, cols, scale int, gridLines bool) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, cols*scale, rows*scale))
	if scale == 1 && !gridLines {
		fillPaletteRGBA(img.Pix, cells)
		return img
	}
	line := color.RGBA{R: 48, G: 48, B: 56, A: 255}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			col := ColorOf(cells[r*cols+c])
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					px := col
					if gridLines && scale > 1 && (dx == scale-1 || dy == scale-1) {
						px = line
					}
					img.SetRGBA(c*scale+dx, r*scale+dy, px)
				}
			}
		}
	}
	return img
}

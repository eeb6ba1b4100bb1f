// Package quantize turns scaled source pixels into grids of palette colors.
// It holds the scaling stage, the nearest-color threshold quantizer and the
// error-diffusion quantizer, each buffering its last results until cleared.
package quantize

import (
	"image"
	"sync/atomic"

	"github.com/setanarut/snotmosaic/palette"
)

var generation atomic.Uint64

// NextGeneration returns a process-wide unique, increasing number. Every
// freshly computed Grid carries one, so consumers can tell grids apart
// without comparing content or pointers.
func NextGeneration() uint64 {
	return generation.Add(1)
}

// A Grid is a W×H raster of palette colors at stud resolution.
type Grid struct {
	W, H   int
	Colors []palette.Color // len = W*H, row major
	Gen    uint64
}

// NewGrid returns a W×H grid with a new generation number.
func NewGrid(w, h int) *Grid {
	return &Grid{
		W:      w,
		H:      h,
		Colors: make([]palette.Color, w*h),
		Gen:    NextGeneration(),
	}
}

// Row returns row y. The slice aliases the grid.
func (g *Grid) Row(y int) []palette.Color {
	return g.Colors[y*g.W : (y+1)*g.W]
}

func (g *Grid) At(x, y int) palette.Color {
	return g.Colors[y*g.W+x]
}

func (g *Grid) Set(x, y int, c palette.Color) {
	g.Colors[y*g.W+x] = c
}

// Image renders the grid one pixel per stud.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.W, g.H))
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			img.SetRGBA(x, y, g.Colors[y*g.W+x].RGB)
		}
	}
	return img
}

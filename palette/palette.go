// Package palette holds the buildable colors a mosaic is quantized to, the
// perceptual distance between a sample and a palette color, and the usage
// counting used by legends and instructions.
package palette

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// A Color is one buildable color. ID is stable across palette reloads and is
// dense enough to address a counting table of MaxID()+1 entries.
type Color struct {
	ID    int
	Name  string
	Short string // optional short label, defaults to the id
	RGB   color.RGBA
}

// New returns an opaque palette color.
func New(id int, name string, r, g, b uint8) Color {
	return Color{ID: id, Name: name, RGB: color.RGBA{R: r, G: g, B: b, A: 0xff}}
}

// Identifier is the short string drawn on top of a stud of this color.
func (c Color) Identifier() string {
	if c.Short != "" {
		return c.Short
	}
	return strconv.Itoa(c.ID)
}

func (c Color) String() string {
	return fmt.Sprintf("%d,#%02x%02x%02x", c.ID, c.RGB.R, c.RGB.G, c.RGB.B)
}

// Colorful returns c in go-colorful's [0,1] RGB space.
func (c Color) Colorful() colorful.Color {
	return fromRGBA(c.RGB)
}

func fromRGBA(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// A Palette is an ordered list of buildable colors.
type Palette []Color

// MaxID returns the largest color id, or -1 for an empty palette.
func (p Palette) MaxID() int {
	m := -1
	for _, c := range p {
		m = max(m, c.ID)
	}
	return m
}

// ByID returns the color with the given id.
func (p Palette) ByID(id int) (Color, bool) {
	i := slices.IndexFunc(p, func(c Color) bool { return c.ID == id })
	if i < 0 {
		return Color{}, false
	}
	return p[i], true
}

// Equal reports whether p and q hold the same colors in the same order.
func (p Palette) Equal(q Palette) bool {
	return slices.Equal(p, q)
}

// Clone returns a copy of p that shares no backing array with it.
func (p Palette) Clone() Palette {
	return slices.Clone(p)
}

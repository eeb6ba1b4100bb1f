package snotmosaic

import (
	"image"

	"github.com/setanarut/snotmosaic/palette"
	"github.com/setanarut/snotmosaic/quantize"
)

// InstructionsBuilder receives one call per stud, in raster order.
// Add is used for studs of normally built blocks, AddSideways for sideways
// ones; x and y are stud coordinates in the respective orientation.
type InstructionsBuilder interface {
	Add(id, x, y int, c palette.Color)
	AddSideways(id, x, y int, c palette.Color)
}

// Instruction is a single placed stud.
type Instruction struct {
	ID, X, Y int
	Sideways bool
	Color    palette.Color
}

// Instructions collects builder calls into a slice.
type Instructions []Instruction

func (l *Instructions) Add(id, x, y int, c palette.Color) {
	*l = append(*l, Instruction{ID: id, X: x, Y: y, Color: c})
}

func (l *Instructions) AddSideways(id, x, y int, c palette.Color) {
	*l = append(*l, Instruction{ID: id, X: x, Y: y, Sideways: true, Color: c})
}

// ready returns the complete choices or ErrIncomplete.
func (e *Engine) ready() (*Choices, error) {
	if e.choices == nil || !e.choices.Complete() {
		return nil, ErrIncomplete
	}
	return e.choices, nil
}

// clip limits a window in block coordinates to the choices.
func (c *Choices) clip(window image.Rectangle) image.Rectangle {
	return window.Intersect(image.Rect(0, 0, c.W, c.H))
}

// eachStud visits the studs of block (bx, by) in row then column order.
func (e *Engine) eachStud(bx, by int, f func(normal bool, stud image.Point, c palette.Color)) {
	normal := e.choices.Normal(bx, by)
	o := orientationOf(normal)
	g := e.sideways
	if normal {
		g = e.normal
	}
	for j := 0; j < o.rows; j++ {
		row := g.Row(by*o.rows + j)
		for i := 0; i < o.cols; i++ {
			f(normal, o.stud(bx, by, i, j), row[bx*o.cols+i])
		}
	}
}

// BuildInstructions emits every stud of the blocks inside window (in block
// coordinates), blocks left to right and top to bottom. Ids start at 0.
func (e *Engine) BuildInstructions(b InstructionsBuilder, window image.Rectangle) error {
	c, err := e.ready()
	if err != nil {
		return err
	}
	w := c.clip(window)
	id := 0
	for by := w.Min.Y; by < w.Max.Y; by++ {
		for bx := w.Min.X; bx < w.Max.X; bx++ {
			e.eachStud(bx, by, func(normal bool, s image.Point, col palette.Color) {
				if normal {
					b.Add(id, s.X, s.Y, col)
				} else {
					b.AddSideways(id, s.X, s.Y, col)
				}
				id++
			})
		}
	}
	return nil
}

// Counts tallies the stud colors of the blocks inside window, visiting each
// stud once. Colors that do not occur are left out.
func (e *Engine) Counts(window image.Rectangle) ([]palette.Counting, error) {
	c, err := e.ready()
	if err != nil {
		return nil, err
	}
	w := c.clip(window)
	k := palette.NewCounter(e.MaxID)
	for by := w.Min.Y; by < w.Max.Y; by++ {
		for bx := w.Min.X; bx < w.Max.X; bx++ {
			e.eachStud(bx, by, func(_ bool, _ image.Point, col palette.Color) {
				k.Add(col)
			})
		}
	}
	return k.Counts(), nil
}

// UsedColorCounts tallies the whole canvas. It is empty before the first
// complete Select.
func (e *Engine) UsedColorCounts() []palette.Counting {
	if e.choices == nil {
		return nil
	}
	cc, err := e.Counts(image.Rect(0, 0, e.choices.W, e.choices.H))
	if err != nil {
		return nil
	}
	return cc
}

// gridInstructions emits the studs of a single-orientation grid inside
// window (in stud coordinates) with Add.
func gridInstructions(g *quantize.Grid, b InstructionsBuilder, window image.Rectangle) {
	w := window.Intersect(image.Rect(0, 0, g.W, g.H))
	id := 0
	for y := w.Min.Y; y < w.Max.Y; y++ {
		row := g.Row(y)
		for x := w.Min.X; x < w.Max.X; x++ {
			b.Add(id, x, y, row[x])
			id++
		}
	}
}

func gridCounts(g *quantize.Grid, window image.Rectangle, maxID int) []palette.Counting {
	w := window.Intersect(image.Rect(0, 0, g.W, g.H))
	k := palette.NewCounter(maxID)
	for y := w.Min.Y; y < w.Max.Y; y++ {
		row := g.Row(y)
		for x := w.Min.X; x < w.Max.X; x++ {
			k.Add(row[x])
		}
	}
	return k.Counts()
}

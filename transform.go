// Package snotmosaic turns raster images into buildable brick mosaics. A
// Transform quantizes the source to a palette at the stud resolution of a
// construction type and, for SNOT blocks, picks per 10×10 block whether the
// normal or the sideways build reproduces the image better.
package snotmosaic

import (
	"fmt"
	"image"

	"github.com/setanarut/snotmosaic/palette"
	"github.com/setanarut/snotmosaic/quantize"
)

type Transform struct {
	width, height int
	typ           Type

	lookup    *palette.Lookup
	dither    *quantize.Dither
	threshold *quantize.Threshold

	brickFromTop          *quantize.Scaler
	brickFromSide         *quantize.Scaler
	plateFromSide         *quantize.Scaler
	verticalPlateFromSide *quantize.Scaler
	snotOutput            *quantize.Scaler
	r                     *quantize.Scaler

	engine   *Engine
	grid     *quantize.Grid // last stud grid of a non-SNOT type
	gridImg  *image.RGBA
	progress quantize.Progress
}

// New returns a Transform quantizing to colors with the given options.
func New(colors palette.Palette, opt Options) (*Transform, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if len(colors) == 0 {
		return nil, palette.ErrEmptyPalette
	}
	lookup := palette.NewLookup(colors)
	t := &Transform{
		typ:                   opt.Type,
		lookup:                lookup,
		dither:                quantize.NewDither(lookup, opt.PropagationPercentage),
		threshold:             quantize.NewThreshold(lookup),
		brickFromTop:          quantize.NewScaler("Construct from top", opt.Quality),
		brickFromSide:         quantize.NewScaler("Construct bricks from side", opt.Quality),
		plateFromSide:         quantize.NewScaler("Construct plates from side", opt.Quality),
		verticalPlateFromSide: quantize.NewScaler("Construct vertical plates from side", opt.Quality),
		snotOutput:            quantize.NewScaler("SNOT output", opt.Quality),
		r:                     quantize.NewScaler("To correct construction scale", quantize.RetainColors),
		engine:                NewEngine(),
	}
	t.engine.Workers = opt.Workers
	t.engine.MaxID = colors.MaxID()
	t.SetBasicUnitSize(opt.Width, opt.Height)
	return t, nil
}

func (t *Transform) Engine() *Engine { return t.engine }

func (t *Transform) Type() Type { return t.typ }

// SetType switches the construction type. Already committed results are
// kept until the next Apply.
func (t *Transform) SetType(typ Type) {
	t.typ = typ
}

// SetProgress sets the sink polled by the quantizers and the SNOT engine.
func (t *Transform) SetProgress(p quantize.Progress) {
	t.progress = p
}

// MainQuantizer is the dithering quantizer, or the threshold quantizer when
// the propagation percentage is 0.
func (t *Transform) MainQuantizer() quantize.Quantizer {
	if t.dither.PropagationPercentage() == 0 {
		return t.threshold
	}
	return t.dither
}

func (t *Transform) PropagationPercentage() int {
	return t.dither.PropagationPercentage()
}

// SetPropagationPercentage changes the dithering strength. A change breaks
// the pipeline, so the SNOT output buffer is cleared as well.
func (t *Transform) SetPropagationPercentage(pp int) {
	if t.dither.SetPropagationPercentage(pp) {
		Logf("snotmosaic: propagation %d%%, clearing buffers", t.dither.PropagationPercentage())
		t.clearSnotOutput()
	}
}

// SetColors replaces the palette. It returns false when colors equals the
// active palette; otherwise every buffered grid is dropped.
func (t *Transform) SetColors(colors palette.Palette) bool {
	if !t.lookup.SetColors(colors) {
		return false
	}
	Logf("snotmosaic: palette of %d colors, clearing buffers", len(colors))
	t.engine.MaxID = colors.MaxID()
	t.clearSnotOutput()
	t.dither.ClearBuffer()
	t.threshold.ClearBuffer()
	return true
}

func (t *Transform) Colors() palette.Palette {
	return t.lookup.Colors()
}

func (t *Transform) clearSnotOutput() {
	t.snotOutput.ClearBuffer()
	t.engine.Invalidate()
}

// SetBasicUnitSize sets the canvas size in pixels. Scalers whose target size
// changes drop their buffers.
func (t *Transform) SetBasicUnitSize(width, height int) {
	if width != t.width || height != t.height {
		t.engine.Invalidate()
	}
	t.width = width
	t.height = height
	t.snotOutput.SetWidth(width)
	t.snotOutput.SetHeight(height)
}

// BasicUnitSize is width×height for SNOT blocks and the number of units
// across and down for the other types.
func (t *Transform) BasicUnitSize() image.Point {
	if t.typ == SnotBlock {
		return image.Pt(t.width, t.height)
	}
	return image.Pt(t.width/t.typ.UnitWidth(), t.height/t.typ.UnitHeight())
}

// TransformedSize is the size of the image Apply returns: the basic unit
// size in pixels, whatever the input size.
func (t *Transform) TransformedSize(in image.Point) image.Point {
	if t.width == 0 || t.height == 0 {
		return in
	}
	return image.Pt(t.width, t.height)
}

func (t *Transform) SnotOutputScaler() *quantize.Scaler {
	return t.snotOutput
}

func (t *Transform) BrickFromTopScaler(studsW, studsH int) *quantize.Scaler {
	t.brickFromTop.SetWidth(t.width / (BrickWidth * studsW))
	t.brickFromTop.SetHeight(t.height / (BrickWidth * studsH))
	return t.brickFromTop
}

func (t *Transform) BrickFromSideScaler(studs int) *quantize.Scaler {
	t.brickFromSide.SetWidth(t.width / (BrickWidth * studs))
	t.brickFromSide.SetHeight(t.height / BrickHeight)
	return t.brickFromSide
}

func (t *Transform) PlateFromSideScaler(studs int) *quantize.Scaler {
	t.plateFromSide.SetWidth(t.width / (BrickWidth * studs))
	t.plateFromSide.SetHeight(t.height / PlateHeight)
	return t.plateFromSide
}

func (t *Transform) VerticalPlateFromSideScaler() *quantize.Scaler {
	t.verticalPlateFromSide.SetWidth(t.width / PlateHeight)
	t.verticalPlateFromSide.SetHeight(t.height / BrickWidth)
	return t.verticalPlateFromSide
}

// RScaler scales stud grids back up to the basic unit size.
func (t *Transform) RScaler() *quantize.Scaler {
	t.r.SetWidth(t.width)
	t.r.SetHeight(t.height)
	return t.r
}

// Apply runs the pipeline of the active construction type on src and returns
// the mosaic at the basic unit size. For SNOT blocks the returned image is
// the SNOT output buffer with the chosen builds painted in; it is reused,
// unchanged, while nothing upstream changes.
func (t *Transform) Apply(src image.Image) (*image.RGBA, error) {
	switch t.typ {
	case SnotBlock:
		return t.applySnot(src)
	case TopStuds:
		return t.applyGrid(src, t.BrickFromTopScaler(1, 1))
	case SideBricks:
		return t.applyGrid(src, t.BrickFromSideScaler(1))
	case SidePlates:
		return t.applyGrid(src, t.PlateFromSideScaler(1))
	case VerticalSidePlates:
		return t.applyGrid(src, t.VerticalPlateFromSideScaler())
	}
	return nil, fmt.Errorf("invalid construction type %d", int(t.typ))
}

func (t *Transform) applySnot(src image.Image) (*image.RGBA, error) {
	if err := checkBlocks(t.width, t.height); err != nil {
		return nil, err
	}
	q := t.MainQuantizer()
	normal, err := q.Quantize(t.PlateFromSideScaler(1).Scale(src), t.progress)
	if err != nil {
		return nil, fmt.Errorf("quantize normal build: %w", err)
	}
	sideways, err := q.Quantize(t.VerticalPlateFromSideScaler().Scale(src), t.progress)
	if err != nil {
		return nil, fmt.Errorf("quantize sideways build: %w", err)
	}
	out := t.snotOutput.Scale(src)
	if err := t.engine.Select(normal, sideways, out, t.width, t.height, t.progress); err != nil {
		// The buffer holds a partial commit; make the next call start over.
		t.snotOutput.ClearBuffer()
		return out, err
	}
	return out, nil
}

func (t *Transform) applyGrid(src image.Image, s *quantize.Scaler) (*image.RGBA, error) {
	g, err := t.MainQuantizer().Quantize(s.Scale(src), t.progress)
	if err != nil {
		return nil, fmt.Errorf("quantize %s: %w", t.typ, err)
	}
	if t.grid == nil || t.grid.Gen != g.Gen {
		t.grid = g
		t.gridImg = g.Image()
	}
	return t.RScaler().Scale(t.gridImg), nil
}

// Grid returns the stud grid of the last non-SNOT Apply.
func (t *Transform) Grid() *quantize.Grid {
	return t.grid
}

// UsedColorCounts tallies the studs of the last Apply of the active type.
func (t *Transform) UsedColorCounts() []palette.Counting {
	if t.typ == SnotBlock {
		return t.engine.UsedColorCounts()
	}
	if t.grid == nil {
		return nil
	}
	return gridCounts(t.grid, image.Rect(0, 0, t.grid.W, t.grid.H), t.lookup.Colors().MaxID())
}

// BuildInstructions emits the studs inside bounds: block coordinates for
// SNOT blocks, unit coordinates otherwise.
func (t *Transform) BuildInstructions(b InstructionsBuilder, bounds image.Rectangle) error {
	if t.typ == SnotBlock {
		return t.engine.BuildInstructions(b, bounds)
	}
	if t.grid == nil {
		return ErrIncomplete
	}
	gridInstructions(t.grid, b, bounds)
	return nil
}

// Draw lays out the studs inside window (coordinates as for
// BuildInstructions) on a toSize canvas.
func (t *Transform) Draw(window image.Rectangle, toSize image.Point, opt DrawOptions) ([]Command, []palette.Counting, error) {
	if t.typ == SnotBlock {
		unit := image.Pt(t.typ.UnitWidth(), t.typ.UnitHeight())
		return t.engine.Draw(window, unit, toSize, opt)
	}
	if t.grid == nil {
		return nil, nil, ErrIncomplete
	}
	cmds, counts := drawGrid(t.grid, window, toSize, t.lookup.Colors().MaxID(), opt)
	return cmds, counts, nil
}

// DrawAll lays out the whole canvas.
func (t *Transform) DrawAll(toSize image.Point, opt DrawOptions) ([]Command, []palette.Counting, error) {
	u := t.BasicUnitSize()
	if t.typ == SnotBlock {
		u = u.Div(SnotBlockWidth)
	}
	return t.Draw(image.Rectangle{Max: u}, toSize, opt)
}

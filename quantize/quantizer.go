package quantize

import (
	"image"
	"image/color"

	"github.com/setanarut/snotmosaic/palette"
)

// A Quantizer maps every pixel of src to a palette color. Implementations
// buffer their results per source image; ClearBuffer forces recomputation.
type Quantizer interface {
	Quantize(src *image.RGBA, p Progress) (*Grid, error)
	ClearBuffer()
}

// maxBuffered bounds the number of sources a quantizer remembers. The brick
// transforms feed at most two scaled images per recompute.
const maxBuffered = 4

type bufferEntry struct {
	paletteGen uint64
	grid       *Grid
}

type buffer map[*image.RGBA]bufferEntry

func (b *buffer) get(src *image.RGBA, paletteGen uint64) *Grid {
	e, ok := (*b)[src]
	if !ok || e.paletteGen != paletteGen {
		return nil
	}
	return e.grid
}

func (b *buffer) put(src *image.RGBA, paletteGen uint64, g *Grid) {
	if *b == nil || len(*b) >= maxBuffered {
		*b = make(buffer, maxBuffered)
	}
	(*b)[src] = bufferEntry{paletteGen: paletteGen, grid: g}
}

func (b *buffer) clear() {
	*b = nil
}

func rgbaAt(src *image.RGBA, x, y int) color.RGBA {
	c := src.RGBAAt(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	c.A = 0xff
	return c
}

// Threshold snaps each pixel to its nearest palette color without
// propagating any error.
type Threshold struct {
	lookup *palette.Lookup
	buf    buffer
}

func NewThreshold(l *palette.Lookup) *Threshold {
	return &Threshold{lookup: l}
}

func (t *Threshold) ClearBuffer() {
	t.buf.clear()
}

func (t *Threshold) Quantize(src *image.RGBA, p Progress) (*Grid, error) {
	gen := t.lookup.Generation()
	if g := t.buf.get(src, gen); g != nil {
		return g, nil
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		if !Running(p) {
			return nil, ErrCanceled
		}
		row := g.Row(y)
		for x := 0; x < w; x++ {
			row[x] = t.lookup.Nearest(rgbaAt(src, x, y))
		}
		Report(p, float64(y+1)/float64(h))
	}
	t.buf.put(src, gen, g)
	return g, nil
}

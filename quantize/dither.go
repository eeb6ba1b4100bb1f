package quantize

import (
	"image"
	"image/color"

	"github.com/setanarut/snotmosaic/palette"
)

// Dither is a Floyd-Steinberg quantizer whose diffused error is scaled by a
// propagation percentage. At 0 it behaves like Threshold.
type Dither struct {
	lookup *palette.Lookup
	pp     int
	buf    buffer
}

func NewDither(l *palette.Lookup, propagationPercentage int) *Dither {
	return &Dither{lookup: l, pp: clampPercentage(propagationPercentage)}
}

func clampPercentage(pp int) int {
	return max(0, min(100, pp))
}

func (d *Dither) PropagationPercentage() int {
	return d.pp
}

// SetPropagationPercentage sets the error propagation strength, clamped to
// [0,100]. It returns false when the value is unchanged; otherwise the
// buffer is cleared.
func (d *Dither) SetPropagationPercentage(pp int) bool {
	pp = clampPercentage(pp)
	if pp == d.pp {
		return false
	}
	d.pp = pp
	d.ClearBuffer()
	return true
}

func (d *Dither) ClearBuffer() {
	d.buf.clear()
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func (d *Dither) Quantize(src *image.RGBA, p Progress) (*Grid, error) {
	gen := d.lookup.Generation()
	if g := d.buf.get(src, gen); g != nil {
		return g, nil
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()

	// Interleaved RGB working copy that accumulates diffused error.
	pix := make([]float32, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := rgbaAt(src, x, y)
			off := pixOffset(w, x, y)
			pix[off] = float32(c.R)
			pix[off+1] = float32(c.G)
			pix[off+2] = float32(c.B)
		}
	}

	f := float32(d.pp) / 100
	spread := func(x, y int, er, eg, eb, weight float32) {
		if x < 0 || x >= w || y >= h {
			return
		}
		off := pixOffset(w, x, y)
		pix[off] += er * weight
		pix[off+1] += eg * weight
		pix[off+2] += eb * weight
	}

	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		if !Running(p) {
			return nil, ErrCanceled
		}
		row := g.Row(y)
		for x := 0; x < w; x++ {
			off := pixOffset(w, x, y)
			sample := color.RGBA{
				R: clamp255(pix[off]),
				G: clamp255(pix[off+1]),
				B: clamp255(pix[off+2]),
				A: 0xff,
			}
			c := d.lookup.Nearest(sample)
			row[x] = c
			if f == 0 {
				continue
			}
			er := (pix[off] - float32(c.RGB.R)) * f
			eg := (pix[off+1] - float32(c.RGB.G)) * f
			eb := (pix[off+2] - float32(c.RGB.B)) * f
			spread(x+1, y, er, eg, eb, 7.0/16)
			spread(x-1, y+1, er, eg, eb, 3.0/16)
			spread(x, y+1, er, eg, eb, 5.0/16)
			spread(x+1, y+1, er, eg, eb, 1.0/16)
		}
		Report(p, float64(y+1)/float64(h))
	}
	d.buf.put(src, gen, g)
	return g, nil
}

func clamp255(v float32) uint8 {
	return uint8(max(0, min(255, v+0.5)))
}

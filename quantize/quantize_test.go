package quantize

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setanarut/snotmosaic/palette"
)

var (
	black = palette.New(0, "Black", 0, 0, 0)
	white = palette.New(15, "White", 255, 255, 255)
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

type stopAfter struct {
	n       int
	reports []float64
}

func (s *stopAfter) Running() bool {
	s.n--
	return s.n >= 0
}

func (s *stopAfter) Report(done float64) {
	s.reports = append(s.reports, done)
}

func TestGrid(t *testing.T) {
	t.Parallel()
	g := NewGrid(3, 2)
	h := NewGrid(3, 2)
	assert.Greater(t, h.Gen, g.Gen)

	g.Set(2, 1, white)
	assert.Equal(t, white, g.At(2, 1))
	assert.Equal(t, []palette.Color{{}, {}, white}, g.Row(1))

	img := g.Image()
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, white.RGB, img.RGBAAt(2, 1))
}

func TestScaler(t *testing.T) {
	t.Parallel()
	s := NewScaler("test", RetainColors)
	s.SetWidth(4)
	s.SetHeight(2)
	assert.Equal(t, image.Pt(4, 2), s.Size())

	src := uniform(8, 4, color.RGBA{R: 10, G: 20, B: 30, A: 0xff})
	out := s.Scale(src)
	require.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xff}, out.RGBAAt(3, 1))

	assert.Same(t, out, s.Scale(src), "unchanged source must be buffered")
	s.SetWidth(4)
	assert.Same(t, out, s.Scale(src), "same width must keep the buffer")

	s.ClearBuffer()
	assert.NotSame(t, out, s.Scale(src))

	s.SetWidth(2)
	assert.Equal(t, image.Rect(0, 0, 2, 2), s.Scale(src).Bounds())
}

func TestScalerSmooth(t *testing.T) {
	t.Parallel()
	s := NewScaler("smooth", Smooth)
	s.SetWidth(5)
	s.SetHeight(5)
	out := s.Scale(uniform(20, 20, color.RGBA{R: 200, G: 100, B: 50, A: 0xff}))
	c := out.RGBAAt(2, 2)
	assert.InDelta(t, 200, int(c.R), 1)
	assert.InDelta(t, 100, int(c.G), 1)
	assert.InDelta(t, 50, int(c.B), 1)
	assert.Equal(t, uint8(0xff), c.A)
	assert.Equal(t, "smooth", s.Quality.String())
}

func TestThreshold(t *testing.T) {
	t.Parallel()
	l := palette.NewLookup(palette.Palette{black, white})
	q := NewThreshold(l)
	src := uniform(4, 3, color.RGBA{R: 30, G: 30, B: 30, A: 0xff})
	src.SetRGBA(1, 2, color.RGBA{R: 220, G: 220, B: 220, A: 0xff})

	g, err := q.Quantize(src, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, g.W)
	assert.Equal(t, 3, g.H)
	assert.Equal(t, black, g.At(0, 0))
	assert.Equal(t, white, g.At(1, 2))

	again, err := q.Quantize(src, nil)
	require.NoError(t, err)
	assert.Same(t, g, again)

	l.SetColors(palette.Palette{white})
	swapped, err := q.Quantize(src, nil)
	require.NoError(t, err)
	assert.NotEqual(t, g.Gen, swapped.Gen, "palette swap must recompute")
	assert.Equal(t, white, swapped.At(0, 0))

	q.ClearBuffer()
	cleared, err := q.Quantize(src, nil)
	require.NoError(t, err)
	assert.NotEqual(t, swapped.Gen, cleared.Gen)
}

func TestThresholdProgress(t *testing.T) {
	t.Parallel()
	q := NewThreshold(palette.NewLookup(palette.Palette{black}))
	src := uniform(2, 4, color.RGBA{A: 0xff})

	p := &stopAfter{n: 2}
	_, err := q.Quantize(src, p)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.Equal(t, []float64{0.25, 0.5}, p.reports)

	p = &stopAfter{n: 100}
	_, err = q.Quantize(src, p)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, p.reports)
}

func TestDither(t *testing.T) {
	t.Parallel()
	l := palette.NewLookup(palette.Palette{black, white})
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 0xff}
	src := uniform(10, 10, gray)

	flat, err := NewDither(l, 0).Quantize(src, nil)
	require.NoError(t, err)
	thr, err := NewThreshold(l).Quantize(src, nil)
	require.NoError(t, err)
	assert.Equal(t, thr.Colors, flat.Colors, "zero propagation must equal thresholding")

	d := NewDither(l, 100)
	dithered, err := d.Quantize(src, nil)
	require.NoError(t, err)
	n := 0
	for _, c := range dithered.Colors {
		if c == white {
			n++
		}
	}
	assert.Greater(t, n, 25, "mid gray should dither into a black/white mix")
	assert.Less(t, n, 75)

	assert.False(t, d.SetPropagationPercentage(100))
	again, _ := d.Quantize(src, nil)
	assert.Same(t, dithered, again)

	assert.True(t, d.SetPropagationPercentage(50))
	recomputed, _ := d.Quantize(src, nil)
	assert.NotEqual(t, dithered.Gen, recomputed.Gen)

	assert.True(t, d.SetPropagationPercentage(150))
	assert.Equal(t, 100, d.PropagationPercentage(), "clamped")
}

func TestDitherCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDither(palette.NewLookup(palette.Palette{black}), 100)
	_, err := d.Quantize(uniform(2, 2, color.RGBA{}), ContextProgress{Ctx: ctx})
	assert.ErrorIs(t, err, ErrCanceled)
}

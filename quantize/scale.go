package quantize

import (
	"image"

	"golang.org/x/image/draw"
)

// Quality selects the resampling kernel of a Scaler.
type Quality int

const (
	// RetainColors samples the nearest source pixel, never mixing colors.
	RetainColors Quality = iota
	// Smooth uses Catmull-Rom resampling.
	Smooth
)

func (q Quality) String() string {
	switch q {
	case Smooth:
		return "smooth"
	default:
		return "retain-colors"
	}
}

func (q Quality) scaler() draw.Scaler {
	if q == Smooth {
		return draw.CatmullRom
	}
	return draw.NearestNeighbor
}

// A Scaler resizes images to a fixed target size. The last output is kept
// and returned again while the source and the target size are unchanged.
// Sources are compared by identity, so callers must not modify a source in
// place between calls.
type Scaler struct {
	Name    string
	Quality Quality
	w, h    int
	src     image.Image
	out     *image.RGBA
}

func NewScaler(name string, q Quality) *Scaler {
	return &Scaler{Name: name, Quality: q}
}

// SetWidth sets the target width, clearing the buffer when it changes.
func (s *Scaler) SetWidth(w int) {
	if s.w != w {
		s.w = w
		s.ClearBuffer()
	}
}

// SetHeight sets the target height, clearing the buffer when it changes.
func (s *Scaler) SetHeight(h int) {
	if s.h != h {
		s.h = h
		s.ClearBuffer()
	}
}

// Size is the target size.
func (s *Scaler) Size() image.Point {
	return image.Pt(s.w, s.h)
}

// ClearBuffer forgets the last output, forcing the next Scale to resample.
func (s *Scaler) ClearBuffer() {
	s.src = nil
	s.out = nil
}

// Scale returns src resampled to the target size with an opaque alpha
// channel. The result is owned by the Scaler's buffer: a caller mutating it
// sees its own edits again on the next buffered call.
func (s *Scaler) Scale(src image.Image) *image.RGBA {
	if s.out != nil && s.src == src {
		return s.out
	}
	out := image.NewRGBA(image.Rect(0, 0, max(s.w, 0), max(s.h, 0)))
	if s.w > 0 && s.h > 0 && !src.Bounds().Empty() {
		s.Quality.scaler().Scale(out, out.Bounds(), src, src.Bounds(), draw.Src, nil)
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 0xff
		}
	}
	s.src = src
	s.out = out
	return out
}

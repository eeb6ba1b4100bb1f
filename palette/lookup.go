package palette

import (
	"image/color"
	"math"
	"sync"
)

// Lookup maps arbitrary samples to their nearest palette color. Results are
// memoized per 24-bit RGB value until the palette is replaced.
type Lookup struct {
	mu       sync.RWMutex
	colors   Palette
	cache    map[uint32]Color
	gen      uint64
	distance DistanceFunc
}

// NewLookup returns a Lookup over colors using the CIE94 Distance.
func NewLookup(colors Palette) *Lookup {
	return &Lookup{
		colors:   colors.Clone(),
		cache:    make(map[uint32]Color),
		gen:      1,
		distance: Distance,
	}
}

// SetColors replaces the active palette. It returns false, and keeps the
// memoized results, when colors equals the current palette.
func (l *Lookup) SetColors(colors Palette) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.colors.Equal(colors) {
		return false
	}
	l.colors = colors.Clone()
	l.cache = make(map[uint32]Color)
	l.gen++
	return true
}

// Colors returns a copy of the active palette.
func (l *Lookup) Colors() Palette {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.colors.Clone()
}

// Generation changes every time SetColors replaces the palette.
func (l *Lookup) Generation() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.gen
}

func rgbKey(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Nearest returns the palette color closest to sample. The first of several
// equally close colors wins. An empty palette yields the zero Color.
func (l *Lookup) Nearest(sample color.RGBA) Color {
	key := rgbKey(sample)
	l.mu.RLock()
	c, ok := l.cache[key]
	colors, gen := l.colors, l.gen
	l.mu.RUnlock()
	if ok {
		return c
	}
	if len(colors) == 0 {
		return Color{}
	}

	best := colors[0]
	bestD := math.MaxFloat64
	for _, pc := range colors {
		d := l.distance(pc, sample)
		if d < bestD {
			bestD = d
			best = pc
		}
	}

	l.mu.Lock()
	// The palette may have been swapped while we searched.
	if l.gen == gen {
		l.cache[key] = best
	}
	l.mu.Unlock()
	return best
}

// Convert implements color.Model, snapping c to the nearest palette color.
func (l *Lookup) Convert(c color.Color) color.Color {
	r, g, b, _ := c.RGBA()
	return l.Nearest(color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}).RGB
}

package palette

import (
	"image/color"
)

// DistanceFunc measures how far a sample is from a palette color. Smaller is
// closer; the result is never negative.
type DistanceFunc func(c Color, sample color.RGBA) float64

// Distance is the CIE94 difference between palette color c and sample, with c
// as the reference color. Alpha is ignored.
func Distance(c Color, sample color.RGBA) float64 {
	return c.Colorful().DistanceCIE94(fromRGBA(sample))
}

// Luminance is the Rec. 601 luma of c in [0,255].
func Luminance(c color.RGBA) float64 {
	return float64(luma1000(c)) / 1000
}

// luma1000 is 1000 times the luma, kept integral so the 128 boundary is exact.
func luma1000(c color.RGBA) int {
	return 299*int(c.R) + 587*int(c.G) + 114*int(c.B)
}

// IsDark reports whether c has a luma below 128.
func IsDark(c color.RGBA) bool {
	return luma1000(c) < 128*1000
}

var (
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	black = color.RGBA{A: 0xff}
)

// LabelColor returns the text color readable on top of a fill of c: white on
// dark fills, black otherwise.
func LabelColor(c color.RGBA) color.RGBA {
	if IsDark(c) {
		return white
	}
	return black
}

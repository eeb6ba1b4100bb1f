package utils

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/setanarut/snotmosaic"
)

// RenderCommands rasterizes draw commands onto a size canvas. Labels are set
// in the 7×13 basic font and scaled to their font size.
func RenderCommands(cmds []snotmosaic.Command, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	for _, c := range cmds {
		switch c.Kind {
		case snotmosaic.FillRect:
			draw.Draw(dst, c.Rect, image.NewUniform(c.Color), image.Point{}, draw.Src)
		case snotmosaic.StrokeRect:
			strokeRect(dst, c.Rect, c.Color)
		case snotmosaic.FillCircle:
			circle(dst, c.Rect, c.Color, false)
		case snotmosaic.StrokeCircle:
			circle(dst, c.Rect, c.Color, true)
		case snotmosaic.Label:
			label(dst, c)
		}
	}
	return dst
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, c)
		dst.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, c)
		dst.SetRGBA(r.Max.X-1, y, c)
	}
}

// circle fills, or outlines with a one pixel ring, the circle inscribed in r.
func circle(dst *image.RGBA, r image.Rectangle, c color.RGBA, ring bool) {
	rad := float64(min(r.Dx(), r.Dy())) / 2
	if rad <= 0 {
		return
	}
	cx := float64(r.Min.X) + float64(r.Dx())/2
	cy := float64(r.Min.Y) + float64(r.Dy())/2
	inner := (rad - 1) * (rad - 1)
	outer := rad * rad
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			d2 := dx*dx + dy*dy
			if d2 > outer || ring && d2 < inner {
				continue
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

func label(dst *image.RGBA, c snotmosaic.Command) {
	if c.Text == "" || c.FontSize <= 0 {
		return
	}
	face := basicfont.Face7x13
	m := face.Metrics()
	d := &font.Drawer{Face: face}
	advance := d.MeasureString(c.Text)
	textH := (m.Ascent + m.Descent).Ceil()
	tmp := image.NewRGBA(image.Rect(0, 0, advance.Ceil(), textH))
	d.Dst = tmp
	d.Src = image.NewUniform(c.Color)
	d.Dot = fixed.Point26_6{X: 0, Y: m.Ascent}
	d.DrawString(c.Text)

	// Scale so the text height matches the font size, centered on At.
	scale := float64(c.FontSize) / float64(textH)
	w := int(float64(tmp.Rect.Dx()) * scale)
	h := c.FontSize
	at := c.At.Sub(image.Pt(w/2, h/2))
	draw.ApproxBiLinear.Scale(dst, image.Rect(0, 0, w, h).Add(at), tmp, tmp.Bounds(), draw.Over, nil)
}

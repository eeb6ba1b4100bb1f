package snotmosaic

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/setanarut/snotmosaic/palette"
	"github.com/setanarut/snotmosaic/quantize"
)

type CommandKind int

const (
	FillRect CommandKind = iota
	StrokeRect
	FillCircle   // circle inscribed in Rect
	StrokeCircle // outline of the circle inscribed in Rect
	Label        // Text centered on At
)

// Command is one abstract drawing step. Rasterizing it is up to the caller.
type Command struct {
	Kind     CommandKind
	Rect     image.Rectangle
	Color    color.RGBA
	Text     string
	At       image.Point
	FontSize int
}

type DrawOptions struct {
	// Instructions selects print mode: black background and smaller labels.
	// Otherwise the viewport mode with a white background is used.
	Instructions bool
	// Outlines frames the canvas and rings every stud.
	Outlines bool
	// Labels puts the color identifier on every stud.
	Labels bool
	// Identifier overrides palette.Color.Identifier for labels.
	Identifier func(palette.Color) string
}

func (o DrawOptions) identifier(c palette.Color) string {
	if o.Identifier != nil {
		return o.Identifier(c)
	}
	return c.Identifier()
}

var (
	black = color.RGBA{A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

func background(toSize image.Point, opt DrawOptions) []Command {
	bg := white
	if opt.Instructions {
		bg = black
	}
	canvas := image.Rectangle{Max: toSize}
	cmds := []Command{{Kind: FillRect, Rect: canvas, Color: bg}}
	if opt.Outlines {
		cmds = append(cmds, Command{Kind: StrokeRect, Rect: canvas, Color: black})
	}
	return cmds
}

// studCommands draws one stud whose cell starts at (x, y) and is w×h.
func studCommands(cmds []Command, x, y, w, h int, c palette.Color, fontSize int, opt DrawOptions) []Command {
	cx := float64(x) + float64(w)/2
	cy := float64(y) + float64(h)/2
	d := int(float64(min(w, h)) * 0.90)
	cr := image.Rect(0, 0, d, d).Add(image.Pt(int(cx-float64(d/2)), int(cy-float64(d/2))))
	cmds = append(cmds, Command{Kind: FillCircle, Rect: cr, Color: c.RGB})
	if opt.Outlines {
		cmds = append(cmds, Command{Kind: StrokeCircle, Rect: cr, Color: white})
	}
	if opt.Labels {
		cmds = append(cmds, Command{
			Kind:     Label,
			Text:     opt.identifier(c),
			At:       image.Pt(int(cx), int(cy)),
			FontSize: fontSize,
			Color:    palette.LabelColor(c.RGB),
		})
	}
	return cmds
}

// Draw lays out the blocks inside window (block coordinates) on a canvas of
// toSize pixels and returns the draw commands with the usage counts of the
// window. blockSize is the unit size of the active construction type and
// must be 10×10.
func (e *Engine) Draw(window image.Rectangle, blockSize, toSize image.Point, opt DrawOptions) ([]Command, []palette.Counting, error) {
	if blockSize != image.Pt(SnotBlockWidth, SnotBlockWidth) {
		return nil, nil, fmt.Errorf("block %dx%d: %w", blockSize.X, blockSize.Y, ErrBlockSize)
	}
	c, err := e.ready()
	if err != nil {
		return nil, nil, err
	}
	if window.Dx() <= 0 || window.Dy() <= 0 {
		return background(toSize, opt), nil, nil
	}
	scaleW := float64(toSize.X) / float64(window.Dx())
	scaleH := float64(toSize.Y) / float64(window.Dy())
	fontSize := int(min(scaleW, scaleH) / 5)
	if opt.Instructions {
		fontSize = int(min(scaleW, scaleH) * 0.15)
	}

	cmds := background(toSize, opt)
	k := palette.NewCounter(e.MaxID)
	clipped := c.clip(window)
	for by := clipped.Min.Y; by < clipped.Max.Y; by++ {
		for bx := clipped.Min.X; bx < clipped.Max.X; bx++ {
			x, y := float64(bx-window.Min.X), float64(by-window.Min.Y)
			e.eachStud(bx, by, func(normal bool, s image.Point, col palette.Color) {
				o := orientationOf(normal)
				i, j := s.X-o.cols*bx, s.Y-o.rows*by
				k.Add(col)
				sx := int(math.Round(scaleW*x + scaleW/float64(o.cols)*float64(i)))
				sy := int(math.Round(scaleH*y + scaleH/float64(o.rows)*float64(j)))
				w := int(1 + scaleW/float64(o.cols))
				h := int(1 + scaleH/float64(o.rows))
				cmds = studCommands(cmds, sx, sy, w, h, col, fontSize, opt)
			})
		}
	}
	return cmds, k.Counts(), nil
}

// drawGrid lays out the studs of a single-orientation grid inside window
// (stud coordinates).
func drawGrid(g *quantize.Grid, window image.Rectangle, toSize image.Point, maxID int, opt DrawOptions) ([]Command, []palette.Counting) {
	cmds := background(toSize, opt)
	if window.Dx() <= 0 || window.Dy() <= 0 {
		return cmds, nil
	}
	scaleW := float64(toSize.X) / float64(window.Dx())
	scaleH := float64(toSize.Y) / float64(window.Dy())
	fontSize := int(min(scaleW, scaleH) * 0.3)
	if opt.Instructions {
		fontSize = int(min(scaleW, scaleH) * 0.4)
	}
	k := palette.NewCounter(maxID)
	clipped := window.Intersect(image.Rect(0, 0, g.W, g.H))
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := g.Row(y)
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			col := row[x]
			k.Add(col)
			sx := int(math.Round(scaleW * float64(x-window.Min.X)))
			sy := int(math.Round(scaleH * float64(y-window.Min.Y)))
			cmds = studCommands(cmds, sx, sy, int(1+scaleW), int(1+scaleH), col, fontSize, opt)
		}
	}
	return cmds, k.Counts()
}

package snotmosaic

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/setanarut/snotmosaic/palette"
	"github.com/setanarut/snotmosaic/quantize"
)

// A block holds ten studs either way: 2 columns × 5 rows of 5×2 pixel studs
// when built normally, 5 columns × 2 rows of 2×5 pixel studs when sideways.
type orientation struct {
	cols, rows   int // studs per block
	studW, studH int // pixels per stud
}

var (
	normalOrientation   = orientation{cols: 2, rows: 5, studW: 5, studH: 2}
	sidewaysOrientation = orientation{cols: 5, rows: 2, studW: 2, studH: 5}
)

func orientationOf(normal bool) orientation {
	if normal {
		return normalOrientation
	}
	return sidewaysOrientation
}

// gridSize is the stud grid covering a width×height pixel area.
func (o orientation) gridSize(width, height int) image.Point {
	return image.Pt(width/o.studW, height/o.studH)
}

// stud returns the stud coordinate of offset (i, j) inside block (bx, by).
func (o orientation) stud(bx, by, i, j int) image.Point {
	return image.Pt(o.cols*bx+i, o.rows*by+j)
}

const (
	undecided uint8 = iota
	chosenNormal
	chosenSideways
)

// Choices records, per 10×10 block, whether the normal build was chosen.
// A grid from an aborted run has undecided cells and Complete() false.
type Choices struct {
	W, H     int // blocks
	cells    []uint8
	complete bool
}

func newChoices(w, h int) *Choices {
	return &Choices{W: w, H: h, cells: make([]uint8, w*h)}
}

// Normal reports whether block (bx, by) is built normally.
func (c *Choices) Normal(bx, by int) bool {
	return c.cells[by*c.W+bx] == chosenNormal
}

// Decided reports whether block (bx, by) has been compared.
func (c *Choices) Decided(bx, by int) bool {
	return c.cells[by*c.W+bx] != undecided
}

// Complete reports whether every block has been decided.
func (c *Choices) Complete() bool {
	return c.complete
}

func (c *Choices) set(bx, by int, normal bool) {
	v := chosenSideways
	if normal {
		v = chosenNormal
	}
	c.cells[by*c.W+bx] = v
}

// Decision is the outcome of comparing both builds over every block.
type Decision struct {
	Choices *Choices
	// Total distance of each build per block, indexed (by, bx).
	NormalCost, SidewaysCost *mat.Dense
}

// Engine picks, per block, the build that best reproduces the source pixels
// and paints the chosen stud colors into the pixel buffer.
type Engine struct {
	// Distance between a stud color and one source pixel.
	Distance palette.DistanceFunc
	// Block rows decided concurrently; below 2 runs sequentially.
	Workers int
	// Counting tables are presized for ids up to MaxID.
	MaxID int

	key      [2]uint64
	keyed    bool
	choices  *Choices
	normal   *quantize.Grid
	sideways *quantize.Grid
}

func NewEngine() *Engine {
	return &Engine{Distance: palette.Distance, Workers: 1}
}

// Invalidate drops the memoized grid pair so the next Select recomputes.
func (e *Engine) Invalidate() {
	e.keyed = false
}

// Choices returns the tiling choices of the last Select, or nil.
func (e *Engine) Choices() *Choices {
	return e.choices
}

// Grids returns the color grids the current choices were made from.
func (e *Engine) Grids() (normal, sideways *quantize.Grid) {
	return e.normal, e.sideways
}

func checkGrids(normal, sideways *quantize.Grid, width, height int) error {
	if err := checkBlocks(width, height); err != nil {
		return err
	}
	if n := normalOrientation.gridSize(width, height); normal.W != n.X || normal.H != n.Y {
		return fmt.Errorf("normal grid %dx%d, want %dx%d: %w", normal.W, normal.H, n.X, n.Y, ErrDimensionMismatch)
	}
	if s := sidewaysOrientation.gridSize(width, height); sideways.W != s.X || sideways.H != s.Y {
		return fmt.Errorf("sideways grid %dx%d, want %dx%d: %w", sideways.W, sideways.H, s.X, s.Y, ErrDimensionMismatch)
	}
	return nil
}

// Decide compares both builds on every block of src without modifying it.
// On cancellation the partial Decision is returned along with ErrCanceled.
func (e *Engine) Decide(normal, sideways *quantize.Grid, src *image.RGBA, p quantize.Progress) (*Decision, error) {
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if err := checkGrids(normal, sideways, width, height); err != nil {
		return nil, err
	}
	bw, bh := width/SnotBlockWidth, height/SnotBlockWidth
	d := &Decision{Choices: newChoices(bw, bh)}
	if bw == 0 || bh == 0 {
		d.Choices.complete = true
		return d, nil
	}
	d.NormalCost = mat.NewDense(bh, bw, nil)
	d.SidewaysCost = mat.NewDense(bh, bw, nil)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(e.Workers, 1))
	var rowsDone atomic.Int64
	for by := 0; by < bh; by++ {
		by := by
		g.Go(func() error {
			if ctx.Err() != nil || !quantize.Running(p) {
				return ErrCanceled
			}
			for bx := 0; bx < bw; bx++ {
				dn := e.blockCost(normal, normalOrientation, src, bx, by)
				ds := e.blockCost(sideways, sidewaysOrientation, src, bx, by)
				d.NormalCost.Set(by, bx, dn)
				d.SidewaysCost.Set(by, bx, ds)
				// Ties go to the normal build.
				d.Choices.set(bx, by, dn <= ds)
			}
			quantize.Report(p, float64(rowsDone.Add(1))/float64(bh))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return d, err
	}
	d.Choices.complete = true
	return d, nil
}

// blockCost sums the distance between every stud color of block (bx, by) and
// each source pixel the stud covers.
func (e *Engine) blockCost(g *quantize.Grid, o orientation, src *image.RGBA, bx, by int) float64 {
	var studs [10]float64
	x0 := src.Rect.Min.X + bx*SnotBlockWidth
	y0 := src.Rect.Min.Y + by*SnotBlockWidth
	for j := 0; j < o.rows; j++ {
		row := g.Row(by*o.rows + j)
		for i := 0; i < o.cols; i++ {
			c := row[bx*o.cols+i]
			sum := 0.0
			for y := y0 + j*o.studH; y < y0+(j+1)*o.studH; y++ {
				for x := x0 + i*o.studW; x < x0+(i+1)*o.studW; x++ {
					sum += e.Distance(c, src.RGBAAt(x, y))
				}
			}
			studs[j*o.cols+i] = sum
		}
	}
	return floats.Sum(studs[:])
}

// Commit paints every decided block of dst with the stud colors of its
// chosen build. Undecided blocks are left untouched.
func Commit(c *Choices, normal, sideways *quantize.Grid, dst *image.RGBA) error {
	width, height := dst.Rect.Dx(), dst.Rect.Dy()
	if err := checkGrids(normal, sideways, width, height); err != nil {
		return err
	}
	if c.W != width/SnotBlockWidth || c.H != height/SnotBlockWidth {
		return fmt.Errorf("choices %dx%d for %dx%d pixels: %w", c.W, c.H, width, height, ErrDimensionMismatch)
	}
	for by := 0; by < c.H; by++ {
		for bx := 0; bx < c.W; bx++ {
			if !c.Decided(bx, by) {
				continue
			}
			n := c.Normal(bx, by)
			o := orientationOf(n)
			g := sideways
			if n {
				g = normal
			}
			x0 := dst.Rect.Min.X + bx*SnotBlockWidth
			y0 := dst.Rect.Min.Y + by*SnotBlockWidth
			for j := 0; j < o.rows; j++ {
				row := g.Row(by*o.rows + j)
				for i := 0; i < o.cols; i++ {
					rgb := row[bx*o.cols+i].RGB
					rgb.A = 0xff
					for y := y0 + j*o.studH; y < y0+(j+1)*o.studH; y++ {
						for x := x0 + i*o.studW; x < x0+(i+1)*o.studW; x++ {
							dst.SetRGBA(x, y, rgb)
						}
					}
				}
			}
		}
	}
	return nil
}

// Select decides the build of every block of buf and paints the result into
// buf, which must be exactly width×height pixels. Calling it again with grids
// of the same generations does nothing. If p cancels the run, the decided
// blocks are painted, the choices are left incomplete and ErrCanceled is
// returned; the next call starts over.
func (e *Engine) Select(normal, sideways *quantize.Grid, buf *image.RGBA, width, height int, p quantize.Progress) error {
	key := [2]uint64{normal.Gen, sideways.Gen}
	if e.keyed && e.key == key {
		return nil
	}
	if width == 0 || height == 0 {
		return nil
	}
	if buf.Rect.Dx() != width || buf.Rect.Dy() != height {
		return fmt.Errorf("buffer %dx%d, want %dx%d: %w", buf.Rect.Dx(), buf.Rect.Dy(), width, height, ErrDimensionMismatch)
	}

	e.keyed = false
	d, err := e.Decide(normal, sideways, buf, p)
	if d == nil {
		return err
	}
	e.choices, e.normal, e.sideways = d.Choices, normal, sideways
	if cerr := Commit(d.Choices, normal, sideways, buf); cerr != nil {
		return cerr
	}
	if err != nil {
		Logf("snot: run aborted, %d×%d blocks partially committed", d.Choices.W, d.Choices.H)
		return err
	}
	e.key, e.keyed = key, true
	return nil
}

package snotmosaic

import (
	"fmt"
	"image"

	"github.com/setanarut/snotmosaic/quantize"
)

type Options struct {
	// Construction variant.
	Type Type
	// Basic unit size in pixels. For SnotBlock both must be multiples of 10;
	// for the other types each unit covers UnitWidth×UnitHeight pixels.
	Width, Height int
	// Error diffusion strength in percent. 0 selects plain nearest-color
	// thresholding.
	PropagationPercentage int
	// Resampling used when shrinking the source to stud resolution.
	Quality quantize.Quality
	// Block rows decided concurrently by the SNOT engine. Values below 2
	// run sequentially; results are identical either way.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Type:                  SnotBlock,
		Width:                 320,
		Height:                320,
		PropagationPercentage: 100,
		Quality:               quantize.RetainColors,
		Workers:               1,
	}
}

// OptionsFromSize keeps the source aspect ratio and picks a basic unit size
// whose longer side is about 320 pixels, rounded down to whole SNOT blocks.
func OptionsFromSize(size image.Point) Options {
	opt := DefaultOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	const target = 320.0
	scale := target / float64(max(size.X, size.Y))
	w := int(float64(size.X)*scale) / SnotBlockWidth * SnotBlockWidth
	h := int(float64(size.Y)*scale) / SnotBlockWidth * SnotBlockWidth
	opt.Width = max(w, SnotBlockWidth)
	opt.Height = max(h, SnotBlockWidth)
	return opt
}

// Validate reports options the transform cannot run with.
func (o Options) Validate() error {
	if !o.Type.Valid() {
		return fmt.Errorf("invalid construction type %d", int(o.Type))
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("negative basic unit size %dx%d", o.Width, o.Height)
	}
	if o.Type == SnotBlock {
		return checkBlocks(o.Width, o.Height)
	}
	return nil
}

func checkBlocks(w, h int) error {
	if w%SnotBlockWidth != 0 || h%SnotBlockWidth != 0 {
		return fmt.Errorf("basic unit size %dx%d: %w", w, h, ErrBlockSize)
	}
	return nil
}

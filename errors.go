package snotmosaic

import (
	"errors"

	"github.com/setanarut/snotmosaic/quantize"
)

var (
	// ErrDimensionMismatch: a pixel buffer or color grid does not have the
	// extent the call was configured for.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrBlockSize: SNOT work requested with a size that is not made of
	// 10×10 blocks.
	ErrBlockSize = errors.New("snot needs 10x10 blocks")
	// ErrIncomplete: the tiling choices are missing or from an aborted run.
	ErrIncomplete = errors.New("tiling choices incomplete")
	// ErrCanceled: the progress sink stopped the run.
	ErrCanceled = quantize.ErrCanceled
)

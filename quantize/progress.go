package quantize

import (
	"context"
	"errors"
)

// ErrCanceled is returned when a Progress stops a computation early.
var ErrCanceled = errors.New("quantize: canceled")

// Progress is the cancellation and progress capability handed down from the
// caller. Running is polled between rows; returning false aborts the run.
// Report receives the fraction done in [0,1]. Implementations used with more
// than one worker must be safe for concurrent use.
type Progress interface {
	Running() bool
	Report(done float64)
}

// Running reports whether p allows work to continue. A nil Progress always
// does.
func Running(p Progress) bool {
	return p == nil || p.Running()
}

// Report forwards done to p when p is not nil.
func Report(p Progress, done float64) {
	if p != nil {
		p.Report(done)
	}
}

// ContextProgress stops when Ctx is done and forwards reports to OnReport.
type ContextProgress struct {
	Ctx      context.Context
	OnReport func(done float64)
}

func (c ContextProgress) Running() bool {
	return c.Ctx == nil || c.Ctx.Err() == nil
}

func (c ContextProgress) Report(done float64) {
	if c.OnReport != nil {
		c.OnReport(done)
	}
}

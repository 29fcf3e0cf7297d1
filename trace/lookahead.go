package trace

import (
	"errors"
	"io"
)

// FrameWork summarizes the trace between two frame-buffer updates.
type FrameWork struct {
	Insts  int64
	WaitNs int64
	Lines  int

	// Ended is set when the trace ran out before another frame-buffer
	// update was found. No further lookahead is useful after that.
	Ended bool
}

// ScanFrame consumes tokens up to and including the next frame-buffer
// update and sums the compute work seen on the way. It is meant for a second
// reader over the same trace that runs ahead of the one being executed.
func (r *Reader) ScanFrame() FrameWork {
	var w FrameWork

	for {
		tok, err := r.Next()
		w.Lines++

		if errors.Is(err, io.EOF) || (err != nil && !errors.Is(err, ErrMalformedToken)) {
			w.Ended = true
			return w
		}

		switch tok.Kind {
		case Compute:
			w.Insts += tok.Insts
			w.WaitNs += tok.WaitNs
		case End:
			w.Ended = true
		case IPCall:
			if tok.IsFrameBufferUpdate() {
				return w
			}
		}
	}
}

// IdleRatio converts a frame's work into the ratio between traced wait time
// and the cycles left in a frame at the given core frequency. The core
// divides later wait times by it to decide how long to sleep. A zero ratio
// disables idle stalls, which is also the case when the instructions alone
// take the whole frame.
func (w FrameWork) IdleRatio(coreFreqGHz float64, frameMs float64) float64 {
	if w.Insts == 0 && w.WaitNs == 0 {
		return 0
	}

	left := coreFreqGHz*1e6*frameMs - float64(w.Insts)
	if left <= 0 {
		return 0
	}

	return float64(w.WaitNs) * coreFreqGHz / left
}

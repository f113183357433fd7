package scope

import "github.com/rmay/venlang/pkg/verrors"

// Trace is the call/compile trace stack used to build the frame list on a
// propagating VenError (spec.md §2.2, §7).
type Trace struct {
	frames []verrors.Frame
}

func NewTrace() *Trace { return &Trace{} }

func (t *Trace) Push(f verrors.Frame) { t.frames = append(t.frames, f) }

func (t *Trace) Pop() {
	if len(t.frames) == 0 {
		return
	}
	t.frames = t.frames[:len(t.frames)-1]
}

// Snapshot returns the current trace oldest-first, matching spec.md §7's
// "for each frame on the trace, oldest first" user-visible format.
func (t *Trace) Snapshot() []verrors.Frame {
	out := make([]verrors.Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

func (t *Trace) Depth() int { return len(t.frames) }

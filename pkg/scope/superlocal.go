package scope

import "github.com/rmay/venlang/pkg/value"

// Superlocal implements the `_`/`&_` contextual value stack (spec.md §3.3,
// §9 Design Notes): an explicit stack of frames, each frame itself a stack
// of values. Every function/lambda activation pushes a new frame; every
// spread-body evaluation pushes/pops per iteration within the current
// frame.
type Superlocal struct {
	frames [][]value.Value
}

func NewSuperlocal() *Superlocal { return &Superlocal{} }

// EnterFrame pushes a new, empty frame (SL_FRAME_ENTER / a function call).
func (s *Superlocal) EnterFrame() { s.frames = append(s.frames, nil) }

// LeaveFrame pops the current frame (SL_FRAME_LEAVE / function return).
func (s *Superlocal) LeaveFrame() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Push pushes v onto the top frame (SL_PUSH).
func (s *Superlocal) Push(v value.Value) {
	if len(s.frames) == 0 {
		s.EnterFrame()
	}
	top := len(s.frames) - 1
	s.frames[top] = append(s.frames[top], v)
}

// Pop pops and returns from the top frame — this is `_` (SL_POP).
func (s *Superlocal) Pop() (value.Value, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	top := len(s.frames) - 1
	frame := s.frames[top]
	if len(frame) == 0 {
		return nil, false
	}
	v := frame[len(frame)-1]
	s.frames[top] = frame[:len(frame)-1]
	return v, true
}

// Peek returns without popping from the top frame — this is `&_` (SL_PEEK).
func (s *Superlocal) Peek() (value.Value, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	frame := s.frames[len(s.frames)-1]
	if len(frame) == 0 {
		return nil, false
	}
	return frame[len(frame)-1], true
}

func (s *Superlocal) Depth() int { return len(s.frames) }

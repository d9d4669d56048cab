package onset

import (
	"context"
	"fmt"
	"sync"
)

// Frame is one frequency-domain sample: byte-valued magnitudes.
type Frame []byte

// DefaultFrameSize matches the analyser configuration the signal
// contract was written against (fftSize 256).
const DefaultFrameSize = 256

// Source is the capture-device abstraction.
//
// A Source is exclusively owned by at most one holder: Acquire fails
// with an error wrapping ErrCaptureUnavailable while another holder is
// active. Release is idempotent and closes the frame stream.
type Source interface {
	Acquire(ctx context.Context) (<-chan Frame, error)
	Release()
}

// SyntheticSource is a programmable Source for tests and offline
// demos. Frames are fed with Push; exclusivity and
// permission-denied behavior are scriptable.
type SyntheticSource struct {
	mu     sync.Mutex
	held   bool
	deny   bool
	frames chan Frame
}

var _ Source = (*SyntheticSource)(nil)

// NewSyntheticSource creates an unheld synthetic source.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{}
}

// Deny makes subsequent Acquire calls fail, simulating a revoked
// permission or absent device.
func (s *SyntheticSource) Deny(deny bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deny = deny
}

// Acquire hands out the frame stream, failing deterministically while
// the source is already held or access is denied.
func (s *SyntheticSource) Acquire(_ context.Context) (<-chan Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deny {
		return nil, fmt.Errorf("%w: access denied", ErrCaptureUnavailable)
	}
	if s.held {
		return nil, fmt.Errorf("%w: device busy", ErrCaptureUnavailable)
	}
	s.held = true
	s.frames = make(chan Frame, 16)
	return s.frames, nil
}

// Release stops capture and closes the frame stream. Idempotent.
func (s *SyntheticSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return
	}
	s.held = false
	close(s.frames)
	s.frames = nil
}

// Push feeds one frame to the current holder. Returns false when the
// source is not held (frame dropped).
func (s *SyntheticSource) Push(f Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.held {
		return false
	}
	select {
	case s.frames <- f:
		return true
	default:
		return false
	}
}

// Held reports whether a holder currently owns the source.
func (s *SyntheticSource) Held() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}

// UniformFrame builds a frame of the given size with every magnitude
// set to level. Mean energy equals level exactly.
func UniformFrame(size int, level byte) Frame {
	f := make(Frame, size)
	for i := range f {
		f[i] = level
	}
	return f
}

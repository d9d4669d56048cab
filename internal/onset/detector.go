package onset

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrCaptureUnavailable indicates the capture device could not be
// acquired: permission denied, no device, or held by another consumer.
// The detector stays Idle; the caller may retry.
var ErrCaptureUnavailable = errors.New("capture unavailable")

// ErrAlreadyListening indicates Start was called while Listening.
var ErrAlreadyListening = errors.New("detector already listening")

// Detector defaults, matching the signal scale the contract was tuned
// on (byte magnitudes 0-255).
const (
	DefaultThreshold = 30.0
	DefaultDebounce  = 500 * time.Millisecond
)

// Onset is one detected event.
type Onset struct {
	Time   time.Time
	Energy float64
}

// State is the detector's lifecycle position.
type State int

const (
	// Idle means no active capture.
	Idle State = iota
	// Listening means capture is attached and frames are processed.
	Listening
)

// Detector is the onset state machine. Safe for concurrent use.
type Detector struct {
	mu        sync.Mutex
	state     State
	cur       *session
	source    Source
	threshold float64
	debounce  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	lastEmit  time.Time
}

// session is one Listening run. Per-run channels keep Stop and
// stream-end teardown from racing across restarts.
type session struct {
	frames      <-chan Frame
	events      chan Onset
	done        chan struct{}
	finished    chan struct{}
	stopOnce    sync.Once
	releaseOnce sync.Once
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the mean-magnitude energy threshold.
func WithThreshold(t float64) Option {
	return func(d *Detector) { d.threshold = t }
}

// WithDebounce sets the minimum spacing between emitted onsets.
func WithDebounce(w time.Duration) Option {
	return func(d *Detector) { d.debounce = w }
}

// WithClock injects the wall clock for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithLogger injects the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// New constructs an Idle detector over the given source.
func New(source Source, opts ...Option) *Detector {
	d := &Detector{
		state:     Idle,
		source:    source,
		threshold: DefaultThreshold,
		debounce:  DefaultDebounce,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle state.
func (d *Detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start transitions Idle -> Listening, acquiring the capture source.
// The returned channel delivers onsets for this run and is closed when
// the run ends. Acquisition failure leaves the detector Idle and
// returns an error matching ErrCaptureUnavailable.
func (d *Detector) Start(ctx context.Context) (<-chan Onset, error) {
	d.mu.Lock()
	if d.state == Listening {
		d.mu.Unlock()
		return nil, ErrAlreadyListening
	}

	frames, err := d.source.Acquire(ctx)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}

	s := &session{
		frames:   frames,
		events:   make(chan Onset, 8),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	d.cur = s
	d.state = Listening
	d.lastEmit = time.Time{}
	d.mu.Unlock()

	go d.run(ctx, s)
	return s.events, nil
}

// Stop transitions Listening -> Idle and releases the capture source.
// Safe to call from Idle (no-op) and at any time during an in-flight
// frame: once Stop returns, no further onset is delivered.
func (d *Detector) Stop() {
	d.mu.Lock()
	s := d.cur
	if s == nil {
		d.mu.Unlock()
		return
	}
	d.cur = nil
	d.state = Idle
	d.mu.Unlock()

	s.stopOnce.Do(func() { close(s.done) })
	<-s.finished
	s.releaseOnce.Do(d.source.Release)
}

// run is the frame loop for one Listening session.
func (d *Detector) run(ctx context.Context, s *session) {
	defer close(s.finished)
	defer close(s.events)

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			d.teardown(s)
			return
		case frame, ok := <-s.frames:
			if !ok {
				// Underlying stream ended on its own.
				d.teardown(s)
				return
			}
			d.process(s, frame)
		}
	}
}

// process applies the threshold + debounce rule to one frame.
func (d *Detector) process(s *session, frame Frame) {
	if len(frame) == 0 {
		return
	}
	var sum int
	for _, m := range frame {
		sum += int(m)
	}
	energy := float64(sum) / float64(len(frame))

	now := d.now()
	d.mu.Lock()
	fire := energy > d.threshold &&
		(d.lastEmit.IsZero() || now.Sub(d.lastEmit) > d.debounce)
	if fire {
		d.lastEmit = now
	}
	d.mu.Unlock()
	if !fire {
		return
	}

	select {
	case s.events <- Onset{Time: now, Energy: energy}:
	default:
		// Consumer stalled; debounce keeps the rate low enough that a
		// full buffer means nobody is listening anymore.
		d.logger.Warn("onset dropped, event buffer full")
	}
}

// teardown moves the detector to Idle when a run ends without an
// explicit Stop (stream end, context cancel). The source is still
// released exactly once.
func (d *Detector) teardown(s *session) {
	d.mu.Lock()
	if d.cur == s {
		d.cur = nil
		d.state = Idle
	}
	d.mu.Unlock()
	s.stopOnce.Do(func() { close(s.done) })
	s.releaseOnce.Do(d.source.Release)
}

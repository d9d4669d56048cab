package onset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leveller/internal/testutil"
)

var detStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newProcessHarness builds a detector plus a bare session for driving
// process() synchronously: the threshold and debounce rules are pure
// functions of clock and frame once the channel plumbing is bypassed.
func newProcessHarness(opts ...Option) (*Detector, *session, *testutil.Clock) {
	clock := testutil.NewClock(detStart)
	base := []Option{WithClock(clock.Now)}
	d := New(NewSyntheticSource(), append(base, opts...)...)
	s := &session{events: make(chan Onset, 8)}
	return d, s, clock
}

func TestProcess_FiresAboveThreshold(t *testing.T) {
	d, s, _ := newProcessHarness()

	d.process(s, UniformFrame(DefaultFrameSize, 31))

	require.Len(t, s.events, 1)
	ev := <-s.events
	assert.InDelta(t, 31.0, ev.Energy, 0.001)
	assert.Equal(t, detStart, ev.Time)
}

func TestProcess_ThresholdIsStrict(t *testing.T) {
	d, s, _ := newProcessHarness()

	// Mean energy exactly at the threshold must not fire.
	d.process(s, UniformFrame(DefaultFrameSize, 30))
	assert.Empty(t, s.events)

	d.process(s, UniformFrame(DefaultFrameSize, 29))
	assert.Empty(t, s.events)
}

func TestProcess_MeanEnergyOverFrame(t *testing.T) {
	d, s, _ := newProcessHarness()

	// Half zeros, half 80: mean 40, above threshold.
	frame := make(Frame, 100)
	for i := 0; i < 50; i++ {
		frame[i] = 80
	}
	d.process(s, frame)

	require.Len(t, s.events, 1)
	ev := <-s.events
	assert.InDelta(t, 40.0, ev.Energy, 0.001)
}

func TestProcess_EmptyFrameIgnored(t *testing.T) {
	d, s, _ := newProcessHarness()
	d.process(s, Frame{})
	assert.Empty(t, s.events)
}

func TestProcess_DebounceSuppressesRapidOnsets(t *testing.T) {
	d, s, clock := newProcessHarness(WithDebounce(500 * time.Millisecond))
	loud := UniformFrame(DefaultFrameSize, 100)

	d.process(s, loud)
	require.Len(t, s.events, 1)

	// Inside the window: suppressed, even at the exact boundary.
	clock.Advance(200 * time.Millisecond)
	d.process(s, loud)
	clock.Advance(300 * time.Millisecond)
	d.process(s, loud)
	assert.Len(t, s.events, 1)

	// Past the window: fires again.
	clock.Advance(501 * time.Millisecond)
	d.process(s, loud)
	assert.Len(t, s.events, 2)
}

func TestProcess_SuppressedOnsetDoesNotResetWindow(t *testing.T) {
	d, s, clock := newProcessHarness(WithDebounce(500 * time.Millisecond))
	loud := UniformFrame(DefaultFrameSize, 100)

	d.process(s, loud) // fires, window opens at t=0
	clock.Advance(400 * time.Millisecond)
	d.process(s, loud) // suppressed
	clock.Advance(200 * time.Millisecond)
	// 600ms since the fire that opened the window.
	d.process(s, loud)

	assert.Len(t, s.events, 2)
}

func TestStart_DeliversOnsets(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	events, err := d.Start(context.Background())
	require.NoError(t, err)
	defer d.Stop()

	assert.Equal(t, Listening, d.State())
	require.True(t, src.Push(UniformFrame(DefaultFrameSize, 120)))

	select {
	case ev := <-events:
		assert.InDelta(t, 120.0, ev.Energy, 0.001)
	case <-time.After(time.Second):
		t.Fatal("no onset delivered")
	}
}

func TestStart_SubThresholdFramesProduceNothing(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	events, err := d.Start(context.Background())
	require.NoError(t, err)
	defer d.Stop()

	src.Push(UniformFrame(DefaultFrameSize, 10))
	src.Push(UniformFrame(DefaultFrameSize, 5))
	// A loud frame after the quiet ones; frames process in order, so
	// receiving its onset proves the quiet ones were dropped.
	src.Push(UniformFrame(DefaultFrameSize, 200))

	select {
	case ev := <-events:
		assert.InDelta(t, 200.0, ev.Energy, 0.001)
	case <-time.After(time.Second):
		t.Fatal("no onset delivered")
	}
	assert.Empty(t, events)
}

func TestStart_DeniedCaptureStaysIdle(t *testing.T) {
	src := NewSyntheticSource()
	src.Deny(true)
	d := New(src)

	_, err := d.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCaptureUnavailable)
	assert.Equal(t, Idle, d.State())

	// Permission restored: Start succeeds.
	src.Deny(false)
	_, err = d.Start(context.Background())
	require.NoError(t, err)
	d.Stop()
}

func TestStart_WhileListening(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	_, err := d.Start(context.Background())
	require.NoError(t, err)
	defer d.Stop()

	_, err = d.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyListening)
}

func TestStart_SourceIsExclusive(t *testing.T) {
	src := NewSyntheticSource()
	first := New(src)
	second := New(src)

	_, err := first.Start(context.Background())
	require.NoError(t, err)

	_, err = second.Start(context.Background())
	assert.ErrorIs(t, err, ErrCaptureUnavailable)

	// Releasing the first holder frees the device.
	first.Stop()
	_, err = second.Start(context.Background())
	require.NoError(t, err)
	second.Stop()
}

func TestStop_BarrierAndRelease(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	events, err := d.Start(context.Background())
	require.NoError(t, err)
	src.Push(UniformFrame(DefaultFrameSize, 150))

	d.Stop()

	assert.Equal(t, Idle, d.State())
	assert.False(t, src.Held(), "source must be released after Stop")

	// Once Stop returns the run is over: the channel drains whatever
	// was emitted before the stop and then reports closed.
	for {
		if _, ok := <-events; !ok {
			break
		}
	}
}

func TestStop_FromIdleIsNoOp(t *testing.T) {
	d := New(NewSyntheticSource())
	d.Stop()
	d.Stop()
	assert.Equal(t, Idle, d.State())
}

func TestStreamEnd_TearsDownToIdle(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	events, err := d.Start(context.Background())
	require.NoError(t, err)

	// The device vanishes out from under the detector.
	src.Release()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "events channel should close on stream end")
	case <-time.After(time.Second):
		t.Fatal("events channel did not close")
	}

	// Teardown races the state read by a hair; Stop is the sync point.
	d.Stop()
	assert.Equal(t, Idle, d.State())
	assert.False(t, src.Held())
}

func TestContextCancel_TearsDown(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	ctx, cancel := context.WithCancel(context.Background())
	events, err := d.Start(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "events channel should close on cancel")
	case <-time.After(time.Second):
		t.Fatal("events channel did not close")
	}
	d.Stop()
	assert.False(t, src.Held())
}

func TestRestart_AfterStop(t *testing.T) {
	src := NewSyntheticSource()
	d := New(src)

	for i := 0; i < 3; i++ {
		events, err := d.Start(context.Background())
		require.NoError(t, err, "restart %d", i)

		require.True(t, src.Push(UniformFrame(DefaultFrameSize, 90)))
		select {
		case <-events:
		case <-time.After(time.Second):
			t.Fatalf("restart %d: no onset", i)
		}
		d.Stop()
	}
}

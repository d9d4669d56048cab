// Package onset turns a live amplitude signal into discrete events.
//
// A Detector consumes fixed-size frequency-domain frames (byte-valued
// magnitudes) from a capture Source, computes the mean magnitude per
// frame, and emits an onset when the energy crosses the threshold
// outside the debounce window. Threshold and debounce are options, not
// constants, so tests drive the detector with synthetic signals.
//
// Lifecycle is a two-state machine: Idle and Listening. Start acquires
// the source and fails with ErrCaptureUnavailable when it cannot be
// acquired; Stop is idempotent, callable from Idle, and guarantees no
// onset is delivered after it returns. The source is released on every
// exit path: explicit Stop, stream end, context cancellation.
package onset

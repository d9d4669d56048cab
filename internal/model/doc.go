// Package model defines the typed records persisted by Leveller.
//
// Every record is a tagged variant with its own collection: presets,
// emission logs, audio tracks, subliminal profiles, amplifier settings
// and mantra sessions. Records carry creator-assigned string IDs; the
// store never mints identity.
//
// Timestamps are Unix milliseconds throughout. The original data was
// written with millisecond wall-clock stamps and existing databases
// must keep round-tripping, so the encoding is part of the contract.
package model

// Package sim hosts the simulation module services: radionics,
// amplifier, subliminal maker and the healing/frequency preset
// managers. Each service validates its own records, persists through
// the vault facade only, and maintains its module's "last active id"
// pointer. Rendering, animation and audio playback live elsewhere;
// these services are the state the panels display.
package sim

// Package counter implements the repetition-counting state machine.
//
// One Counter owns one active mantra session at a time and is the sole
// authority over its repetition count. Events arrive from three
// channels (manual tap, timed simulation, detected voice onset) and
// are reconciled under a single mutex: append log entry, increment,
// completion check and persistence trigger form one critical section
// with no suspension point inside, so completion fires exactly once no
// matter how channels interleave.
//
// Persistence is fire-and-forget. In-memory state is the source of
// truth; increments mark the session dirty and a debounced flush
// writes it behind the critical path. Session boundaries (start, end,
// completion, resume) flush immediately. A failed write is reported
// through the error callback and never rolls back memory.
package counter

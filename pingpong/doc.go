// Package pingpong implements a double-buffered producer/consumer handoff
// over a fixed shared-memory region between two cores that share nothing
// but that region and a doorbell interrupt per direction.
//
// Two fixed-size buffers cycle through a four-state machine,
//
//	IDLE -> WRITING -> READY -> READING -> IDLE
//
// with every transition a single atomic compare-and-swap on a per-buffer
// state word in the shared control block. No mutex exists (or could work)
// across the cores; holding a buffer in WRITING or READING is the only
// access-control mechanism for its payload bytes. The doorbell is a
// "hurry up and poll" hint, never a data channel: a lost notification
// delays delivery until the next poll but can never corrupt state.
//
// The package is platform-free. Callers attach a Session to a raw region
// (from hal.SharedMem on this project's platforms) and hand each side a
// Notifier for its doorbell direction.
package pingpong

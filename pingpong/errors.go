package pingpong

import "errors"

// Protocol errors. Overrun is deliberately absent: running out of
// buffers is backpressure, accounted in Stats while the call keeps
// waiting, not a failure of the call in progress.
var (
	// ErrTimeout: no buffer became available (write side) or ready
	// (read side) before the deadline. Recoverable; the caller retries
	// or drops this cycle's data.
	ErrTimeout = errors.New("pingpong: acquire timed out")

	// ErrInvalidState: a commit or release found its buffer outside the
	// expected state. A double commit, a reused handle, or a stuck peer.
	ErrInvalidState = errors.New("pingpong: buffer in unexpected state")

	// ErrInvalidArgument: nil, foreign, or out-of-range handle or region.
	ErrInvalidArgument = errors.New("pingpong: invalid argument")

	// ErrNotInitialized: the control block carries no (or a foreign)
	// magic word. Init never ran, or the peer was built against a
	// different layout revision.
	ErrNotInitialized = errors.New("pingpong: control block not initialized")
)

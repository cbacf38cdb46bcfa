package pingpong

import "time"

// Memory layout of the shared region. These values are a deployment
// contract: both cores must be built from the same revision of this
// file, and the control block's magic word lets a peer detect when
// they were not.
const (
	// BufferCount is fixed at two: one buffer filling while the other drains.
	BufferCount = 2

	// BufferSize is the payload capacity of each ping-pong buffer.
	BufferSize = 64 * 1024

	// ControlBlockSize reserves the control block window, padding
	// included, so the region size stays stable as fields are added.
	ControlBlockSize = 32 * 1024

	// RegionSize is the whole shared region: both buffers then the block.
	RegionSize = BufferCount*BufferSize + ControlBlockSize
)

// Offsets into the shared region.
const (
	buffer0Offset      = 0
	buffer1Offset      = BufferSize
	controlBlockOffset = BufferCount * BufferSize
)

// layoutMagic is bumped whenever the layout above changes shape.
const layoutMagic uint32 = 0x53454101

// Default timing configuration. Fixed per deployment, not negotiated.
const (
	// DefaultTimeout bounds an acquire call's bounded busy-wait.
	DefaultTimeout = 100 * time.Millisecond

	// DefaultPollInterval is the sleep between acquire poll attempts.
	// Cooperative backoff, not a spin-lock: there is no cross-core wake
	// primitive to block on.
	DefaultPollInterval = 100 * time.Microsecond
)

package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// LED is a minimal output pin abstraction, used as a liveness indicator.
type LED interface {
	High()
	Low()
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides the base tick stream and the monotonic timestamp the
// protocol stamps into the shared control block.
type Time interface {
	Ticks() <-chan uint64
	NowMicros() uint64
}

// Mailbox is one direction of the cross-core doorbell interrupt. The
// sender calls Notify, the receiver registers a handler. The signal
// carries no payload; it is a hint to re-poll, never a data channel,
// and pending rings coalesce like a latched IRQ.
type Mailbox interface {
	Notify() error
	SetHandler(fn func())
}

// HAL provides the only contact point between the protocol and the
// platform: the shared region, the two doorbell directions, the second
// execution context, and the ambient devices.
type HAL interface {
	Logger() Logger
	LED() LED
	Display() Display
	Time() Time

	// SharedMem returns the raw region both cores address: 8-byte
	// aligned, pingpong.RegionSize bytes.
	SharedMem() []byte

	// ToConsumer is the producer->consumer doorbell direction.
	ToConsumer() Mailbox
	// ToProducer is the consumer->producer doorbell direction.
	ToProducer() Mailbox

	// StartProducerCore launches fn on the producer execution context:
	// core 1 on hardware, a goroutine on the host.
	StartProducerCore(fn func())
}

package pingpong

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"
)

// stateCell keeps each buffer's state word alone on a cache line so the
// two cores never false-share a line while polling each other's buffer.
type stateCell struct {
	v uint32
	_ [60]byte
}

// controlBlock is the only state both cores read and mutate. It is
// overlaid on the control-block window of the shared region, never
// allocated by Go, and outside Init touched only through atomics.
//
// Field order and sizes are part of the cross-core contract; the
// reserved tail of the window absorbs future additions.
type controlBlock struct {
	states [BufferCount]stateCell

	writeCount [BufferCount]uint32
	readCount  [BufferCount]uint32

	overrunCount  uint32
	timeoutCount  uint32
	stateErrCount uint32
	_             uint32

	// lastWriteTS orders consumer delivery (oldest READY first); the
	// read-side mirror is diagnostic only. Microseconds, monotonic.
	lastWriteTS [BufferCount]uint64
	lastReadTS  [BufferCount]uint64

	producerReady uint32
	consumerReady uint32

	// Static configuration, written once by Init.
	bufferSize    uint32
	timeoutMillis uint32

	// magic is published last during Init; observing it implies the
	// whole block is initialized.
	magic uint32
}

// The block must fit inside its reserved window.
var _ [ControlBlockSize - unsafe.Sizeof(controlBlock{})]byte

// Clock returns a monotonic timestamp in microseconds. Both cores must
// stamp from clocks that agree well enough for FIFO ordering; on the
// targets here they share one hardware timer.
type Clock func() uint64

// Session binds protocol code to one attached shared region for the
// lifetime of the communication session.
type Session struct {
	cb  *controlBlock
	buf [BufferCount][]byte
	now Clock
}

// Attach overlays the protocol layout on a raw shared region. The
// region must be exactly RegionSize bytes and 8-byte aligned (the
// platform HALs guarantee both). Attach validates but does not mutate;
// call Init from exactly one side before constructing paths.
func Attach(region []byte, now Clock) (*Session, error) {
	if len(region) != RegionSize {
		return nil, fmt.Errorf("%w: region is %d bytes, want %d", ErrInvalidArgument, len(region), RegionSize)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: nil clock", ErrInvalidArgument)
	}
	if uintptr(unsafe.Pointer(&region[0]))%8 != 0 {
		return nil, fmt.Errorf("%w: region not 8-byte aligned", ErrInvalidArgument)
	}

	s := &Session{
		cb:  (*controlBlock)(unsafe.Pointer(&region[controlBlockOffset])),
		now: now,
	}
	s.buf[0] = region[buffer0Offset : buffer0Offset+BufferSize : buffer0Offset+BufferSize]
	s.buf[1] = region[buffer1Offset : buffer1Offset+BufferSize : buffer1Offset+BufferSize]
	return s, nil
}

// Config is the static per-deployment configuration recorded at Init.
type Config struct {
	// Timeout is the default acquisition timeout advertised in the
	// control block. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Init zeroes the control block, parks both buffers in StateIdle,
// records configuration, and publishes the magic word last. The
// release ordering of that final store guarantees a peer that observes
// the magic never sees a partially initialized block.
func (s *Session) Init(cfg Config) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cb := s.cb
	// Plain stores are safe here: the peer does not touch the block
	// until the magic word appears.
	*cb = controlBlock{}
	cb.bufferSize = BufferSize
	cb.timeoutMillis = uint32(cfg.Timeout / time.Millisecond)

	atomic.StoreUint32(&cb.magic, layoutMagic)
}

// initialized requires the magic word and a matching buffer size, so a
// peer built with different layout constants is refused up front.
func (s *Session) initialized() bool {
	return atomic.LoadUint32(&s.cb.magic) == layoutMagic &&
		atomic.LoadUint32(&s.cb.bufferSize) == BufferSize
}

// Timeout returns the default acquisition timeout recorded at Init.
func (s *Session) Timeout() time.Duration {
	return time.Duration(atomic.LoadUint32(&s.cb.timeoutMillis)) * time.Millisecond
}

// tryTransition is the only mutator of buffer state: an atomic
// compare-and-swap from expected to desired. Illegal or lost
// transitions return false and change nothing. A successful CAS is also
// the cross-core ordering point: everything the winner wrote before it
// is visible to the peer that observes the new state.
func (s *Session) tryTransition(id int, expected, desired State) bool {
	return atomic.CompareAndSwapUint32(&s.cb.states[id].v, uint32(expected), uint32(desired))
}

// StateOf reports the current state of a buffer; a plain atomic read
// with no side effects. Out-of-range ids read as StateIdle.
func (s *Session) StateOf(id int) State {
	if id < 0 || id >= BufferCount {
		return StateIdle
	}
	return State(atomic.LoadUint32(&s.cb.states[id].v))
}

func (s *Session) markProducerReady() { atomic.StoreUint32(&s.cb.producerReady, 1) }
func (s *Session) markConsumerReady() { atomic.StoreUint32(&s.cb.consumerReady, 1) }

func (s *Session) producerIsReady() bool { return atomic.LoadUint32(&s.cb.producerReady) != 0 }
func (s *Session) consumerIsReady() bool { return atomic.LoadUint32(&s.cb.consumerReady) != 0 }

// waitFlag polls a readiness flag with the standard backoff. timeout 0
// is a single check.
func waitFlag(flag func() bool, timeout, poll time.Duration, what string) error {
	deadline := time.Now().Add(timeout)
	for !flag() {
		if timeout == 0 || !time.Now().Before(deadline) {
			return fmt.Errorf("%s not ready: %w", what, ErrTimeout)
		}
		time.Sleep(poll)
	}
	return nil
}

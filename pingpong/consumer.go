package pingpong

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Consumer is the read side of a session. One execution context only:
// either an interrupt-triggered task or a polling loop, never both at
// once.
type Consumer struct {
	s      *Session
	bridge bridge
	poll   time.Duration
}

// ConsumerConfig wires the read side to its platform collaborators.
type ConsumerConfig struct {
	// Notify is the doorbell toward the producer core. May be nil.
	Notify Notifier
	// Log receives non-fatal notification failures. May be nil.
	Log Logger
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
}

// NewConsumer binds the read side to an attached, initialized session
// and raises the consumer readiness flag.
func NewConsumer(s *Session, cfg ConsumerConfig) (*Consumer, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil session", ErrInvalidArgument)
	}
	if !s.initialized() {
		return nil, ErrNotInitialized
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	c := &Consumer{
		s:      s,
		bridge: bridge{peer: cfg.Notify, log: cfg.Log, name: "consumer"},
		poll:   poll,
	}
	s.markConsumerReady()
	return c, nil
}

// WaitPeerReady blocks until the producer has attached, or ErrTimeout.
func (c *Consumer) WaitPeerReady(timeout time.Duration) error {
	return waitFlag(c.s.producerIsReady, timeout, c.poll, "producer")
}

// AcquireForRead claims the oldest ready buffer.
//
// Production is round-robin over physical buffers, so under contention
// buffer 1 can become READY while buffer 0 is still mid-cycle; picking
// the smallest write timestamp restores FIFO delivery order. timeout 0
// is the usual mode: woken by the doorbell, the consumer makes a single
// non-blocking check.
func (c *Consumer) AcquireForRead(timeout time.Duration) (*Handle, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		id := -1
		var oldest uint64
		for b := 0; b < BufferCount; b++ {
			if c.s.StateOf(b) != StateReady {
				continue
			}
			ts := atomic.LoadUint64(&c.s.cb.lastWriteTS[b])
			if id < 0 || ts < oldest {
				id = b
				oldest = ts
			}
		}
		if id >= 0 {
			if c.s.tryTransition(id, StateReady, StateReading) {
				return &Handle{id: id, data: c.s.buf[id], s: c.s}, nil
			}
			// Lost the claim; re-scan without sleeping.
			continue
		}

		if timeout == 0 || !time.Now().Before(deadline) {
			atomic.AddUint32(&c.s.cb.timeoutCount, 1)
			return nil, ErrTimeout
		}
		time.Sleep(c.poll)
	}
}

// Release returns a drained buffer to the pool. The READING->IDLE swap
// makes the payload region writable by the producer again; the producer
// can never reuse a buffer the consumer is still logically reading,
// because only this call moves it out of READING. The read counter and
// stamp go in before the swap, mirroring Commit, so they are never
// stale relative to an observed IDLE. Notification failure is
// non-fatal: the buffer is already IDLE and reusable.
func (c *Consumer) Release(h *Handle) error {
	if err := checkHandle(h, c.s); err != nil {
		return fmt.Errorf("release: %w", err)
	}
	if h.done {
		atomic.AddUint32(&c.s.cb.stateErrCount, 1)
		return fmt.Errorf("release buffer %d in state %s: %w", h.id, c.s.StateOf(h.id), ErrInvalidState)
	}

	atomic.AddUint32(&c.s.cb.readCount[h.id], 1)
	atomic.StoreUint64(&c.s.cb.lastReadTS[h.id], c.s.now())

	if !c.s.tryTransition(h.id, StateReading, StateIdle) {
		atomic.AddUint32(&c.s.cb.stateErrCount, 1)
		return fmt.Errorf("release buffer %d in state %s: %w", h.id, c.s.StateOf(h.id), ErrInvalidState)
	}
	h.done = true
	c.bridge.ring()
	return nil
}

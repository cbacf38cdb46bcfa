package pingpong

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Producer is the write side of a session. Exactly one execution
// context may use it; the protocol assumes a single writer thread.
type Producer struct {
	s      *Session
	bridge bridge
	poll   time.Duration
	last   int
}

// ProducerConfig wires the write side to its platform collaborators.
type ProducerConfig struct {
	// Notify is the doorbell toward the consumer core. Nil is allowed:
	// the consumer then runs on polling alone.
	Notify Notifier
	// Log receives non-fatal notification failures. May be nil.
	Log Logger
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
}

// NewProducer binds the write side to an attached, initialized session
// and raises the producer readiness flag for the peer's handshake.
func NewProducer(s *Session, cfg ProducerConfig) (*Producer, error) {
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
	p := &Producer{
		s:      s,
		bridge: bridge{peer: cfg.Notify, log: cfg.Log, name: "producer"},
		poll:   poll,
		// First acquire starts its round-robin scan at buffer 0.
		last: BufferCount - 1,
	}
	s.markProducerReady()
	return p, nil
}

// WaitPeerReady blocks until the consumer has attached, or ErrTimeout.
func (p *Producer) WaitPeerReady(timeout time.Duration) error {
	return waitFlag(p.s.consumerIsReady, timeout, p.poll, "consumer")
}

// AcquireForWrite claims an idle buffer for filling.
//
// Candidates are tried round-robin starting from the buffer not handed
// out last time, so consecutive acquisitions alternate buffers under
// non-contended load. When a scan observes both buffers non-idle the
// consumer is not draining: that is an overrun, counted exactly once
// per call no matter how many poll iterations follow. The wait is a
// bounded busy-wait with a fixed sleep; timeout 0 is a single
// non-blocking pass. On expiry the timeout counter is bumped and
// ErrTimeout returned with no buffer held.
func (p *Producer) AcquireForWrite(timeout time.Duration) (*Handle, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	overrun := false
	for {
		for i := 1; i <= BufferCount; i++ {
			id := (p.last + i) % BufferCount
			if p.s.tryTransition(id, StateIdle, StateWriting) {
				p.last = id
				return &Handle{id: id, data: p.s.buf[id], s: p.s}, nil
			}
		}

		if !overrun && p.s.StateOf(0) != StateIdle && p.s.StateOf(1) != StateIdle {
			overrun = true
			atomic.AddUint32(&p.s.cb.overrunCount, 1)
		}

		if timeout == 0 || !time.Now().Before(deadline) {
			atomic.AddUint32(&p.s.cb.timeoutCount, 1)
			return nil, ErrTimeout
		}
		time.Sleep(p.poll)
	}
}

// Commit publishes a written buffer to the consumer.
//
// The successful WRITING->READY swap is the publication point and must
// be the last store of the cycle: the payload, the write counter, and
// the lastWriteTS stamp all go in while the buffer is still exclusively
// held in WRITING, so any observer of READY sees this cycle's stamp,
// never the previous one. The consumer's FIFO ordering depends on that;
// a stamp landing after the swap could be outraced by a scan and make a
// recycled buffer look older than it is. A notification failure is
// logged and does not roll anything back; the buffer is correctly READY
// and a future consumer poll will find it.
func (p *Producer) Commit(h *Handle) error {
	if err := checkHandle(h, p.s); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	if h.done {
		atomic.AddUint32(&p.s.cb.stateErrCount, 1)
		return fmt.Errorf("commit buffer %d in state %s: %w", h.id, p.s.StateOf(h.id), ErrInvalidState)
	}

	atomic.AddUint32(&p.s.cb.writeCount[h.id], 1)
	atomic.StoreUint64(&p.s.cb.lastWriteTS[h.id], p.s.now())

	if !p.s.tryTransition(h.id, StateWriting, StateReady) {
		atomic.AddUint32(&p.s.cb.stateErrCount, 1)
		return fmt.Errorf("commit buffer %d in state %s: %w", h.id, p.s.StateOf(h.id), ErrInvalidState)
	}
	h.done = true
	p.bridge.ring()
	return nil
}

package pingpong

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"
)

// testRegion allocates an 8-byte-aligned region like the HALs do.
func testRegion(t *testing.T) []byte {
	t.Helper()
	words := make([]uint64, RegionSize/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), RegionSize)
}

// testClock is a strictly increasing microsecond stamp, safe from both sides.
func testClock() Clock {
	var n uint64
	return func() uint64 { return atomic.AddUint64(&n, 1) }
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := Attach(testRegion(t), testClock())
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	s.Init(Config{})
	return s
}

func newTestPair(t *testing.T) (*Session, *Producer, *Consumer) {
	t.Helper()
	s := newTestSession(t)
	p, err := NewProducer(s, ProducerConfig{})
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}
	c, err := NewConsumer(s, ConsumerConfig{})
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	return s, p, c
}

func TestAttachRejectsBadRegion(t *testing.T) {
	if _, err := Attach(make([]byte, 16), testClock()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Attach(short region) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := Attach(testRegion(t), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Attach(nil clock) error = %v, want ErrInvalidArgument", err)
	}
}

func TestPathsRequireInit(t *testing.T) {
	s, err := Attach(testRegion(t), testClock())
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if _, err := NewProducer(s, ProducerConfig{}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("NewProducer() error = %v, want ErrNotInitialized", err)
	}
	if _, err := NewConsumer(s, ConsumerConfig{}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("NewConsumer() error = %v, want ErrNotInitialized", err)
	}
}

func TestInitParksBuffersIdle(t *testing.T) {
	s := newTestSession(t)
	for id := 0; id < BufferCount; id++ {
		if got := s.StateOf(id); got != StateIdle {
			t.Fatalf("StateOf(%d) = %s, want idle", id, got)
		}
	}
	if got := s.Timeout(); got != DefaultTimeout {
		t.Fatalf("Timeout() = %v, want %v", got, DefaultTimeout)
	}
}

func TestReadinessHandshake(t *testing.T) {
	s, p, c := newTestPair(t)
	_ = s
	if err := p.WaitPeerReady(0); err != nil {
		t.Fatalf("producer WaitPeerReady() error = %v", err)
	}
	if err := c.WaitPeerReady(0); err != nil {
		t.Fatalf("consumer WaitPeerReady() error = %v", err)
	}
}

func TestWaitPeerReadyTimesOut(t *testing.T) {
	s := newTestSession(t)
	p, err := NewProducer(s, ProducerConfig{})
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}
	if err := p.WaitPeerReady(0); !errors.Is(err, ErrTimeout) {
		t.Fatalf("WaitPeerReady(0) error = %v, want ErrTimeout", err)
	}
}

// One full handoff, checked at every step: acquire buffer 0, write a
// pattern, commit, read it back, release, and re-acquire immediately.
func TestEndToEndHandoff(t *testing.T) {
	s, p, c := newTestPair(t)

	wh, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	if wh.ID() != 0 {
		t.Fatalf("first acquire ID() = %d, want 0", wh.ID())
	}
	if wh.Size() != BufferSize {
		t.Fatalf("Size() = %d, want %d", wh.Size(), BufferSize)
	}
	pattern := make([]byte, 256)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	copy(wh.Bytes(), pattern)
	if err := p.Commit(wh); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if got := s.StateOf(0); got != StateReady {
		t.Fatalf("StateOf(0) after commit = %s, want ready", got)
	}
	if st := s.Stats(); st.Writes[0] != 1 {
		t.Fatalf("Writes[0] = %d, want 1", st.Writes[0])
	}

	rh, err := c.AcquireForRead(0)
	if err != nil {
		t.Fatalf("AcquireForRead() error = %v", err)
	}
	if rh.ID() != 0 {
		t.Fatalf("read acquire ID() = %d, want 0", rh.ID())
	}
	if !bytes.Equal(rh.Bytes()[:len(pattern)], pattern) {
		t.Fatalf("payload mismatch after handoff")
	}
	if err := c.Release(rh); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if got := s.StateOf(0); got != StateIdle {
		t.Fatalf("StateOf(0) after release = %s, want idle", got)
	}
	if st := s.Stats(); st.Reads[0] != 1 {
		t.Fatalf("Reads[0] = %d, want 1", st.Reads[0])
	}

	// Producer can reclaim the buffer right away; round-robin prefers
	// the other buffer first, but buffer 0 must be claimable.
	wh2, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("re-AcquireForWrite() error = %v", err)
	}
	if err := p.Commit(wh2); err != nil {
		t.Fatalf("re-Commit() error = %v", err)
	}
}

// Producer fills both buffers with no consumer: the third acquire sees
// both non-idle, counts exactly one overrun, and times out.
func TestOverrunThenTimeoutWhenConsumerStalls(t *testing.T) {
	s, p, _ := newTestPair(t)

	for i := 0; i < BufferCount; i++ {
		h, err := p.AcquireForWrite(0)
		if err != nil {
			t.Fatalf("AcquireForWrite() #%d error = %v", i, err)
		}
		if err := p.Commit(h); err != nil {
			t.Fatalf("Commit() #%d error = %v", i, err)
		}
	}

	// Long enough for many poll iterations.
	_, err := p.AcquireForWrite(5 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("AcquireForWrite() error = %v, want ErrTimeout", err)
	}
	st := s.Stats()
	if st.Overruns != 1 {
		t.Fatalf("Overruns = %d, want 1 (exactly once per call)", st.Overruns)
	}
	if st.Timeouts != 1 {
		t.Fatalf("Timeouts = %d, want 1", st.Timeouts)
	}

	// A second stalled call accounts a second overrun.
	if _, err := p.AcquireForWrite(time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("second AcquireForWrite() error = %v, want ErrTimeout", err)
	}
	if st := s.Stats(); st.Overruns != 2 {
		t.Fatalf("Overruns = %d, want 2", st.Overruns)
	}
}

func TestNotifyFailureDoesNotRevertCommit(t *testing.T) {
	s := newTestSession(t)
	log := &captureLog{}
	p, err := NewProducer(s, ProducerConfig{Notify: failingBell{}, Log: log})
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}

	h, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	if err := p.Commit(h); err != nil {
		t.Fatalf("Commit() error = %v, want nil despite notify failure", err)
	}
	if got := s.StateOf(h.ID()); got != StateReady {
		t.Fatalf("StateOf() = %s, want ready", got)
	}
	if len(log.lines) != 1 {
		t.Fatalf("logged %d lines, want 1", len(log.lines))
	}
}

type failingBell struct{}

func (failingBell) Notify() error { return errors.New("mailbox busy") }

type captureLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *captureLog) WriteLineString(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

// Sustained concurrent handoff: frames carry a sequence number and must
// arrive complete and in order.
func TestConcurrentProducerConsumerDelivery(t *testing.T) {
	s, p, c := newTestPair(t)
	_ = s

	const frames = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for seq := uint32(0); seq < frames; {
			h, err := p.AcquireForWrite(time.Second)
			if err != nil {
				continue
			}
			fillFrame(h.Bytes(), seq)
			if err := p.Commit(h); err != nil {
				t.Errorf("Commit() seq %d error = %v", seq, err)
				return
			}
			seq++
		}
	}()

	next := uint32(0)
	for next < frames {
		h, err := c.AcquireForRead(time.Second)
		if err != nil {
			t.Fatalf("AcquireForRead() at seq %d error = %v", next, err)
		}
		seq, ok := checkFrame(h.Bytes())
		if !ok {
			t.Fatalf("frame %d corrupt", next)
		}
		if seq != next {
			t.Fatalf("frame out of order: got seq %d, want %d", seq, next)
		}
		if err := c.Release(h); err != nil {
			t.Fatalf("Release() seq %d error = %v", seq, err)
		}
		next++
	}
	wg.Wait()

	st := s.Stats()
	if got := st.TotalWrites(); got != frames {
		t.Fatalf("TotalWrites() = %d, want %d", got, frames)
	}
	if got := st.TotalReads(); got != frames {
		t.Fatalf("TotalReads() = %d, want %d", got, frames)
	}
	for id := 0; id < BufferCount; id++ {
		if got := s.StateOf(id); got != StateIdle {
			t.Fatalf("StateOf(%d) after drain = %s, want idle", id, got)
		}
	}
}

func fillFrame(b []byte, seq uint32) {
	b[0] = byte(seq)
	b[1] = byte(seq >> 8)
	b[2] = byte(seq >> 16)
	b[3] = byte(seq >> 24)
	for i := 4; i < 64; i++ {
		b[i] = byte(seq) + byte(i)
	}
}

func checkFrame(b []byte) (uint32, bool) {
	seq := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	for i := 4; i < 64; i++ {
		if b[i] != byte(seq)+byte(i) {
			return seq, false
		}
	}
	return seq, true
}

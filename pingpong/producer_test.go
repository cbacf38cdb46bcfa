package pingpong

import (
	"errors"
	"testing"
	"time"
)

func TestAcquireForWriteAlternatesBuffers(t *testing.T) {
	_, p, c := newTestPair(t)

	want := []int{0, 1, 0, 1}
	for i, wantID := range want {
		wh, err := p.AcquireForWrite(0)
		if err != nil {
			t.Fatalf("AcquireForWrite() #%d error = %v", i, err)
		}
		if wh.ID() != wantID {
			t.Fatalf("AcquireForWrite() #%d ID() = %d, want %d", i, wh.ID(), wantID)
		}
		if err := p.Commit(wh); err != nil {
			t.Fatalf("Commit() #%d error = %v", i, err)
		}
		rh, err := c.AcquireForRead(0)
		if err != nil {
			t.Fatalf("AcquireForRead() #%d error = %v", i, err)
		}
		if err := c.Release(rh); err != nil {
			t.Fatalf("Release() #%d error = %v", i, err)
		}
	}
}

// With buffer 1 stuck, round-robin still serves buffer 0 every time.
func TestAcquireForWriteSkipsBusyBuffer(t *testing.T) {
	_, p, c := newTestPair(t)

	// Park buffer 0 in ready so the producer's next candidate is 1... then
	// hold 1 in writing and verify 0 comes back after the consumer drains it.
	wh, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	if err := p.Commit(wh); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	held, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	if held.ID() != 1 {
		t.Fatalf("ID() = %d, want 1", held.ID())
	}

	rh, err := c.AcquireForRead(0)
	if err != nil {
		t.Fatalf("AcquireForRead() error = %v", err)
	}
	if err := c.Release(rh); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	// Buffer 1 is still held in writing; only 0 is claimable.
	wh2, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() with buffer 1 held error = %v", err)
	}
	if wh2.ID() != 0 {
		t.Fatalf("ID() = %d, want 0", wh2.ID())
	}
}

func TestAcquireForWriteZeroTimeoutIsSingleAttempt(t *testing.T) {
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

	start := time.Now()
	_, err := p.AcquireForWrite(0)
	elapsed := time.Since(start)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("AcquireForWrite(0) error = %v, want ErrTimeout", err)
	}
	if elapsed > 10*time.Millisecond {
		t.Fatalf("AcquireForWrite(0) took %v, want immediate return", elapsed)
	}
	if st := s.Stats(); st.Timeouts != 1 {
		t.Fatalf("Timeouts = %d, want 1", st.Timeouts)
	}
}

func TestCommitTwiceFailsSecondTime(t *testing.T) {
	s, p, _ := newTestPair(t)

	h, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	if err := p.Commit(h); err != nil {
		t.Fatalf("first Commit() error = %v", err)
	}
	if err := p.Commit(h); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Commit() error = %v, want ErrInvalidState", err)
	}

	st := s.Stats()
	if st.Writes[h.ID()] != 1 {
		t.Fatalf("Writes[%d] = %d, want 1", h.ID(), st.Writes[h.ID()])
	}
	if st.StateErrors != 1 {
		t.Fatalf("StateErrors = %d, want 1", st.StateErrors)
	}
	if got := s.StateOf(h.ID()); got != StateReady {
		t.Fatalf("StateOf() = %s, want ready (double commit must not mutate)", got)
	}
}

func TestCommitRejectsBadHandles(t *testing.T) {
	s, p, _ := newTestPair(t)

	if err := p.Commit(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Commit(nil) error = %v, want ErrInvalidArgument", err)
	}

	other := newTestSession(t)
	foreign := &Handle{id: 0, data: other.buf[0], s: other}
	if err := p.Commit(foreign); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Commit(foreign) error = %v, want ErrInvalidArgument", err)
	}

	// Nothing above may have touched shared state.
	if st := s.Stats(); st.StateErrors != 0 || st.Writes[0] != 0 {
		t.Fatalf("Stats() = %+v, want untouched", st)
	}
}

func TestCommitWithoutWritingStateFails(t *testing.T) {
	s, p, _ := newTestPair(t)

	h, err := p.AcquireForWrite(0)
	if err != nil {
		t.Fatalf("AcquireForWrite() error = %v", err)
	}
	// Simulate a stuck peer yanking the buffer out from under the caller.
	if !s.tryTransition(h.ID(), StateWriting, StateIdle) {
		t.Fatalf("test setup: could not force buffer idle")
	}
	if err := p.Commit(h); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("Commit() error = %v, want ErrInvalidState", err)
	}
}

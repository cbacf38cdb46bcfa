//go:build !tinygo

package hal

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestHostMailboxDeliversNotify(t *testing.T) {
	m := newHostMailbox()

	var hits atomic.Int32
	done := make(chan struct{})
	m.SetHandler(func() {
		if hits.Add(1) == 1 {
			close(done)
		}
	})

	if err := m.Notify(); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never invoked")
	}
}

// A burst of rings before the handler runs must coalesce like a latched
// IRQ: at least one invocation, never more than the number of rings.
func TestHostMailboxCoalescesBursts(t *testing.T) {
	m := newHostMailbox()

	var hits atomic.Int32
	m.SetHandler(func() {
		hits.Add(1)
		time.Sleep(time.Millisecond)
	})

	const rings = 50
	for i := 0; i < rings; i++ {
		if err := m.Notify(); err != nil {
			t.Fatalf("Notify() #%d error = %v", i, err)
		}
	}

	deadline := time.Now().Add(time.Second)
	for hits.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)

	got := hits.Load()
	if got < 1 || got > rings {
		t.Fatalf("handler invocations = %d, want 1..%d", got, rings)
	}
}

func TestHostRegionShapeMatchesLayout(t *testing.T) {
	h := New()
	region := h.SharedMem()
	if len(region)%8 != 0 {
		t.Fatalf("region length %d not a multiple of 8", len(region))
	}
	// Same object on every call: both "cores" must address one region.
	if &region[0] != &h.SharedMem()[0] {
		t.Fatal("SharedMem() returned distinct regions")
	}
}

//go:build tinygo && (rp2040 || rp2350)

package hal

import (
	"device/arm"
	"device/rp"
	"time"
)

// sioMailbox rides the inter-core hardware FIFO as a doorbell. Each
// core's FIFO write port feeds the other core's read port, so direction
// is resolved by which core executes the call; the pushed word carries
// no information.
//
// Only the core-0 (consumer) side registers a handler in this system;
// the producer on core 1 relies on the protocol's bounded poll, and a
// full FIFO just means a wakeup is already pending.
type sioMailbox struct {
	handler func()
}

const doorbellWord = 0x5EE5A011

func (m *sioMailbox) Notify() error {
	if rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_RDY == 0 {
		// Peer has unread doorbells queued; coalesce.
		return nil
	}
	rp.SIO.FIFO_WR.Set(doorbellWord)
	arm.Asm("sev")
	return nil
}

// SetHandler drains this core's receive FIFO on a watcher goroutine and
// invokes fn once per batch of pending doorbells.
func (m *sioMailbox) SetHandler(fn func()) {
	m.handler = fn
	go m.watch()
}

func (m *sioMailbox) watch() {
	for {
		rang := false
		for rp.SIO.FIFO_ST.Get()&rp.SIO_FIFO_ST_VLD != 0 {
			rp.SIO.FIFO_RD.Get()
			rang = true
		}
		if rang && m.handler != nil {
			m.handler()
		}
		time.Sleep(50 * time.Microsecond)
	}
}

//go:build !tinygo

package hal

import "time"

type hostTime struct {
	ch    chan uint64
	seq   uint64
	start time.Time

	last time.Time
	acc  time.Duration
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 1024), start: time.Now()}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// NowMicros is the timestamp source for the shared control block. Both
// simulated cores read the same process clock, so producer and consumer
// stamps are directly comparable.
func (t *hostTime) NowMicros() uint64 {
	return uint64(time.Since(t.start) / time.Microsecond)
}

func (t *hostTime) step(n uint64) {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	const tickDur = time.Millisecond
	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
		}
	}
}

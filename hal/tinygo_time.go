//go:build tinygo && (rp2040 || rp2350)

package hal

import "time"

type tinyGoTime struct {
	ch    chan uint64
	seq   uint64
	start time.Time
}

func newTinyGoTime() *tinyGoTime {
	t := &tinyGoTime{ch: make(chan uint64, 16), start: time.Now()}
	go func() {
		ticker := time.NewTicker(1 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			t.seq++
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}()
	return t
}

func (t *tinyGoTime) Ticks() <-chan uint64 { return t.ch }

// NowMicros reads the shared hardware timer, so stamps from either core
// are directly comparable.
func (t *tinyGoTime) NowMicros() uint64 {
	return uint64(time.Since(t.start) / time.Microsecond)
}

package app

import (
	"errors"
	"time"

	"seesaw/dsp"
	"seesaw/pingpong"
)

// safetyPoll bounds how long the consumer sleeps when a doorbell ring
// is lost. The doorbell is a hint, not the source of truth, so the
// loop always falls back to polling.
const safetyPoll = 50 * time.Millisecond

// consumeLoop waits for doorbell rings and drains every ready frame.
// The periodic stats line lives on the tick stream, not here, so a
// stalled protocol still reports its counters.
func (s *system) consumeLoop() {
	log := s.h.Logger()
	if err := s.cons.WaitPeerReady(peerWait); err != nil {
		log.WriteLineString("consumer: peer never became ready: " + err.Error())
		return
	}

	for {
		select {
		case <-s.wake:
		case <-time.After(safetyPoll):
		}

		for {
			h, err := s.cons.AcquireForRead(0)
			if errors.Is(err, pingpong.ErrTimeout) {
				break
			}
			if err != nil {
				log.WriteLineString("consumer: acquire: " + err.Error())
				return
			}
			s.handleFrame(h)
		}
	}
}

func (s *system) handleFrame(h *pingpong.Handle) {
	log := s.h.Logger()

	// Copy out before releasing; the buffer goes back to the producer.
	n := dsp.Samples(s.signal, h.Bytes())
	if err := s.cons.Release(h); err != nil {
		log.WriteLineString("consumer: release: " + err.Error())
		return
	}
	if n < s.cfg.FFTSize {
		log.WriteLineString("consumer: short frame, dropping")
		return
	}

	bins, err := s.an.TopBins(s.signal, s.cfg.TopBins)
	if err != nil {
		log.WriteLineString("consumer: analyze: " + err.Error())
		return
	}

	s.frames++
	s.blink()
	s.rend.draw(bins, s.sess.Stats())
}

// blink toggles the liveness LED every 16 frames.
func (s *system) blink() {
	led := s.h.LED()
	if led == nil {
		return
	}
	if s.frames&0x10 != 0 {
		led.High()
	} else {
		led.Low()
	}
}

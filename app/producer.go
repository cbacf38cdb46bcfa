package app

import (
	"errors"
	"math"
	"time"

	"seesaw/dsp"
	"seesaw/pingpong"
)

// carrierBin is the fixed tone the spectrum always shows; a second tone
// sweeps upward one bin per frame so the display visibly moves.
const carrierBin = 48

const peerWait = 5 * time.Second

// produceLoop runs on the producer core. It fills frames with a
// two-tone test signal and commits them at the configured rate.
func (s *system) produceLoop() {
	log := s.h.Logger()
	if err := s.prod.WaitPeerReady(peerWait); err != nil {
		log.WriteLineString("producer: peer never became ready: " + err.Error())
		return
	}

	interval := time.Second / time.Duration(s.cfg.FrameRate)
	signal := make([]int16, s.cfg.FFTSize)
	frame := 0
	for {
		h, err := s.prod.AcquireForWrite(s.sess.Timeout())
		if errors.Is(err, pingpong.ErrTimeout) {
			// Consumer is behind; the overrun counter already recorded it.
			continue
		}
		if err != nil {
			log.WriteLineString("producer: acquire: " + err.Error())
			return
		}

		fillSignal(signal, frame)
		dsp.PutSamples(h.Bytes(), signal)
		if err := s.prod.Commit(h); err != nil {
			log.WriteLineString("producer: commit: " + err.Error())
			return
		}

		frame++
		time.Sleep(interval)
	}
}

func fillSignal(dst []int16, frame int) {
	size := len(dst)
	span := size/2 - 32
	if span < 1 {
		span = 1
	}
	sweep := 16 + frame%span
	for i := range dst {
		ph := 2 * math.Pi * float64(i) / float64(size)
		v := 0.55*math.Sin(float64(carrierBin)*ph) + 0.30*math.Sin(float64(sweep)*ph)
		dst[i] = dsp.Q15FromFloat(v)
	}
}

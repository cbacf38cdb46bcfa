package dsp

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadLength reports a signal whose length does not match the
// analyzer's configured transform size.
var ErrBadLength = errors.New("dsp: signal length does not match FFT size")

// Analyzer finds the strongest frequency bins in a block of q15
// samples. Implementations skip the DC bin; results are ordered by
// descending magnitude.
type Analyzer interface {
	TopBins(signal []int16, n int) ([]uint16, error)
}

// Spectrum is the reference Analyzer: a Hann-windowed iterative
// radix-2 FFT in float64. It keeps its scratch buffers across calls
// and is not safe for concurrent use.
type Spectrum struct {
	size   int
	window []float64
	re     []float64
	im     []float64
	mag    []float64
}

// NewSpectrum builds an analyzer for the given transform size, which
// must be a power of two of at least 4.
func NewSpectrum(size int) (*Spectrum, error) {
	if size < 4 || size&(size-1) != 0 {
		return nil, fmt.Errorf("dsp: FFT size %d is not a power of two >= 4", size)
	}
	s := &Spectrum{
		size:   size,
		window: make([]float64, size),
		re:     make([]float64, size),
		im:     make([]float64, size),
		mag:    make([]float64, size/2+1),
	}
	for i := range s.window {
		s.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return s, nil
}

// Size returns the transform size the analyzer was built for.
func (s *Spectrum) Size() int { return s.size }

// TopBins windows and transforms signal, then returns the indices of
// the n strongest bins, loudest first. Bin 0 (DC) is never reported.
func (s *Spectrum) TopBins(signal []int16, n int) ([]uint16, error) {
	if len(signal) != s.size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadLength, len(signal), s.size)
	}
	if n <= 0 || n > s.size/2 {
		return nil, fmt.Errorf("dsp: bin count %d out of range [1, %d]", n, s.size/2)
	}

	for i := 0; i < s.size; i++ {
		s.re[i] = FloatFromQ15(signal[i]) * s.window[i]
		s.im[i] = 0
	}
	s.transform()

	// Magnitude squared is enough for ranking.
	for b := 1; b <= s.size/2; b++ {
		s.mag[b] = s.re[b]*s.re[b] + s.im[b]*s.im[b]
	}

	// n is small, so a repeated scan beats sorting the whole spectrum.
	out := make([]uint16, 0, n)
	for len(out) < n {
		best := 0
		for b := 1; b <= s.size/2; b++ {
			if s.mag[b] > s.mag[best] {
				best = b
			}
		}
		if best == 0 {
			break
		}
		out = append(out, uint16(best))
		s.mag[best] = 0
	}
	return out, nil
}

// transform runs the in-place decimation-in-time FFT over re/im.
func (s *Spectrum) transform() {
	// Bit-reversal permutation.
	for i, j := 1, 0; i < s.size; i++ {
		bit := s.size >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			s.re[i], s.re[j] = s.re[j], s.re[i]
			s.im[i], s.im[j] = s.im[j], s.im[i]
		}
	}

	for length := 2; length <= s.size; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		wr, wi := math.Cos(ang), math.Sin(ang)
		for start := 0; start < s.size; start += length {
			cr, ci := 1.0, 0.0
			for k := 0; k < length/2; k++ {
				i := start + k
				j := i + length/2
				tr := s.re[j]*cr - s.im[j]*ci
				ti := s.re[j]*ci + s.im[j]*cr
				s.re[j] = s.re[i] - tr
				s.im[j] = s.im[i] - ti
				s.re[i] += tr
				s.im[i] += ti
				cr, ci = cr*wr-ci*wi, cr*wi+ci*wr
			}
		}
	}
}

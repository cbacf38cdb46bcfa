package dsp

// Frames on the wire carry q15 samples: signed 16-bit fixed point with
// 15 fractional bits, little-endian.

// Q15Max is the largest representable q15 value, just under +1.0.
const Q15Max = 1<<15 - 1

// Q15FromFloat converts a unit-range float to q15, saturating at the
// representable extremes.
func Q15FromFloat(v float64) int16 {
	if v >= 1.0 {
		return Q15Max
	}
	if v <= -1.0 {
		return -Q15Max - 1
	}
	return int16(v * (1 << 15))
}

// FloatFromQ15 converts a q15 sample back to the unit range.
func FloatFromQ15(v int16) float64 {
	return float64(v) / (1 << 15)
}

// PutSamples packs src into dst little-endian and reports the number of
// samples written. It stops at whichever of the two runs out first.
func PutSamples(dst []byte, src []int16) int {
	n := len(src)
	if max := len(dst) / 2; n > max {
		n = max
	}
	for i := 0; i < n; i++ {
		dst[2*i] = byte(src[i])
		dst[2*i+1] = byte(uint16(src[i]) >> 8)
	}
	return n
}

// Samples unpacks little-endian q15 samples from src into dst and
// reports the number of samples read.
func Samples(dst []int16, src []byte) int {
	n := len(src) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = int16(uint16(src[2*i]) | uint16(src[2*i+1])<<8)
	}
	return n
}

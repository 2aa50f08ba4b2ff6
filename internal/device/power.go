package device

import "math"

// powerDBFS converts an accumulated sum-of-squares over n complex IQ
// samples into an average power in dBFS, 10*log10(mean |iq|^2) - 3, so a
// full-scale complex tone (mean power 1) reads -3dBFS.
func powerDBFS(sumSq float64, n int) float32 {
	if n == 0 {
		return float32(math.Inf(-1))
	}
	mean := sumSq / float64(n)
	if mean <= 0 {
		return float32(math.Inf(-1))
	}
	return float32(10*math.Log10(mean) - 3)
}

// BlockPowerDBFS computes the average dBFS power of a block of IQ samples,
// for callers (e.g. the Airspy backend) that assemble a block before
// delivery rather than accumulating power inline.
func BlockPowerDBFS(iq []complex64) float32 {
	var sumSq float64
	for _, s := range iq {
		re, im := float64(real(s)), float64(imag(s))
		sumSq += re*re + im*im
	}
	return powerDBFS(sumSq, len(iq))
}

package msd

import "math"

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

// GenerateTranslator builds the complex exponential cycle used to mix a
// channel at offsetHz (signed, relative to the tuner center) down to
// baseband at the given sample rate. Per spec.md §4.4 the cycle length N
// must be even and a multiple of the first decimation stage's M; this is
// achieved by taking N as the least common multiple of the exponential's
// natural period (sampleRateHz / gcd(|offsetHz|, sampleRateHz)) and
// firstStageM, doubled if necessary to keep N even.
//
// An offsetHz of 0 (channel at tuner center) returns an empty slice,
// signaling bypass mode to MSD.New.
func GenerateTranslator(sampleRateHz uint32, offsetHz int32, firstStageM int) []complex64 {
	if offsetHz == 0 {
		return nil
	}

	period := int64(sampleRateHz) / gcd(int64(offsetHz), int64(sampleRateHz))
	n := lcm(period, int64(firstStageM))
	if n%2 != 0 {
		n *= 2
	}

	translator := make([]complex64, n)
	for i := int64(0); i < n; i++ {
		phase := -2 * math.Pi * float64(offsetHz) * float64(i) / float64(sampleRateHz)
		translator[i] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}
	return translator
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

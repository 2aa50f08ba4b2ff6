package msd

import "math"

// designLowpass synthesizes a symmetric (odd-length), unity-DC-gain FIR
// low-pass filter via a windowed-sinc design (Kaiser window), standing in
// for the Octave sincflt()/fltbox() helpers referenced in the original
// sdrx filter-coefficient headers. spec.md §6 explicitly permits
// regenerating the coefficient tables provided the per-stage dynamic-range
// and stopband-attenuation targets are met; this function is parameterized
// directly by the desired stopband attenuation so callers can hit those
// targets.
//
// cutoff is the normalized cutoff frequency (0, 0.5) relative to the
// stage's *input* sample rate (i.e. 0.5/M gives a decimator's natural
// Nyquist-matched cutoff for decimation factor M). stopbandDB is the
// desired stopband attenuation in dB, which drives both the Kaiser beta
// parameter and the number of taps via the standard Kaiser-window length
// estimate.
func designLowpass(cutoff float64, stopbandDB float64, transitionWidth float64) []float32 {
	beta := kaiserBeta(stopbandDB)

	// Kaiser's empirical tap-count estimate: N ~= (A - 8) / (2.285 * dw) + 1
	n := int(math.Ceil((stopbandDB-8)/(2.285*2*math.Pi*transitionWidth))) + 1
	if n%2 == 0 {
		n++
	}
	if n < 5 {
		n = 5
	}

	taps := make([]float32, n)
	m := n - 1
	var sum float64
	for i := 0; i < n; i++ {
		x := float64(i) - float64(m)/2
		var sinc float64
		if x == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		w := kaiserWindow(i, m, beta)
		v := sinc * w
		taps[i] = float32(v)
		sum += v
	}

	// Normalize for unity DC gain.
	if sum != 0 {
		for i := range taps {
			taps[i] = float32(float64(taps[i]) / sum)
		}
	}

	return taps
}

func kaiserBeta(attenDB float64) float64 {
	switch {
	case attenDB > 50:
		return 0.1102 * (attenDB - 8.7)
	case attenDB >= 21:
		return 0.5842*math.Pow(attenDB-21, 0.4) + 0.07886*(attenDB-21)
	default:
		return 0
	}
}

func kaiserWindow(i, m int, beta float64) float64 {
	x := 2*float64(i)/float64(m) - 1
	arg := beta * math.Sqrt(1-x*x)
	return besselI0(arg) / besselI0(beta)
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// via its series expansion (sufficient precision for window design).
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 25; k++ {
		term *= (halfX / float64(k))
		sum += term * term
	}
	return sum
}

// Package squelch implements the per-channel FFT-based SNR squelch: a
// Hamming-windowed spectrum estimate, signal/noise bin-range power sums, and
// a hysteresis-free open/closed decision driven by a configurable SNR
// threshold (ramp smoothing across the transition lives in package audio).
package squelch

import "math"

// FFTSize is the per-channel FFT length used for the squelch spectrum
// estimate, operating on the 512-sample, 16kS/s per-channel blocks MSD
// produces.
const FFTSize = 512

// Executor runs a previously planned transform in place.
type Executor interface {
	Execute()
}

// Planner builds a forward FFT plan for a fixed-size in/out pair. The
// default implementation is backed by hz.tools/fftw; tests can substitute a
// naive DFT to avoid linking against the cgo FFTW binding.
type Planner interface {
	Plan(in, out []complex64) (Executor, error)
}

// HammingWindow returns the FFTSize+1 point Hamming window sdrx's spectrum
// estimate is built from: 0.54 - 0.46*cos(2*pi*n/N), 0<=n<=N.
func HammingWindow() []float32 {
	w := make([]float32, FFTSize+1)
	for n := range w {
		w[n] = float32(0.54 - 0.46*math.Cos(2*math.Pi*float64(n)/float64(FFTSize)))
	}
	return w
}

// Analyzer computes the SNR-based squelch decision for one channel.
type Analyzer struct {
	planner       Planner
	window        []float32
	passbandShape []float32
	in            []complex64
	out           []complex64
	plan          Executor

	// SqlLevel is the SNR threshold, in dB over the channel noise floor,
	// above which the squelch opens.
	SqlLevel float32
}

// NewAnalyzer builds a squelch Analyzer using planner for its FFT (pass nil
// for the default hz.tools/fftw-backed planner), and passbandShape as the
// per-bin weighting applied to the noise-reference bins (a vector of the
// channel filter's own frequency response, so noise measured just outside
// the passband is weighted consistently with in-band attenuation).
func NewAnalyzer(planner Planner, passbandShape []float32, sqlLevelDB float32) (*Analyzer, error) {
	if planner == nil {
		planner = NewFFTWPlanner()
	}
	a := &Analyzer{
		planner:       planner,
		window:        HammingWindow(),
		passbandShape: passbandShape,
		in:            make([]complex64, FFTSize),
		out:           make([]complex64, FFTSize),
		SqlLevel:      sqlLevelDB,
	}
	plan, err := planner.Plan(a.in, a.out)
	if err != nil {
		return nil, err
	}
	a.plan = plan
	return a, nil
}

// Result is one channel's squelch evaluation for a single block.
type Result struct {
	SNRdB    float32
	Open     bool
	LoEnergy float32
	HiEnergy float32
}

// Evaluate windows iq (must be exactly FFTSize samples), runs the FFT, and
// computes the signal/noise power sums over the fixed bin ranges sdrx uses:
// roughly +-2.8kHz for signal, 3.5kHz-4.9kHz (both sides) for the noise
// reference.
func (a *Analyzer) Evaluate(iq []complex64) Result {
	for i := 0; i < FFTSize; i++ {
		a.in[i] = complex64(complex(
			real(iq[i])*a.window[i],
			imag(iq[i])*a.window[i],
		))
	}

	a.plan.Execute()

	var sigLevel float64
	for i := 3; i < 91; i++ {
		sigLevel += norm(a.out[i])
		sigLevel += norm(a.out[FFTSize-i])
	}
	sigLevel /= 176

	var refHi, refLo float64
	for i := 112; i < 157; i++ {
		shapeHi, shapeLo := float32(1), float32(1)
		if a.passbandShape != nil && i < len(a.passbandShape) {
			shapeHi = a.passbandShape[i]
			shapeLo = a.passbandShape[len(a.passbandShape)-1-i]
		}
		refHi += norm(a.out[i]) * float64(shapeHi*shapeHi)
		refLo += norm(a.out[FFTSize-i]) * float64(shapeLo*shapeLo)
	}
	refHi /= 45
	refLo /= 45
	noiseLevel := (refHi + refLo) / 2

	var snr float64
	if noiseLevel > 0 && sigLevel > 0 {
		snr = 10 * math.Log10(sigLevel/noiseLevel)
	} else {
		snr = -math.MaxFloat32
	}

	var loEnergy, hiEnergy float64
	for i := 1; i < FFTSize/2; i++ {
		hiEnergy += norm(a.out[i])
		loEnergy += norm(a.out[i+FFTSize/2])
	}

	return Result{
		SNRdB:    float32(snr),
		Open:     float32(snr) > a.SqlLevel,
		LoEnergy: float32(loEnergy / 255),
		HiEnergy: float32(hiEnergy / 255),
	}
}

func norm(c complex64) float64 {
	re, im := float64(real(c)), float64(imag(c))
	return re*re + im*im
}

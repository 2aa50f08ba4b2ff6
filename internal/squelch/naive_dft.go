package squelch

import "math"

// naiveDFTExecutor computes an O(n^2) DFT in place of FFTW. It exists so
// squelch logic can be tested without linking against the cgo FFTW binding;
// production code always uses fftwPlanner.
type naiveDFTExecutor struct {
	in  []complex64
	out []complex64
}

func (e *naiveDFTExecutor) Execute() {
	n := len(e.in)
	for k := 0; k < n; k++ {
		var sumRe, sumIm float64
		for t := 0; t < n; t++ {
			angle := -2 * math.Pi * float64(k*t) / float64(n)
			c, s := math.Cos(angle), math.Sin(angle)
			re, im := float64(real(e.in[t])), float64(imag(e.in[t]))
			sumRe += re*c - im*s
			sumIm += re*s + im*c
		}
		e.out[k] = complex64(complex(sumRe, sumIm))
	}
}

// NaiveDFTPlanner is a Planner that uses naiveDFTExecutor, for use in tests.
type NaiveDFTPlanner struct{}

func (NaiveDFTPlanner) Plan(in, out []complex64) (Executor, error) {
	return &naiveDFTExecutor{in: in, out: out}, nil
}

package squelch

import "hz.tools/fftw"

// fftwExecutor adapts an *fftw.Plan to the Executor interface.
type fftwExecutor struct {
	plan *fftw.Plan
}

func (e *fftwExecutor) Execute() { e.plan.Execute() }

// fftwPlanner is the production Planner, backed by hz.tools/fftw (the same
// binding the reference fm/am pipelines in the hz.tools example tooling use
// for their own spectral work).
type fftwPlanner struct{}

// NewFFTWPlanner returns the default, hz.tools/fftw-backed Planner.
func NewFFTWPlanner() Planner { return fftwPlanner{} }

func (fftwPlanner) Plan(in, out []complex64) (Executor, error) {
	plan, err := fftw.Plan(in, out, fftw.Forward, fftw.Estimate)
	if err != nil {
		return nil, err
	}
	return &fftwExecutor{plan: plan}, nil
}

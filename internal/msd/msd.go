// Package msd implements the multi-stage translating downsampler: the DSP
// hot path that turns one wideband IQ stream into a single channel's 16kS/s
// complex baseband stream, per channel.
//
// Construction decides between two modes (spec.md §4.4):
//
//   - Bypass translator: the channel sits at the tuner center. Every stage
//     is a plain real-coefficient folded FIR decimator.
//   - Frequency-translating first stage (FTFIR): the channel offset is
//     folded into the first stage's coefficients, combining the mixer and
//     the first filter into one pass.
package msd

// Stage configures one decimation stage: M is the decimation factor, H is
// the (odd-length, symmetric) real low-pass FIR coefficient vector.
type Stage struct {
	M int
	H []float32
}

type decimator interface {
	addSample(complex64) bool
	calculateOutput() complex64
}

// MSD is a constructed multi-stage translating downsampler for one channel.
type MSD struct {
	stages []decimator
	m      int // total decimation factor, product of all stage Ms
}

// New constructs an MSD from a translator vector (empty for a channel at the
// tuner center) and an ordered list of stage configurations. The first
// stage absorbs the translator via FTFIR folding when the translator is
// non-empty.
func New(translator []complex64, stages []Stage) *MSD {
	if len(stages) == 0 {
		panic("msd: at least one stage required")
	}

	m := 1
	built := make([]decimator, 0, len(stages))
	for i, st := range stages {
		m *= st.M
		if i == 0 && len(translator) > 0 {
			built = append(built, newFTFIRStage(st.M, st.H, translator))
		} else {
			built = append(built, newFoldedStage(st.M, st.H))
		}
	}

	return &MSD{stages: built, m: m}
}

// M returns the total decimation factor (product of all stage M's).
func (d *MSD) M() int { return d.m }

// Decimate consumes all of in and appends decimated output samples to out
// (which may be nil), returning the extended slice. len(in) must be a
// multiple of d.M(); the number of output samples produced is exactly
// len(in)/d.M().
func (d *MSD) Decimate(in []complex64, out []complex64) []complex64 {
	for _, sample := range in {
		ready := true
		for _, st := range d.stages {
			if !st.addSample(sample) {
				ready = false
				break
			}
			sample = st.calculateOutput()
		}
		if ready {
			out = append(out, sample)
		}
	}
	return out
}

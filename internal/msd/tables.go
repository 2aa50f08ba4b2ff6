package msd

import "math"

// StageFactorization lists the decimation factors used to reach 16kS/s from
// a given input sample rate, per spec.md §4.4's table. Order matters: it is
// the order stages run in, first stage nearest the wideband input.
var StageFactorization = map[uint32][]int{
	960000:   {3, 4, 5},
	1200000:  {3, 5, 5},
	1440000:  {3, 6, 5},
	1600000:  {4, 5, 5},
	1920000:  {4, 6, 5},
	2400000:  {2, 3, 5, 5},
	2560000:  {4, 4, 5, 2},
	6000000:  {3, 5, 5, 5},
	10000000: {5, 5, 5, 5},
}

// stageTables holds the synthesized coefficient sets per rate, built once at
// init() and shared (read-only) across every channel's MSD instance for
// that rate.
var stageTables = map[uint32][]Stage{}

// chanShapeFilter is the 16kS/s post-channelization FIR shape used for the
// post-demod per-channel filter and (in stereo form) the audio-period
// stereo post-mix filter — an aeronautical-AM channel shape, ~6kHz
// double-sided bandwidth at 16kS/s.
var chanShapeFilter []float32

func init() {
	for rate, factors := range StageFactorization {
		stageTables[rate] = buildStageTable(rate, factors)
	}
	// ~3kHz cutoff (6kHz double-sided AM channel bandwidth) at 16kS/s,
	// i.e. normalized cutoff 3000/16000.
	chanShapeFilter = designLowpass(3000.0/16000.0, 60, 0.02)
}

// buildStageTable synthesizes the per-stage FIR coefficients for a
// cascade that brings inputRate down to 16kS/s via the given decimation
// factors. Each stage's cutoff is set just inside the next stage's Nyquist
// (0.5/M of the *current* stage's input rate), and the stopband attenuation
// target grows by 10*log10(M) dB per stage, matching the dynamic-range
// budget documented in the original filter headers (every halving of rate
// buys ~3dB of achievable dynamic range).
func buildStageTable(inputRate uint32, factors []int) []Stage {
	stages := make([]Stage, len(factors))
	baseAtten := 50.0
	cumAtten := baseAtten
	for i, m := range factors {
		cutoff := 0.45 / float64(m) // leave guard band inside Nyquist/M
		stages[i] = Stage{
			M: m,
			H: designLowpass(cutoff, cumAtten, 0.5/float64(m)*0.3),
		}
		cumAtten += 10 * math.Log10(float64(m))
	}
	return stages
}

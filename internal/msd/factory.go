package msd

import "fmt"

// StagesForRate returns the synthesized per-stage FIR table for the given
// input sample rate in Hz, or an error if the rate isn't part of the fixed
// supported menu (spec.md §4.4).
func StagesForRate(rateHz uint32) ([]Stage, error) {
	stages, ok := stageTables[rateHz]
	if !ok {
		return nil, fmt.Errorf("msd: sample rate %d Hz has no stage table", rateHz)
	}
	return stages, nil
}

// NewForChannel builds an MSD for one channel at the given signed offset
// (Hz, relative to tuner center) and input sample rate, using the standard
// per-rate stage table and a matching translator.
func NewForChannel(rateHz uint32, offsetHz int32) (*MSD, error) {
	stages, err := StagesForRate(rateHz)
	if err != nil {
		return nil, err
	}
	translator := GenerateTranslator(rateHz, offsetHz, stages[0].M)
	return New(translator, stages), nil
}

// ChannelShapeFilter returns the shared 16kS/s aeronautical-AM channel
// shape FIR coefficients, used both for the per-channel post-demod filter
// and (in stereo form) the audio period processor's post-mix filter.
func ChannelShapeFilter() []float32 {
	return append([]float32(nil), chanShapeFilter...)
}

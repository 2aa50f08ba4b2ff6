package audio

import "math"

// PeriodLen is the number of IQ samples per channel, per audio period: the
// 16kS/s MSD output rate times the 32ms device block cadence.
const PeriodLen = 512

// Processor mixes every channel's IQ block for one audio period down into
// an interleaved stereo float buffer, applying AGC, squelch-gated
// demodulation with ramp smoothing across open/close transitions, and
// pan-weighted mixing -- the per-period body of sdrx's main loop.
type Processor struct {
	channels []*Channel
}

// NewProcessor builds a Processor driving the given channels, in the order
// their IQ blocks appear in the per-channel concatenated input.
func NewProcessor(channels []*Channel) *Processor {
	return &Processor{channels: channels}
}

// Run consumes one period's worth of IQ samples (PeriodLen samples per
// channel, concatenated channel-major) and returns an interleaved L/R
// stereo float buffer of length 2*PeriodLen.
func (p *Processor) Run(iq []complex64) []float32 {
	out := make([]float32, 2*PeriodLen)

	for _, ch := range p.channels {
		chIQ := iq[:PeriodLen]
		iq = iq[PeriodLen:]

		for i := 0; i < PeriodLen; i++ {
			adjusted := ch.AGC.Adjust(chIQ[i])

			var s float32
			mix := false

			if ch.sqlOpen {
				s = ch.Demod.Demodulate(adjusted)
				if !ch.sqlOpenPrev {
					s *= RampUp(i)
				}
				mix = true
			} else if ch.sqlOpenPrev {
				re, im := float64(real(adjusted)), float64(imag(adjusted))
				mag := float32(math.Hypot(re, im))
				s = mag * RampDown(i)
				mix = true
			}

			if mix {
				l, r := PanWeights(ch.Pos)
				out[2*i] += l * s
				out[2*i+1] += r * s
			}
		}
		ch.sqlOpenPrev = ch.sqlOpen

		res := ch.Squelch.Evaluate(chIQ)
		ch.sqlOpen = res.Open
	}

	return out
}

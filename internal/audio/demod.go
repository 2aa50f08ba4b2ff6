// Package audio implements the per-channel demodulation, squelch ramp
// smoothing, pan mixing, and status-line rendering that turns MSD-channelized
// IQ blocks into a stereo PCM stream.
package audio

import "math"

// Modulation selects the demodulator a Channel's Demod applies.
type Modulation int

const (
	ModulationUnspecified Modulation = iota
	ModulationAM
	ModulationFM
)

func (m Modulation) String() string {
	switch m {
	case ModulationAM:
		return "AM"
	case ModulationFM:
		return "FM"
	default:
		return "Unknown"
	}
}

func ParseModulation(s string) Modulation {
	switch s {
	case "AM":
		return ModulationAM
	case "FM":
		return ModulationFM
	default:
		return ModulationUnspecified
	}
}

// Demod holds the one piece of state an FM discriminator needs across
// samples (the previous normalized sample), and demodulates to a single
// real audio sample per IQ sample.
type Demod struct {
	mod  Modulation
	prev complex64
}

// NewDemod builds a Demod for the given modulation.
func NewDemod(mod Modulation) *Demod {
	return &Demod{mod: mod}
}

// Demodulate returns one audio sample for sample.
//
// AM is simple envelope detection (|sample|). FM normalizes the sample to
// unit amplitude and takes the angle between it and the previous normalized
// sample via atan2(q*pr - i*pi, i*pr + q*pi), the standard product-angle FM
// discriminator that avoids an explicit atan2 phase-unwrap.
func (d *Demod) Demodulate(sample complex64) float32 {
	switch d.mod {
	case ModulationAM:
		re, im := float64(real(sample)), float64(imag(sample))
		return float32(math.Hypot(re, im))
	case ModulationFM:
		mag := float32(math.Hypot(float64(real(sample)), float64(imag(sample))))
		if mag == 0 {
			return 0
		}
		norm := complex64(complex(real(sample)/mag, imag(sample)/mag))

		i, q := real(norm), imag(norm)
		pi, pr := imag(d.prev), real(d.prev)

		audio := math.Atan2(float64(q*pr-i*pi), float64(i*pr+q*pi))
		d.prev = norm
		return float32(audio)
	default:
		return 0
	}
}

package audio

import "math"

// RampLen is the number of samples over which a squelch transition is
// smoothed, matching the per-channel block size MSD delivers per audio
// period (16kS/s, 32ms blocks -> 512 samples).
const RampLen = 512

var rampUp, rampDown [RampLen]float32

func init() {
	for i := 0; i < RampLen; i++ {
		// Raised-cosine from 0 to 1 (rampUp) and 1 to 0 (rampDown), giving
		// a click-free squelch open/close transition across one block.
		v := float32(0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(RampLen-1))))
		rampUp[i] = v
		rampDown[i] = 1 - v
	}
}

// RampUp returns the ramp-up envelope sample at index i (0..RampLen-1).
func RampUp(i int) float32 { return rampUp[i] }

// RampDown returns the ramp-down envelope sample at index i (0..RampLen-1).
func RampDown(i int) float32 { return rampDown[i] }

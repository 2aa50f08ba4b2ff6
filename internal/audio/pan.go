package audio

// panWeights gives the left/right gain pair for each audio position,
// ported from sdrx.cpp's inline switch over ch.pos: positions run from -2
// (hard left) through 0 (center) to 2 (hard right).
var panWeights = map[int][2]float32{
	-2: {0.8, 0.2},
	-1: {0.6, 0.4},
	0:  {0.5, 0.5},
	1:  {0.4, 0.6},
	2:  {0.2, 0.8},
}

// PanWeights returns the (left, right) gain pair for a given position,
// defaulting to center for any position outside [-2, 2].
func PanWeights(pos int) (left, right float32) {
	w, ok := panWeights[pos]
	if !ok {
		return 0.5, 0.5
	}
	return w[0], w[1]
}

// AudioPosition assigns a channel index (0-based, among numChannels total)
// a stereo position in [-2, 2], ported verbatim from sdrx's get_audio_pos:
// channels are spread evenly left-to-right across 5 positions regardless of
// how many channels are active.
func AudioPosition(channelNo, numChannels int) int {
	const numPositions = 5
	if channelNo < 0 || channelNo >= numChannels {
		return 0
	}

	half := numChannels / 2
	odd := numChannels%2 != 0

	switch {
	case channelNo < half:
		tmp := float64(channelNo*numPositions) / float64(numChannels)
		return int(tmp) - numPositions/2
	case channelNo == half && odd:
		return 0
	default:
		tmp := float64((numChannels-1-channelNo)*numPositions) / float64(numChannels)
		return numPositions/2 - int(tmp)
	}
}

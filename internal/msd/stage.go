package msd

// foldedStage is one real-coefficient FIR decimation stage, used for every
// stage in bypass mode and for stages after the first in FTFIR mode.
//
// The delay line is stored at double length so the read window
// [pos, pos+len(h)) is always contiguous — no wraparound branch in the inner
// loop — matching the "doubled delay line for SIMD contiguous read" design
// note. Coefficients are required to be symmetric (odd length), so the inner
// loop sums (d[i]+d[j])*h[i] from both ends toward the center tap, halving
// the multiplies versus a plain convolution.
type foldedStage struct {
	m     int
	h     []float32
	delay []complex64
	pos   int
	isn   int
}

func newFoldedStage(m int, h []float32) *foldedStage {
	if len(h)%2 == 0 {
		panic("msd: stage FIR coefficient length must be odd")
	}
	return &foldedStage{
		m:     m,
		h:     h,
		delay: make([]complex64, 2*len(h)),
		isn:   m,
	}
}

// addSample pushes one input sample into the delay line. It returns true
// when M samples have accumulated since the last output, meaning
// calculateOutput is ready to be called.
func (s *foldedStage) addSample(sample complex64) bool {
	L := len(s.h)
	s.delay[s.pos] = sample
	s.delay[s.pos+L] = sample
	s.pos++
	if s.pos == L {
		s.pos = 0
	}

	s.isn--
	if s.isn == 0 {
		s.isn = s.m
		return true
	}
	return false
}

// calculateOutput computes one decimated output sample from the current
// delay-line window, exploiting coefficient symmetry.
func (s *foldedStage) calculateOutput() complex64 {
	L := len(s.h)
	window := s.delay[s.pos : s.pos+L]

	var acc complex64
	i, j := 0, L-1
	for i < j {
		acc += complex(s.h[i], 0) * (window[i] + window[j])
		i++
		j--
	}
	if i == j {
		acc += complex(s.h[i], 0) * window[i]
	}
	return acc
}

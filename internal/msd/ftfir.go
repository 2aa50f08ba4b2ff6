package msd

// ftfirStage is a frequency-translating first stage: the channel-offset
// complex exponential ("translator") is folded into the FIR coefficients so
// that mixing and filtering happen in a single pass. K = len(translator)/M
// coefficient sets are precomputed, h_k[n] = translator[n+k*M+M-L] * h[n]
// (indices modulo len(translator), L = len(h)), so that tap n of output k
// meets the translator value of the input sample it multiplies. The output
// therefore equals mixing the input with the translator and then running a
// plain real-coefficient stage. k advances modulo K on every output
// decision.
//
// The resulting coefficients are complex and no longer symmetric, so the
// inner loop is a plain complex multiply-accumulate instead of the folded
// real-coefficient sum used by foldedStage.
type ftfirStage struct {
	m     int
	hk    [][]complex64 // K sets of length len(h)
	k     int
	delay []complex64
	pos   int
	isn   int
}

func newFTFIRStage(m int, h []float32, translator []complex64) *ftfirStage {
	L := len(h)
	K := len(translator) / m
	if K == 0 {
		K = 1
	}
	hk := make([][]complex64, K)
	for k := 0; k < K; k++ {
		set := make([]complex64, L)
		for n := 0; n < L; n++ {
			N := len(translator)
			idx := ((n+k*m+m-L)%N + N) % N
			set[n] = translator[idx] * complex(h[n], 0)
		}
		hk[k] = set
	}
	return &ftfirStage{
		m:     m,
		hk:    hk,
		delay: make([]complex64, 2*L),
		isn:   m,
	}
}

func (s *ftfirStage) addSample(sample complex64) bool {
	L := len(s.hk[0])
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

func (s *ftfirStage) calculateOutput() complex64 {
	L := len(s.hk[0])
	window := s.delay[s.pos : s.pos+L]
	coef := s.hk[s.k]

	var acc complex64
	for i := 0; i < L; i++ {
		acc += coef[i] * window[i]
	}

	s.k++
	if s.k == len(s.hk) {
		s.k = 0
	}

	return acc
}

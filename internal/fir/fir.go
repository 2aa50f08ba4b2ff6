// Package fir implements the fixed-coefficient FIR filters used throughout
// the pipeline: a real/complex delay-line filter with dB gain, and a stereo
// variant sharing one coefficient vector across two independent delay
// lines. Ported from the FIR/FIR2/FIR3 classes in the original sdrx source
// (original_source/src/fir.hpp).
package fir

import "math"

// Sample is the set of element types the filter can run over: real float32
// for post-demod audio, complex64 for IQ.
type Sample interface {
	~float32 | ~complex64
}

// Filter is a ring-buffer-delay-line FIR with adjustable gain. Zero value is
// not usable; construct with New.
type Filter[T Sample] struct {
	coef    []float32 // original coefficients
	coefAdj []T       // gain-adjusted coefficients, same type as the samples
	buf     []T       // delay line
	pos     int
	gainDB  float32
}

// New constructs a Filter from a symmetric (or arbitrary) coefficient
// vector. The delay line is zero-initialized.
func New[T Sample](coef []float32) *Filter[T] {
	f := &Filter[T]{
		coef: append([]float32(nil), coef...),
		buf:  make([]T, len(coef)),
	}
	f.SetGain(0)
	return f
}

// SetGain scales the coefficients by 10^(gain/20), matching the C++
// FIR::setGain.
func (f *Filter[T]) SetGain(gainDB float32) {
	f.gainDB = gainDB
	scale := float32(math.Pow(10, float64(gainDB)/20))
	f.coefAdj = make([]T, len(f.coef))
	for i, c := range f.coef {
		f.coefAdj[i] = scaleCoef[T](c * scale)
	}
}

// scaleCoef lifts a real scalar into the sample domain T (float32 stays
// real; complex64 gets a zero imaginary part), since Go's conversion rules
// don't allow a direct T(x) conversion from float32 to a generically
// constrained complex type.
func scaleCoef[T Sample](c float32) T {
	var zero T
	switch any(zero).(type) {
	case complex64:
		return any(complex64(complex(c, 0))).(T)
	default:
		return any(c).(T)
	}
}

// Gain returns the current filter gain in dB.
func (f *Filter[T]) Gain() float32 { return f.gainDB }

// Filter runs in through the delay line and writes len(in) samples to out.
// in and out may alias.
func (f *Filter[T]) Filter(in, out []T) {
	size := len(f.buf)
	for n, sample := range in {
		f.buf[f.pos] = sample
		f.pos++
		if f.pos == size {
			f.pos = 0
		}

		var acc T
		pos := f.pos
		for i := 0; i < size; i++ {
			acc = acc + f.coefAdj[i]*f.buf[pos]
			pos++
			if pos == size {
				pos = 0
			}
		}
		out[n] = acc
	}
}

// Stereo is the interleaved-L/R FIR variant (FIR2 in the original): two
// independent delay lines sharing one coefficient vector.
type Stereo struct {
	coef    []float32
	coefAdj []float32
	bufR    []float32
	bufL    []float32
	pos     int
	gainDB  float32
}

// NewStereo constructs a Stereo filter from a coefficient vector.
func NewStereo(coef []float32) *Stereo {
	s := &Stereo{
		coef: append([]float32(nil), coef...),
		bufR: make([]float32, len(coef)),
		bufL: make([]float32, len(coef)),
	}
	s.SetGain(0)
	return s
}

// SetGain scales the coefficients by 10^(gain/20).
func (s *Stereo) SetGain(gainDB float32) {
	s.gainDB = gainDB
	scale := float32(math.Pow(10, float64(gainDB)/20))
	s.coefAdj = make([]float32, len(s.coef))
	for i, c := range s.coef {
		s.coefAdj[i] = c * scale
	}
}

// Gain returns the current filter gain in dB.
func (s *Stereo) Gain() float32 { return s.gainDB }

// Filter runs interleaved stereo samples (L, R, L, R, ...) through the
// filter. in and out may alias.
func (s *Stereo) Filter(in, out []float32) {
	size := len(s.bufR)
	for n := 0; n < len(in); n += 2 {
		s.bufR[s.pos] = in[n]
		s.bufL[s.pos] = in[n+1]
		s.pos++
		if s.pos == size {
			s.pos = 0
		}

		var accR, accL float32
		pos := s.pos
		for i := 0; i < size; i++ {
			accR += s.coefAdj[i] * s.bufR[pos]
			accL += s.coefAdj[i] * s.bufL[pos]
			pos++
			if pos == size {
				pos = 0
			}
		}
		out[n] = accR
		out[n+1] = accL
	}
}

package fir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_ZeroInitDelayLine(t *testing.T) {
	f := New[float32]([]float32{1, 0, 0})
	in := []float32{1, 0, 0, 0}
	out := make([]float32, len(in))
	f.Filter(in, out)
	// With a [1,0,0] kernel the filter is a pure 2-sample delay through the
	// ring buffer convention used here; just assert no NaNs / zero-init
	// sanity and that energy is conserved (impulse in, impulse out).
	var sum float32
	for _, v := range out {
		sum += v * v
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestFilter_GainScalesOutput(t *testing.T) {
	f := New[float32]([]float32{1})
	in := []float32{1, 1, 1}
	base := make([]float32, 3)
	f.Filter(in, base)

	f2 := New[float32]([]float32{1})
	f2.SetGain(20) // 20dB => x10
	gained := make([]float32, 3)
	f2.Filter(in, gained)

	for i := range base {
		assert.InDelta(t, base[i]*10, gained[i], 1e-3)
	}
}

func TestFilter_Complex64(t *testing.T) {
	f := New[complex64]([]float32{1})
	in := []complex64{1 + 2i, 3 - 1i}
	out := make([]complex64, 2)
	f.Filter(in, out)
	assert.Equal(t, in, out)
}

func TestFilter_AliasInOut(t *testing.T) {
	f := New[float32]([]float32{0.5, 0.5})
	buf := []float32{1, 1, 1, 1}
	f.Filter(buf, buf)
	for _, v := range buf {
		assert.False(t, v != v) // not NaN
	}
}

func TestStereo_SharesCoefAcrossChannels(t *testing.T) {
	s := NewStereo([]float32{1})
	in := []float32{1, 2, 3, 4} // L,R,L,R
	out := make([]float32, 4)
	s.Filter(in, out)
	assert.Equal(t, in, out)
}

func TestStereo_Gain(t *testing.T) {
	s := NewStereo([]float32{1})
	s.SetGain(6.0206) // ~x2
	in := []float32{1, 1}
	out := make([]float32, 2)
	s.Filter(in, out)
	assert.InDelta(t, 2.0, out[0], 0.01)
	assert.InDelta(t, 2.0, out[1], 0.01)
}

package msd

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// TestMSD_RateLawProperty checks invariant 4: for any input length that is a
// multiple of the cascade's total decimation factor, Decimate returns
// exactly in_len/M output samples, for arbitrary (random) stage cascades.
func TestMSD_RateLawProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numStages := rapid.IntRange(1, 3).Draw(t, "numStages")
		stages := make([]Stage, numStages)
		totalM := 1
		for i := 0; i < numStages; i++ {
			m := rapid.SampledFrom([]int{2, 3, 4, 5}).Draw(t, "m")
			stages[i] = Stage{M: m, H: designLowpass(0.4/float64(m), 30, 0.1)}
			totalM *= m
		}
		blocks := rapid.IntRange(1, 20).Draw(t, "blocks")
		inLen := totalM * blocks

		in := make([]complex64, inLen)
		for i := range in {
			re := rapid.Float64Range(-1, 1).Draw(t, "re")
			im := rapid.Float64Range(-1, 1).Draw(t, "im")
			in[i] = complex64(complex(re, im))
		}

		d := New(nil, stages)
		out := d.Decimate(in, nil)
		if len(out) != blocks {
			t.Fatalf("M=%d, in_len=%d: got %d outputs, want %d", totalM, inLen, len(out), blocks)
		}
	})
}

// TestMSD_LinearityProperty checks invariant 5: bypass-mode MSD is linear
// in its input across randomized scalars and signals.
func TestMSD_LinearityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stages := []Stage{
			{M: 3, H: designLowpass(0.12, 35, 0.05)},
			{M: 5, H: designLowpass(0.08, 35, 0.03)},
		}
		totalM := 15
		blocks := rapid.IntRange(2, 15).Draw(t, "blocks")
		n := totalM * blocks

		x := make([]complex64, n)
		y := make([]complex64, n)
		for i := 0; i < n; i++ {
			x[i] = complex64(complex(rapid.Float64Range(-1, 1).Draw(t, "xr"), rapid.Float64Range(-1, 1).Draw(t, "xi")))
			y[i] = complex64(complex(rapid.Float64Range(-1, 1).Draw(t, "yr"), rapid.Float64Range(-1, 1).Draw(t, "yi")))
		}
		alpha := complex64(complex(rapid.Float64Range(-2, 2).Draw(t, "ar"), rapid.Float64Range(-2, 2).Draw(t, "ai")))
		beta := complex64(complex(rapid.Float64Range(-2, 2).Draw(t, "br"), rapid.Float64Range(-2, 2).Draw(t, "bi")))

		combined := make([]complex64, n)
		for i := range x {
			combined[i] = alpha*x[i] + beta*y[i]
		}

		outComb := New(nil, append([]Stage(nil), stages...)).Decimate(combined, nil)
		outX := New(nil, append([]Stage(nil), stages...)).Decimate(x, nil)
		outY := New(nil, append([]Stage(nil), stages...)).Decimate(y, nil)

		if len(outComb) != len(outX) || len(outComb) != len(outY) {
			t.Fatalf("length mismatch: comb=%d x=%d y=%d", len(outComb), len(outX), len(outY))
		}
		for i := range outComb {
			want := alpha*outX[i] + beta*outY[i]
			d := complex128(want) - complex128(outComb[i])
			if math.Hypot(real(d), imag(d)) > 5e-3 {
				t.Fatalf("sample %d: got %v, want %v", i, outComb[i], want)
			}
		}
	})
}

// TestMSD_FTFIREquivalenceProperty checks invariant 6 across randomized
// offsets and cascades: running the FTFIR-mode first stage must equal
// multiplying by the translator then running the bypass-mode cascade.
func TestMSD_FTFIREquivalenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m1 := rapid.SampledFrom([]int{3, 4, 5}).Draw(t, "m1")
		stages := []Stage{
			{M: m1, H: designLowpass(0.4/float64(m1), 30, 0.1)},
			{M: 5, H: designLowpass(0.08, 30, 0.05)},
		}
		rate := uint32(rapid.SampledFrom([]int{960000, 1200000, 1920000}).Draw(t, "rate"))
		offset := int32(rapid.SampledFrom([]int{8333, 16667, 25000, 41667, -25000}).Draw(t, "offset"))

		translator := GenerateTranslator(rate, offset, stages[0].M)
		if len(translator) == 0 {
			t.Skip("bypass translator")
		}

		blocks := rapid.IntRange(2, 10).Draw(t, "blocks")
		n := stagesM(stages) * blocks

		in := make([]complex64, n)
		for i := range in {
			in[i] = complex64(complex(rapid.Float64Range(-1, 1).Draw(t, "re"), rapid.Float64Range(-1, 1).Draw(t, "im")))
		}

		ftfir := New(translator, append([]Stage(nil), stages...))
		outFTFIR := ftfir.Decimate(in, nil)

		mixed := make([]complex64, n)
		for i, s := range in {
			mixed[i] = s * translator[i%len(translator)]
		}
		bypass := New(nil, append([]Stage(nil), stages...))
		outRef := bypass.Decimate(mixed, nil)

		if len(outFTFIR) != len(outRef) {
			t.Fatalf("length mismatch: ftfir=%d ref=%d", len(outFTFIR), len(outRef))
		}
		for i := range outFTFIR {
			d := complex128(outFTFIR[i]) - complex128(outRef[i])
			if math.Hypot(real(d), imag(d)) > 1e-3 {
				t.Fatalf("sample %d: ftfir=%v ref=%v", i, outFTFIR[i], outRef[i])
			}
		}
	})
}

// Package agc implements the IF and audio-rate automatic gain control
// stages used ahead of demodulation, ported from the attack/decay AGC used
// in svxlink.
package agc

// AGC is a complex-sample (IF) AGC, applied just before demodulation.
type AGC struct {
	attack    float32
	decay     float32
	reference float32
	maxGain   float32
	gain      float32
}

// New builds an IF AGC with the svxlink-style defaults.
func New() *AGC {
	return &AGC{attack: 10.0, decay: 0.01, reference: 0.25, maxGain: 200.0, gain: 1.0}
}

func (a *AGC) SetAttack(v float32)    { a.attack = v }
func (a *AGC) SetDecay(v float32)     { a.decay = v }
func (a *AGC) SetReference(v float32) { a.reference = v }
func (a *AGC) SetMaxGain(v float32)   { a.maxGain = v }
func (a *AGC) Gain() float32          { return a.gain }

// Adjust scales sample by the current gain, then updates the gain toward
// reference based on the adjusted sample's power (norm, i.e. |x|^2).
func (a *AGC) Adjust(sample complex64) complex64 {
	adjusted := complex64(complex(real(sample)*a.gain, imag(sample)*a.gain))

	power := real(adjusted)*real(adjusted) + imag(adjusted)*imag(adjusted)
	errVal := a.reference - power

	if errVal > 0 {
		a.gain += a.decay * errVal
	} else {
		a.gain += a.attack * errVal
	}

	if a.gain < 0 {
		a.gain = 0
	} else if a.gain > a.maxGain {
		a.gain = a.maxGain
	}

	return adjusted
}

// LfAGC is a real-sample (low-frequency / audio) AGC with the same
// attack/decay law as AGC, operating on signal magnitude rather than power.
type LfAGC struct {
	attack    float32
	decay     float32
	reference float32
	maxGain   float32
	gain      float32
}

// NewLf builds an audio-rate AGC with the svxlink-style defaults.
func NewLf() *LfAGC {
	return &LfAGC{attack: 10.0, decay: 0.01, reference: 0.25, maxGain: 200.0, gain: 1.0}
}

func (a *LfAGC) SetAttack(v float32)    { a.attack = v }
func (a *LfAGC) SetDecay(v float32)     { a.decay = v }
func (a *LfAGC) SetReference(v float32) { a.reference = v }
func (a *LfAGC) SetMaxGain(v float32)   { a.maxGain = v }
func (a *LfAGC) Gain() float32          { return a.gain }

func (a *LfAGC) Adjust(sample float32) float32 {
	adjusted := sample * a.gain

	level := adjusted
	if level < 0 {
		level = -level
	}
	errVal := a.reference - level

	if errVal > 0 {
		a.gain += a.decay * errVal
	} else {
		a.gain += a.attack * errVal
	}

	if a.gain < 0 {
		a.gain = 0
	} else if a.gain > a.maxGain {
		a.gain = a.maxGain
	}

	return adjusted
}

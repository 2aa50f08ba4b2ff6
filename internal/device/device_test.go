package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGainToIndices_Zero(t *testing.T) {
	lna, mix, vga := gainToIndices(0)
	assert.Equal(t, uint(0), lna)
	assert.Equal(t, uint(0), mix)
	assert.Equal(t, uint(12), vga)
}

func TestGainToIndices_Monotonic(t *testing.T) {
	prev := float32(-1)
	for db := float32(0); db <= MaxGain; db += 2.5 {
		lna, mix, _ := gainToIndices(db)
		got := indicesToGain(lna, mix, 12) - vgaGainSteps[12]
		assert.GreaterOrEqual(t, got, prev-0.01)
		prev = got
	}
}

func TestIndicesToGain_OutOfRangeIgnored(t *testing.T) {
	assert.Equal(t, float32(0), indicesToGain(99, 99, 99))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "RUNNING", StateRunning.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}

func TestReturnCode_String(t *testing.T) {
	assert.Equal(t, "Ok", OK.String())
	assert.Equal(t, "Invalid frequency", ErrInvalidFq.String())
}

func TestError_Error(t *testing.T) {
	e := &Error{Serial: "00000001", Code: ErrDeviceNotFound}
	assert.Equal(t, "00000001: Device not found", e.Error())

	e2 := &Error{Code: ErrGeneric}
	assert.Equal(t, "Error", e2.Error())
}

func TestPowerDBFS_FullScaleSine(t *testing.T) {
	// A full-scale complex sine has per-sample magnitude-squared 1, so mean
	// power is 1, giving 10*log10(1) - 3 = -3dBFS per the convention of a
	// full-scale sine carrying -3dBFS average power relative to peak.
	n := 1000
	db := powerDBFS(float64(n), n)
	assert.InDelta(t, -3.0, db, 0.01)
}

func TestPowerDBFS_Silence(t *testing.T) {
	db := powerDBFS(0, 1000)
	assert.True(t, db < -100)
}

func TestBlockPowerDBFS(t *testing.T) {
	iq := make([]complex64, 100)
	for i := range iq {
		iq[i] = complex(1, 0)
	}
	db := BlockPowerDBFS(iq)
	assert.InDelta(t, -3.0, db, 0.01)
}

// fakeRTLHandle is an in-memory stand-in for an opened RTL device.
type fakeRTLHandle struct {
	closed     bool
	gainMode   bool
	gainTenths int
	centerFreq int
	sampleRate int
	readCalled chan struct{}
}

func (f *fakeRTLHandle) SetCenterFreq(hz int) error         { f.centerFreq = hz; return nil }
func (f *fakeRTLHandle) SetSampleRate(hz int) error         { f.sampleRate = hz; return nil }
func (f *fakeRTLHandle) SetFreqCorrection(ppm int) error    { return nil }
func (f *fakeRTLHandle) SetTunerGainMode(manual bool) error { f.gainMode = manual; return nil }
func (f *fakeRTLHandle) SetTunerGain(tenths int) error      { f.gainTenths = tenths; return nil }
func (f *fakeRTLHandle) ResetBuffer() error                 { return nil }
func (f *fakeRTLHandle) CancelAsync() error                 { return nil }
func (f *fakeRTLHandle) Close() error                       { f.closed = true; return nil }
func (f *fakeRTLHandle) ReadAsync(cb func(buf []byte), userctx interface{}, bufNum, bufLen int) error {
	// Emit one synthetic block of (255,127) packed byte pairs (I at full
	// scale, Q near zero), then return as if the device had stopped.
	buf := make([]byte, bufLen)
	for i := 0; i < len(buf); i += 2 {
		buf[i] = 255
		buf[i+1] = 127
	}
	cb(buf)
	if f.readCalled != nil {
		select {
		case f.readCalled <- struct{}{}:
		default:
		}
	}
	return nil
}

type fakeRTLOpener struct {
	handle *fakeRTLHandle
	err    error
}

func (o *fakeRTLOpener) DeviceCount() int { return 1 }
func (o *fakeRTLOpener) IndexBySerial(serial string) (int, error) {
	return 0, nil
}
func (o *fakeRTLOpener) Open(index int) (rtlHandle, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.handle, nil
}

func TestRTL_StartDeliversBlockThenStops(t *testing.T) {
	fake := &fakeRTLHandle{readCalled: make(chan struct{})}
	r := NewRTL("", 960000, 0)
	r.opener = &fakeRTLOpener{handle: fake}

	gotBlock := make(chan BlockInfo, 1)
	r.Subscribe(func(iq []complex64, info BlockInfo) {
		select {
		case gotBlock <- info:
		default:
		}
	})

	require.NoError(t, r.Start())
	<-fake.readCalled

	info := <-gotBlock
	assert.Equal(t, uint32(960000), info.Rate)
	assert.True(t, info.Streaming)

	require.NoError(t, r.Stop())
	assert.Equal(t, StateIdle, r.State())
}

func TestRTL_SetGainRejectsOutOfRange(t *testing.T) {
	r := NewRTL("", 960000, 0)
	assert.Error(t, r.SetGain(-1))
	assert.Error(t, r.SetGain(100))
	assert.NoError(t, r.SetGain(20))
}

func TestRTL_SetFqRejectsOutOfRange(t *testing.T) {
	r := NewRTL("", 960000, 0)
	assert.Error(t, r.SetFq(1))
	assert.Error(t, r.SetFq(MaxFq+1))
	assert.NoError(t, r.SetFq(100000000))
}

func TestRTL_DoubleStartFails(t *testing.T) {
	fake := &fakeRTLHandle{readCalled: make(chan struct{})}
	r := NewRTL("", 960000, 0)
	r.opener = &fakeRTLOpener{handle: fake}
	require.NoError(t, r.Start())
	assert.Error(t, r.Start())
	<-fake.readCalled
	require.NoError(t, r.Stop())
}

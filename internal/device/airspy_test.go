package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAirspyHandle struct {
	rxCb func(iq []complex64)
}

func (h *fakeAirspyHandle) SetFreq(hz uint32) error         { return nil }
func (h *fakeAirspyHandle) SetSampleRate(hz uint32) error   { return nil }
func (h *fakeAirspyHandle) SetLNAGain(db float32) error     { return nil }
func (h *fakeAirspyHandle) SetMixerGain(db float32) error   { return nil }
func (h *fakeAirspyHandle) SetVGAGain(db float32) error     { return nil }
func (h *fakeAirspyHandle) SetPacking(enabled bool) error   { return nil }
func (h *fakeAirspyHandle) Close() error                    { return nil }
func (h *fakeAirspyHandle) StopRX() error                   { return nil }
func (h *fakeAirspyHandle) StartRX(cb func(iq []complex64)) error {
	h.rxCb = cb
	go func() {
		// Deliver chunks smaller than a block so deliver() has to
		// accumulate across several callbacks before a 32ms block
		// (192000 samples at 6MS/s) is emitted; 10 x 24000 covers one.
		chunk := make([]complex64, 24000)
		for i := range chunk {
			chunk[i] = complex(0.5, 0)
		}
		for i := 0; i < 10; i++ {
			cb(chunk)
			time.Sleep(time.Millisecond)
		}
	}()
	return nil
}

type fakeAirspyVendor struct {
	handle *fakeAirspyHandle
}

func (v *fakeAirspyVendor) Open(serial string) (AirspyHandle, error) { return v.handle, nil }
func (v *fakeAirspyVendor) ListSerials() ([]string, error)           { return []string{"AABBCCDD"}, nil }

func TestAirspy_DeliversAccumulatedBlock(t *testing.T) {
	vendor := &fakeAirspyVendor{handle: &fakeAirspyHandle{}}
	a := NewAirspy(vendor, "AABBCCDD", 6000000)

	got := make(chan BlockInfo, 8)
	a.Subscribe(func(iq []complex64, info BlockInfo) {
		got <- info
	})

	require.NoError(t, a.Start())

	select {
	case info := <-got:
		assert.Equal(t, uint32(6000000), info.Rate)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a delivered block")
	}

	require.NoError(t, a.Stop())
}

func TestListAirspy(t *testing.T) {
	vendor := &fakeAirspyVendor{handle: &fakeAirspyHandle{}}
	infos, err := ListAirspy(vendor)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, TypeAirspy, infos[0].Type)
	assert.Equal(t, "AABBCCDD", infos[0].Serial)
}

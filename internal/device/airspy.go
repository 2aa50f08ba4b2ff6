package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sdrxgo/sdrx/internal/logx"
)

// AirspyVendor is the subset of libairspy's control surface this package
// needs. No Go binding for libairspy exists in the retrieval corpus, so this
// interface is the seam a real cgo binding would implement; AirspyDev works
// against it without depending on any particular binding package.
type AirspyVendor interface {
	Open(serialHex string) (AirspyHandle, error)
	ListSerials() ([]string, error)
}

// AirspyHandle is one opened Airspy device.
type AirspyHandle interface {
	SetFreq(hz uint32) error
	SetSampleRate(hz uint32) error
	SetLNAGain(db float32) error
	SetMixerGain(db float32) error
	SetVGAGain(db float32) error
	SetPacking(enabled bool) error
	StartRX(cb func(iq []complex64)) error
	StopRX() error
	Close() error
}

// Airspy is the Airspy-backed Manager implementation. It assembles the
// vendor callback's samples into 32ms blocks before delivery, mirroring the
// RTL backend's cadence even though libairspy's own callback interval
// differs from the RTL worker's fixed 512*M buffer size.
type Airspy struct {
	serial string
	rate   uint32
	vendor AirspyVendor
	log    logx.Logger

	mu     sync.Mutex
	fq     uint32
	gainDB float32
	lnaIdx uint
	mixIdx uint
	vgaIdx uint

	state atomic.Int32
	run   atomic.Bool
	dev   AirspyHandle
	subFn DataFunc
	subMu sync.Mutex
	done  chan struct{}

	blockBuf    []complex64
	blockTarget int
}

// NewAirspy builds an Airspy device manager. vendor supplies the actual
// libairspy bindings; pass a fake in tests.
func NewAirspy(vendor AirspyVendor, serial string, rateHz uint32) *Airspy {
	a := &Airspy{
		serial:      serial,
		rate:        rateHz,
		vendor:      vendor,
		log:         logx.New("device.airspy"),
		fq:          100000000,
		vgaIdx:      12,
		blockTarget: int(rateHz * 4 / 125), // 32ms worth of samples
	}
	a.state.Store(int32(StateIdle))
	return a
}

func (a *Airspy) Type() Type { return TypeAirspy }

func (a *Airspy) State() State { return State(a.state.Load()) }

func (a *Airspy) Subscribe(fn DataFunc) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	a.subFn = fn
}

func (a *Airspy) Start() error {
	if a.run.Load() {
		return &Error{Serial: a.serial, Code: ErrAlreadyStarted}
	}
	a.run.Store(true)
	a.state.Store(int32(StateStarting))
	a.done = make(chan struct{})
	go a.worker()
	return nil
}

func (a *Airspy) Stop() error {
	if !a.run.Load() {
		return &Error{Serial: a.serial, Code: ErrAlreadyStopped}
	}
	a.state.Store(int32(StateStopping))
	a.run.Store(false)
	<-a.done
	return nil
}

func (a *Airspy) SetFq(hz uint32) error {
	if hz < MinFq || hz > MaxFq {
		return &Error{Serial: a.serial, Code: ErrInvalidFq}
	}
	a.mu.Lock()
	a.fq = hz
	dev := a.dev
	a.mu.Unlock()
	if dev != nil {
		if err := dev.SetFreq(hz); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (a *Airspy) SetGain(db float32) error {
	if db < MinGain || db > MaxGain {
		return &Error{Serial: a.serial, Code: ErrInvalidGain}
	}
	lna, mix, vga := gainToIndices(db)
	a.mu.Lock()
	a.gainDB = db
	a.lnaIdx, a.mixIdx, a.vgaIdx = lna, mix, vga
	dev := a.dev
	a.mu.Unlock()

	if dev != nil {
		if err := dev.SetLNAGain(lnaGainSteps[lna]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
		if err := dev.SetMixerGain(mixGainSteps[mix]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
		if err := dev.SetVGAGain(vgaGainSteps[vga]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (a *Airspy) SetLnaGain(idx uint) error {
	if idx > 15 {
		return &Error{Serial: a.serial, Code: ErrInvalidGain}
	}
	a.mu.Lock()
	a.lnaIdx = idx
	dev := a.dev
	a.mu.Unlock()
	if dev != nil {
		if err := dev.SetLNAGain(lnaGainSteps[idx]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (a *Airspy) SetMixGain(idx uint) error {
	if idx > 15 {
		return &Error{Serial: a.serial, Code: ErrInvalidGain}
	}
	a.mu.Lock()
	a.mixIdx = idx
	dev := a.dev
	a.mu.Unlock()
	if dev != nil {
		if err := dev.SetMixerGain(mixGainSteps[idx]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (a *Airspy) SetVgaGain(idx uint) error {
	if idx > 15 {
		return &Error{Serial: a.serial, Code: ErrInvalidGain}
	}
	a.mu.Lock()
	a.vgaIdx = idx
	dev := a.dev
	a.mu.Unlock()
	if dev != nil {
		if err := dev.SetVGAGain(vgaGainSteps[idx]); err != nil {
			return &Error{Serial: a.serial, Code: ErrGeneric}
		}
	}
	return nil
}

// worker mirrors AirspyDev::worker_'s reconnect-on-disappear loop.
func (a *Airspy) worker() {
	defer close(a.done)

	for a.run.Load() {
		dev, err := a.vendor.Open(a.serial)
		if err != nil {
			a.log.Errorf("open %s failed: %s", a.serial, err)
			time.Sleep(time.Second)
			continue
		}

		a.mu.Lock()
		a.dev = dev
		fq, rate := a.fq, a.rate
		lna, mix, vga := a.lnaIdx, a.mixIdx, a.vgaIdx
		a.mu.Unlock()

		dev.SetFreq(fq)
		dev.SetSampleRate(rate)
		dev.SetLNAGain(lnaGainSteps[lna])
		dev.SetMixerGain(mixGainSteps[mix])
		dev.SetVGAGain(vgaGainSteps[vga])
		// 12-bit packing halves USB bandwidth for the >=6MS/s rates.
		dev.SetPacking(rate >= 6000000)

		a.state.Store(int32(StateRunning))
		a.blockBuf = a.blockBuf[:0]

		err = dev.StartRX(a.deliver)
		if err != nil {
			a.log.Warnf("StartRX returned: %s", err)
		}

		for a.run.Load() {
			time.Sleep(50 * time.Millisecond)
		}
		dev.StopRX()
		dev.Close()

		a.mu.Lock()
		a.dev = nil
		a.mu.Unlock()

		if a.run.Load() {
			a.state.Store(int32(StateRestarting))
			time.Sleep(time.Second)
		}
	}

	a.state.Store(int32(StateIdle))
}

// deliver accumulates vendor callback samples into 32ms blocks before
// emitting them to the subscriber, since libairspy's own transfer size is
// independent of our fixed-cadence block contract.
func (a *Airspy) deliver(iq []complex64) {
	a.blockBuf = append(a.blockBuf, iq...)
	for len(a.blockBuf) >= a.blockTarget {
		block := a.blockBuf[:a.blockTarget]
		info := BlockInfo{
			Streaming: true,
			Rate:      a.rate,
			PowerDBFS: BlockPowerDBFS(block),
			Timestamp: time.Now(),
		}
		a.subMu.Lock()
		fn := a.subFn
		a.subMu.Unlock()
		if fn != nil {
			fn(append([]complex64(nil), block...), info)
		}
		a.blockBuf = a.blockBuf[a.blockTarget:]
	}
}

package device

import (
	"sync"
	"sync/atomic"
	"time"

	rtl "github.com/jpoirier/gortlsdr"

	"github.com/sdrxgo/sdrx/internal/logx"
)

// rtlHandle is the subset of *rtl.Context this package depends on, broken
// out as an interface so the worker loop and gain mapping can be exercised
// without real hardware attached.
type rtlHandle interface {
	SetCenterFreq(freqHz int) error
	SetSampleRate(rateHz int) error
	SetFreqCorrection(ppm int) error
	SetTunerGainMode(manual bool) error
	SetTunerGain(tenthsDB int) error
	ResetBuffer() error
	ReadAsync(f func(buf []byte), userctx interface{}, bufNum, bufLen int) error
	CancelAsync() error
	Close() error
}

// rtlOpener abstracts device discovery/open so tests can substitute a fake.
type rtlOpener interface {
	DeviceCount() int
	IndexBySerial(serial string) (int, error)
	Open(index int) (rtlHandle, error)
}

type liveRTLOpener struct{}

func (liveRTLOpener) DeviceCount() int { return rtl.GetDeviceCount() }

func (liveRTLOpener) IndexBySerial(serial string) (int, error) {
	return rtl.GetIndexBySerial(serial)
}

func (liveRTLOpener) Open(index int) (rtlHandle, error) {
	ctx, err := rtl.Open(index)
	if err != nil {
		return nil, err
	}
	return &rtlContextAdapter{ctx}, nil
}

// rtlContextAdapter narrows *rtl.Context down to the rtlHandle surface this
// package needs, insulating the rest of the device package from gortlsdr's
// exact parameter types.
type rtlContextAdapter struct {
	*rtl.Context
}

func (a *rtlContextAdapter) SetCenterFreq(freqHz int) error     { return a.Context.SetCenterFreq(freqHz) }
func (a *rtlContextAdapter) SetSampleRate(rateHz int) error     { return a.Context.SetSampleRate(rateHz) }
func (a *rtlContextAdapter) SetFreqCorrection(ppm int) error    { return a.Context.SetFreqCorrection(ppm) }
func (a *rtlContextAdapter) SetTunerGainMode(manual bool) error { return a.Context.SetTunerGainMode(manual) }
func (a *rtlContextAdapter) SetTunerGain(tenthsDB int) error    { return a.Context.SetTunerGain(tenthsDB) }
func (a *rtlContextAdapter) ResetBuffer() error                 { return a.Context.ResetBuffer() }
func (a *rtlContextAdapter) CancelAsync() error                 { return a.Context.CancelAsync() }
func (a *rtlContextAdapter) Close() error                       { return a.Context.Close() }

func (a *rtlContextAdapter) ReadAsync(f func(buf []byte), userctx interface{}, bufNum, bufLen int) error {
	return a.Context.ReadAsync(f, userctx, bufNum, bufLen)
}

// RTL is the RTL-SDR backed Manager implementation, grounded in rtl_dev.cpp's
// worker_/data_cb_ cadence: a background goroutine that opens the device,
// streams async reads, and reopens with backoff if the device drops out.
type RTL struct {
	serial   string
	rate     uint32
	xtalCorr int
	log      logx.Logger
	opener   rtlOpener

	mu      sync.Mutex
	fq      uint32
	gainDB  float32
	lnaIdx  uint
	mixIdx  uint
	vgaIdx  uint
	autoGain bool

	state   atomic.Int32
	run     atomic.Bool
	dev     rtlHandle
	subFn   DataFunc
	subMu   sync.Mutex
	done    chan struct{}
}

// NewRTL builds an RTL device manager for the given serial (empty string
// selects device index 0) at the given sample rate.
func NewRTL(serial string, rateHz uint32, xtalCorrPPM int) *RTL {
	r := &RTL{
		serial:   serial,
		rate:     rateHz,
		xtalCorr: xtalCorrPPM,
		log:      logx.New("device.rtl"),
		opener:   liveRTLOpener{},
		fq:       100000000,
		vgaIdx:   12,
	}
	r.state.Store(int32(StateIdle))
	return r
}

func (r *RTL) Type() Type { return TypeRTL }

func (r *RTL) State() State { return State(r.state.Load()) }

func (r *RTL) Subscribe(fn DataFunc) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.subFn = fn
}

func (r *RTL) Start() error {
	if r.run.Load() {
		return &Error{Serial: r.serial, Code: ErrAlreadyStarted}
	}

	r.run.Store(true)
	r.state.Store(int32(StateStarting))
	r.done = make(chan struct{})
	go r.worker()
	return nil
}

func (r *RTL) Stop() error {
	if !r.run.Load() {
		return &Error{Serial: r.serial, Code: ErrAlreadyStopped}
	}
	r.state.Store(int32(StateStopping))
	r.run.Store(false)
	<-r.done
	return nil
}

func (r *RTL) SetFq(hz uint32) error {
	if hz < MinFq || hz > MaxFq {
		return &Error{Serial: r.serial, Code: ErrInvalidFq}
	}
	r.mu.Lock()
	r.fq = hz
	dev := r.dev
	running := r.State() == StateRunning
	r.mu.Unlock()

	if dev != nil && running {
		if err := dev.SetCenterFreq(int(hz)); err != nil {
			return &Error{Serial: r.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (r *RTL) SetGain(db float32) error {
	if db < MinGain || db > MaxGain {
		return &Error{Serial: r.serial, Code: ErrInvalidGain}
	}

	lna, mix, vga := gainToIndices(db)

	r.mu.Lock()
	r.autoGain = false
	r.gainDB = db
	r.lnaIdx, r.mixIdx, r.vgaIdx = lna, mix, vga
	dev := r.dev
	running := r.State() == StateRunning
	r.mu.Unlock()

	r.log.Infof("gain = %.1f -> lna = %d, mix = %d, vga = %d", db, lna, mix, vga)

	if dev != nil && running {
		total := indicesToGain(lna, mix, vga)
		if err := dev.SetTunerGainMode(true); err != nil {
			return &Error{Serial: r.serial, Code: ErrGeneric}
		}
		if err := dev.SetTunerGain(int(total * 10)); err != nil {
			return &Error{Serial: r.serial, Code: ErrGeneric}
		}
	}
	return nil
}

func (r *RTL) SetLnaGain(idx uint) error  { return r.setKnobGain(&r.lnaIdx, idx) }
func (r *RTL) SetMixGain(idx uint) error  { return r.setKnobGain(&r.mixIdx, idx) }
func (r *RTL) SetVgaGain(idx uint) error  { return r.setKnobGain(&r.vgaIdx, idx) }

// setKnobGain updates a single gain-table index and, if running, pushes the
// recomputed combined gain down to the device. gortlsdr's basic API exposes
// only one overall tenths-of-dB gain knob (no rtlsdr_set_tuner_gain_ext), so
// independently-set LNA/mix/VGA indices are collapsed via indicesToGain.
func (r *RTL) setKnobGain(target *uint, idx uint) error {
	if idx > 15 {
		return &Error{Serial: r.serial, Code: ErrInvalidGain}
	}

	r.mu.Lock()
	*target = idx
	lna, mix, vga := r.lnaIdx, r.mixIdx, r.vgaIdx
	dev := r.dev
	running := r.State() == StateRunning
	r.mu.Unlock()

	if dev != nil && running {
		total := indicesToGain(lna, mix, vga)
		if err := dev.SetTunerGain(int(total * 10)); err != nil {
			return &Error{Serial: r.serial, Code: ErrGeneric}
		}
	}
	return nil
}

// worker mirrors RtlDev::worker_: open, stream async reads until the device
// drops or Stop() is called, reopen with a 1s backoff on failure.
func (r *RTL) worker() {
	defer close(r.done)

	if r.rate%16000 != 0 {
		r.log.Warnf("requested sample rate %d is not evenly divisible by 16000", r.rate)
	}
	downFactor := r.rate / 16000
	bufLen := 512 * int(downFactor) * 2

	for r.run.Load() {
		dev, err := r.open()
		if err != nil {
			r.log.Errorf("open %s failed: %s", r.serial, err)
			time.Sleep(time.Second)
			continue
		}

		r.log.Infof("device %s opened successfully", r.serial)
		r.mu.Lock()
		r.dev = dev
		r.mu.Unlock()

		dev.ResetBuffer()
		r.state.Store(int32(StateRunning))

		cb := func(buf []byte) {
			if !r.run.Load() {
				dev.CancelAsync()
				return
			}
			r.deliver(buf)
		}

		err = dev.ReadAsync(cb, nil, 16, bufLen)
		if err != nil {
			r.log.Warnf("ReadAsync returned: %s", err)
		}

		dev.Close()
		r.mu.Lock()
		r.dev = nil
		r.mu.Unlock()

		if r.run.Load() {
			r.log.Warnf("device %s disappeared, reopening...", r.serial)
			r.state.Store(int32(StateRestarting))
			time.Sleep(time.Second)
		}
	}

	r.state.Store(int32(StateIdle))
}

func (r *RTL) open() (rtlHandle, error) {
	index := 0
	if r.serial != "" {
		idx, err := r.opener.IndexBySerial(r.serial)
		if err != nil {
			return nil, &Error{Serial: r.serial, Code: ErrDeviceNotFound}
		}
		index = idx
	}

	if r.opener.DeviceCount() == 0 {
		return nil, &Error{Serial: r.serial, Code: ErrDeviceNotFound}
	}

	dev, err := r.opener.Open(index)
	if err != nil {
		return nil, &Error{Serial: r.serial, Code: ErrUnableToOpen}
	}

	r.mu.Lock()
	fq, rate, corr := r.fq, r.rate, r.xtalCorr
	lna, mix, vga, auto := r.lnaIdx, r.mixIdx, r.vgaIdx, r.autoGain
	r.mu.Unlock()

	if err := dev.SetCenterFreq(int(fq)); err != nil {
		dev.Close()
		return nil, &Error{Serial: r.serial, Code: ErrGeneric}
	}
	if err := dev.SetFreqCorrection(corr); err != nil {
		dev.Close()
		return nil, &Error{Serial: r.serial, Code: ErrGeneric}
	}
	if auto {
		if err := dev.SetTunerGainMode(false); err != nil {
			dev.Close()
			return nil, &Error{Serial: r.serial, Code: ErrGeneric}
		}
	} else {
		if err := dev.SetTunerGainMode(true); err != nil {
			dev.Close()
			return nil, &Error{Serial: r.serial, Code: ErrGeneric}
		}
		total := indicesToGain(lna, mix, vga)
		if err := dev.SetTunerGain(int(total * 10)); err != nil {
			dev.Close()
			return nil, &Error{Serial: r.serial, Code: ErrGeneric}
		}
	}
	if err := dev.SetSampleRate(int(rate)); err != nil {
		dev.Close()
		return nil, &Error{Serial: r.serial, Code: ErrGeneric}
	}

	return dev, nil
}

// deliver converts packed 8-bit IQ into complex64 (range -1..1) and emits a
// 32ms block to the subscriber, computing its RMS power along the way.
func (r *RTL) deliver(buf []byte) {
	n := len(buf) / 2
	iq := make([]complex64, n)
	var sumSq float64
	for i := 0; i < n; i++ {
		re := float64(buf[2*i])/127.5 - 1.0
		im := float64(buf[2*i+1])/127.5 - 1.0
		iq[i] = complex64(complex(re, im))
		sumSq += re*re + im*im
	}

	info := BlockInfo{
		Streaming: true,
		Rate:      r.rate,
		PowerDBFS: powerDBFS(sumSq, n),
		Timestamp: time.Now(),
	}

	r.subMu.Lock()
	fn := r.subFn
	r.subMu.Unlock()
	if fn != nil {
		fn(iq, info)
	}
}

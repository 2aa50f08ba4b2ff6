// Package device implements the dongle/device manager contract: a uniform
// start/stop/tune/gain surface over RTL-SDR and Airspy hardware, each
// streaming 32ms blocks of baseband IQ up to a subscriber.
package device

import (
	"fmt"
	"time"
)

// Type identifies the class of hardware a Manager controls.
type Type int

const (
	TypeUnknown Type = iota
	TypeRTL
	TypeAirspy
)

func (t Type) String() string {
	switch t {
	case TypeRTL:
		return "RTL"
	case TypeAirspy:
		return "Airspy"
	default:
		return "Unknown"
	}
}

// State is the device manager's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateRestarting
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateRestarting:
		return "RESTARTING"
	case StateStopping:
		return "STOPPING"
	default:
		return "UNKNOWN"
	}
}

// ReturnCode mirrors the R820Dev::ReturnValue enum the original device
// classes use to report operation outcomes.
type ReturnCode int

const (
	OK ReturnCode = iota
	ErrGeneric
	ErrDeviceNotFound
	ErrUnableToOpen
	ErrInvalidSampleRate
	ErrInvalidFq
	ErrInvalidGain
	ErrInvalidSerial
	ErrAlreadyStarted
	ErrAlreadyStopped
)

func (r ReturnCode) String() string {
	switch r {
	case OK:
		return "Ok"
	case ErrGeneric:
		return "Error"
	case ErrDeviceNotFound:
		return "Device not found"
	case ErrUnableToOpen:
		return "Unable to open device"
	case ErrInvalidSampleRate:
		return "Invalid sample rate"
	case ErrInvalidFq:
		return "Invalid frequency"
	case ErrInvalidGain:
		return "Invalid gain"
	case ErrInvalidSerial:
		return "Invalid serial"
	case ErrAlreadyStarted:
		return "Already started"
	case ErrAlreadyStopped:
		return "Already stopped"
	default:
		return "Unknown"
	}
}

// Error wraps a ReturnCode with the serial of the device that produced it.
type Error struct {
	Serial string
	Code   ReturnCode
}

func (e *Error) Error() string {
	if e.Serial == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Serial, e.Code.String())
}

// Info describes one device discovered on the system.
type Info struct {
	Type                Type
	Index               uint
	Serial              string
	Available           bool
	Supported           bool
	Description         string
	SampleRates         []uint32
	DefaultSampleRate   uint32
}

// BlockInfo accompanies every delivered block of IQ samples.
type BlockInfo struct {
	Streaming bool
	Rate      uint32
	PowerDBFS float32
	Timestamp time.Time
}

// DataFunc receives one 32ms block of complex IQ samples plus its metadata.
// It is invoked from the device's internal worker goroutine; callers must
// not block for long inside it.
type DataFunc func(iq []complex64, info BlockInfo)

// Manager is the uniform control surface for a tunable IQ source, satisfied
// by both the RTL-SDR and Airspy backends.
type Manager interface {
	Type() Type
	Start() error
	Stop() error
	SetFq(hz uint32) error
	SetGain(db float32) error
	SetLnaGain(idx uint) error
	SetMixGain(idx uint) error
	SetVgaGain(idx uint) error
	State() State
	Subscribe(fn DataFunc)
}

const (
	MinFq  = 24000000
	MaxFq  = 1800000000
	MinGain = 0.0
	MaxGain = 50.0
)

// The three gain settings available in the R820T(2) tuner: LNA, Mixer and
// VGA. Index (0..15) is the register value. Values from
// http://steve-m.de/projects/rtl-sdr/gain_measurement/r820t
var (
	lnaGainSteps = [16]float32{0.0, 0.9, 1.3, 4.0, 3.8, 1.3, 3.1, 2.2, 2.6, 3.1, 2.6, 1.4, 1.9, 0.5, 3.5, 1.3}
	mixGainSteps = [16]float32{0.0, 0.5, 1.0, 1.0, 1.9, 0.9, 1.0, 2.5, 1.7, 1.0, 0.8, 1.6, 1.3, 0.6, 0.3, -0.8}
	vgaGainSteps = [16]float32{0.0, 2.6, 2.6, 3.0, 4.2, 3.5, 2.4, 1.3, 1.4, 3.2, 3.6, 3.4, 3.5, 3.7, 3.5, 3.6}
)

// gainToIndices greedily distributes a requested overall gain (dB) across
// the LNA and mixer gain tables, stopping as soon as the cumulative gain
// reaches the target -- ported from RtlDev::setGain's loop.
func gainToIndices(gainDB float32) (lna, mix, vga uint) {
	var lnaIdx, mixIdx uint
	vgaIdx := uint(12)
	var cum float32

	for i := 0; i < 15; i++ {
		if cum >= gainDB {
			break
		}
		lnaIdx++
		cum += lnaGainSteps[lnaIdx]

		if cum >= gainDB {
			break
		}
		mixIdx++
		cum += mixGainSteps[mixIdx]
	}

	return lnaIdx, mixIdx, vgaIdx
}

// indicesToGain sums the three gain tables' contributions at the given
// indices, the inverse of gainToIndices, used to collapse a three-knob gain
// selection down to the single overall dB value gortlsdr's basic API
// exposes.
func indicesToGain(lna, mix, vga uint) float32 {
	var sum float32
	if lna < 16 {
		sum += lnaGainSteps[lna]
	}
	if mix < 16 {
		sum += mixGainSteps[mix]
	}
	if vga < 16 {
		sum += vgaGainSteps[vga]
	}
	return sum
}

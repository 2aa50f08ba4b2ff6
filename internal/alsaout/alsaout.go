// Package alsaout plays interleaved stereo PCM through an ALSA playback
// device, generalizing the cgo ALSA binding pattern used across the example
// corpus (set-hw-params / set-sw-params / poll-then-writei) to the fixed
// 16kS/s stereo S16_LE configuration the pipeline produces.
package alsaout

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/sdrxgo/sdrx/internal/logx"
	"golang.org/x/sys/unix"
)

// Fixed device configuration. The pipeline always produces 16kS/s stereo
// audio in 512-frame (32ms) periods, so the sink has no need to negotiate.
const (
	SampleRate   = 16000
	Channels     = 2
	Period       = 512     // frames per period (512/16000 -> 32ms)
	BufferFrames = Period * 8
	noteThresh   = Period     // wake up once we can write this many frames
	startThresh  = Period * 4 // device starts playing once this many frames are queued
)

// Sink is an open ALSA playback device configured for 16kS/s stereo S16_LE
// audio, written in periods of Period frames.
type Sink struct {
	handle *C.snd_pcm_t
	log    logx.Logger
	pollFd []unix.PollFd
}

// Open opens the named ALSA PCM device (e.g. "default", "hw:0,0") for
// non-blocking playback and configures it per the fixed Sink contract.
func Open(device string) (*Sink, error) {
	log := logx.New("alsaout")

	cDevice := C.CString(device)
	defer C.free(unsafe.Pointer(cDevice))

	var handle *C.snd_pcm_t
	if ret := C.snd_pcm_open(&handle, cDevice, C.SND_PCM_STREAM_PLAYBACK, C.SND_PCM_NONBLOCK); ret < 0 {
		return nil, alsaErr("snd_pcm_open", ret)
	}

	if err := setHwParams(handle); err != nil {
		C.snd_pcm_close(handle)
		return nil, err
	}
	if err := setSwParams(handle); err != nil {
		C.snd_pcm_close(handle)
		return nil, err
	}

	s := &Sink{handle: handle, log: log}
	if err := s.buildPollFds(); err != nil {
		C.snd_pcm_close(handle)
		return nil, err
	}

	log.Infof("opened %q: %dHz, %d ch, period %d frames, buffer %d frames, start threshold %d frames",
		device, SampleRate, Channels, Period, BufferFrames, startThresh)
	return s, nil
}

func setHwParams(handle *C.snd_pcm_t) error {
	var hw *C.snd_pcm_hw_params_t
	C.snd_pcm_hw_params_malloc(&hw)
	defer C.snd_pcm_hw_params_free(hw)

	C.snd_pcm_hw_params_any(handle, hw)
	C.snd_pcm_hw_params_set_access(handle, hw, C.SND_PCM_ACCESS_RW_INTERLEAVED)
	C.snd_pcm_hw_params_set_format(handle, hw, C.SND_PCM_FORMAT_S16)
	C.snd_pcm_hw_params_set_channels(handle, hw, C.uint(Channels))

	period := C.snd_pcm_uframes_t(Period)
	C.snd_pcm_hw_params_set_period_size(handle, hw, period, 0)

	bufSize := C.snd_pcm_uframes_t(BufferFrames)
	C.snd_pcm_hw_params_set_buffer_size(handle, hw, bufSize)

	rate := C.uint(SampleRate)
	if ret := C.snd_pcm_hw_params_set_rate_near(handle, hw, &rate, nil); ret < 0 {
		return alsaErr("snd_pcm_hw_params_set_rate_near", ret)
	}

	if ret := C.snd_pcm_hw_params(handle, hw); ret < 0 {
		return alsaErr("snd_pcm_hw_params", ret)
	}
	return nil
}

func setSwParams(handle *C.snd_pcm_t) error {
	var sw *C.snd_pcm_sw_params_t
	C.snd_pcm_sw_params_malloc(&sw)
	defer C.snd_pcm_sw_params_free(sw)

	C.snd_pcm_sw_params_current(handle, sw)

	if ret := C.snd_pcm_sw_params_set_avail_min(handle, sw, C.snd_pcm_uframes_t(noteThresh)); ret < 0 {
		return alsaErr("snd_pcm_sw_params_set_avail_min", ret)
	}
	if ret := C.snd_pcm_sw_params_set_start_threshold(handle, sw, C.snd_pcm_uframes_t(startThresh)); ret < 0 {
		return alsaErr("snd_pcm_sw_params_set_start_threshold", ret)
	}
	if ret := C.snd_pcm_sw_params(handle, sw); ret < 0 {
		return alsaErr("snd_pcm_sw_params", ret)
	}
	return nil
}

func (s *Sink) buildPollFds() error {
	n := int(C.snd_pcm_poll_descriptors_count(s.handle))
	if n <= 0 {
		return fmt.Errorf("alsaout: no poll descriptors reported")
	}
	descs := make([]C.struct_pollfd, n)
	if ret := C.snd_pcm_poll_descriptors(s.handle, &descs[0], C.uint(n)); ret < 0 {
		return alsaErr("snd_pcm_poll_descriptors", ret)
	}
	s.pollFd = make([]unix.PollFd, n)
	for i, d := range descs {
		s.pollFd[i] = unix.PollFd{Fd: int32(d.fd), Events: int16(d.events)}
	}
	return nil
}

// WaitPeriod blocks (via poll) until the device can accept at least one
// period's worth of frames, or the given timeout (ms) elapses. A timeoutMs
// of -1 blocks indefinitely.
func (s *Sink) WaitPeriod(timeoutMs int) error {
	for {
		n, err := unix.Poll(s.pollFd, timeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("alsaout: poll: %w", err)
		}
		if n == 0 {
			return nil // timeout, caller decides whether to write silence
		}
		return nil
	}
}

// WriteStereo writes one period (Period frames, 2*Period interleaved
// samples) of float32 audio in [-1, 1], converting to S16_LE. On ALSA's
// recoverable error states (underrun, suspend) it re-prepares the device and
// returns nil; the period is not written again.
func (s *Sink) WriteStereo(samples []float32) error {
	if len(samples) != 2*Period {
		return fmt.Errorf("alsaout: expected %d samples, got %d", 2*Period, len(samples))
	}

	buf := make([]C.int16_t, len(samples))
	for i, f := range samples {
		switch {
		case f > 1.0:
			buf[i] = 32767
		case f < -1.0:
			buf[i] = -32767
		default:
			buf[i] = C.int16_t(f * 32767.0)
		}
	}

	ret := C.snd_pcm_writei(s.handle, unsafe.Pointer(&buf[0]), C.snd_pcm_uframes_t(Period))
	if ret < 0 {
		return s.recover(C.long(ret))
	}
	if int(ret) != Period {
		s.log.Warnf("short write: wrote %d of %d frames", int(ret), Period)
	}
	return nil
}

// recover mirrors sdrx's prepare-and-continue handling: on -EPIPE
// (underrun), -ESTRPIPE (suspend) or -EBADFD, it calls snd_pcm_prepare and
// swallows the error rather than tearing the stream down.
func (s *Sink) recover(ret C.long) error {
	errno := -int(ret)
	switch errno {
	case int(C.EPIPE), int(C.ESTRPIPE), int(C.EBADFD):
		s.log.Warnf("alsa writei recoverable error (%s), re-preparing", C.GoString(C.snd_strerror(C.int(ret))))
		if prepErr := C.snd_pcm_prepare(s.handle); prepErr < 0 {
			return alsaErr("snd_pcm_prepare", prepErr)
		}
		return nil
	default:
		return alsaErr("snd_pcm_writei", ret)
	}
}

// Drain blocks until all pending frames have been played, per
// snd_pcm_drain's contract.
func (s *Sink) Drain() error {
	if ret := C.snd_pcm_drain(s.handle); ret < 0 {
		return alsaErr("snd_pcm_drain", ret)
	}
	return nil
}

// Close releases the underlying ALSA handle.
func (s *Sink) Close() error {
	if ret := C.snd_pcm_close(s.handle); ret < 0 {
		return alsaErr("snd_pcm_close", ret)
	}
	return nil
}

func alsaErr(call string, ret C.long) error {
	return fmt.Errorf("alsaout: %s: %s", call, C.GoString(C.snd_strerror(C.int(ret))))
}

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sdrxgo/sdrx/internal/audio"
)

// SampleRate enumerates the receiver's fixed input-rate menu. Two rates
// (2.5M and 3M) are Airspy-only "Data Model" rates with no MSD stage table;
// they're recognized by Parse but rejected by Settings validation, matching
// sdrx's own "not supported at the moment" carve-out.
type SampleRate uint32

const (
	Rate960k  SampleRate = 960000
	Rate1200k SampleRate = 1200000
	Rate1440k SampleRate = 1440000
	Rate1600k SampleRate = 1600000
	Rate1920k SampleRate = 1920000
	Rate2400k SampleRate = 2400000
	Rate2500k SampleRate = 2500000 // Airspy Data Model rate; no stage table
	Rate2560k SampleRate = 2560000
	Rate3000k SampleRate = 3000000 // Airspy Data Model rate; no stage table
)

// fixedMenu is the set of rates Settings.Validate accepts; each has an MSD
// stage table. MSD also has tables for 6 and 10 MS/s, which SampleRate does
// not include.
var fixedMenu = map[SampleRate]bool{
	Rate960k: true, Rate1200k: true, Rate1440k: true, Rate1600k: true,
	Rate1920k: true, Rate2400k: true, Rate2560k: true,
}

// Hz returns the sample rate in Hz.
func (r SampleRate) Hz() uint32 { return uint32(r) }

// String renders the rate the way sdrx prints it, e.g. "1.92".
func (r SampleRate) String() string {
	f := float64(r) / 1e6
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// ParseSampleRate parses a rate given in MHz, e.g. "1.92" or "0.96".
func ParseSampleRate(s string) (SampleRate, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid sample rate %q", s)
	}
	hz := uint32(f * 1e6)
	switch SampleRate(hz) {
	case Rate960k, Rate1200k, Rate1440k, Rate1600k, Rate1920k, Rate2400k, Rate2500k, Rate2560k, Rate3000k:
		return SampleRate(hz), nil
	default:
		return 0, fmt.Errorf("config: unsupported sample rate %q", s)
	}
}

// GainMode selects whether RF gain is given as one overall dB value
// (Composite) or as three explicit LNA:Mix:VGA gain-table indices (Split).
type GainMode int

const (
	GainComposite GainMode = iota
	GainSplit
)

// Channel is one requested aeronautical channel, carrying both its raw
// dotted name and the per-channel audio state built once the tuner center
// frequency is known.
type Channel struct {
	Name     string
	SqlLevel float32
	Mod      audio.Modulation
	Pos      int
}

// Settings is the fully parsed, validated configuration for one run.
type Settings struct {
	DeviceSerial string
	AudioDevice  string
	Rate         SampleRate
	Mod          audio.Modulation
	SqlLevel     float32
	Volume       float32
	FqCorrPPM    int

	GainMode      GainMode
	CompositeGain float32
	LnaGainIdx    uint
	MixGainIdx    uint
	VgaGainIdx    uint

	ListDevices bool

	// Channels holds the requested channels in command-line order.
	// TunerFq is the computed RTL/Airspy center frequency that places all
	// requested channels within the usable passband.
	Channels []Channel
	TunerFq  uint32
}

// Validate checks Settings for internally-consistent, in-range values and
// assigns stereo pan positions to Channels, mirroring parse_cmd_line's and
// verify_requested_bandwidth's checks.
func (s *Settings) Validate() error {
	if !fixedMenu[s.Rate] {
		return fmt.Errorf("config: sample rate %s MS/s has no stage table (2.5/3 MS/s Airspy Data Model rates are not yet supported)", s.Rate)
	}
	if s.GainMode == GainComposite && (s.CompositeGain < 0.0 || s.CompositeGain > 50.0) {
		return fmt.Errorf("config: invalid RF gain %.4f", s.CompositeGain)
	}
	if s.GainMode == GainSplit && (s.LnaGainIdx > 15 || s.MixGainIdx > 15 || s.VgaGainIdx > 15) {
		return fmt.Errorf("config: invalid RF gain indexes %d:%d:%d", s.LnaGainIdx, s.MixGainIdx, s.VgaGainIdx)
	}
	if s.SqlLevel < -10.0 || s.SqlLevel > 50.0 {
		return fmt.Errorf("config: invalid squelch level %.4f", s.SqlLevel)
	}
	if s.Mod == audio.ModulationUnspecified {
		return fmt.Errorf("config: invalid modulation")
	}
	if len(s.Channels) == 0 {
		return fmt.Errorf("config: no channel given")
	}

	if err := s.assignTunerFq(); err != nil {
		return err
	}
	if err := s.verifyBandwidth(); err != nil {
		return err
	}
	assignPanPositions(s.Channels)
	return nil
}

// assignTunerFq picks the tuner center frequency as the midpoint of the
// lowest and highest requested channel, truncated to the nearest 100kHz.
func (s *Settings) assignTunerFq() error {
	names := make([]string, len(s.Channels))
	for i, c := range s.Channels {
		names[i] = c.Name
	}
	sort.Strings(names)

	loFq, err := ParseFq(names[0], true)
	if err != nil {
		return err
	}
	hiFq, err := ParseFq(names[len(names)-1], true)
	if err != nil {
		return err
	}

	mid := loFq + (hiFq-loFq)/2
	s.TunerFq = (mid / 100000) * 100000
	return nil
}

// verifyBandwidth checks that every requested channel fits within 80% of
// the chosen sample rate, centered on TunerFq.
func (s *Settings) verifyBandwidth() error {
	names := make([]string, len(s.Channels))
	for i, c := range s.Channels {
		names[i] = c.Name
	}
	sort.Strings(names)

	loFq, err := ParseFq(names[0], true)
	if err != nil {
		return err
	}
	hiFq, err := ParseFq(names[len(names)-1], true)
	if err != nil {
		return err
	}

	maxOffset := s.Rate.Hz() * 8 / 20
	if loFq < s.TunerFq-maxOffset || hiFq > s.TunerFq+maxOffset {
		return fmt.Errorf("config: requested channels do not fit within 80%% of %s MS/s centered on %d Hz", s.Rate, s.TunerFq)
	}
	return nil
}

// assignPanPositions spreads channels left-to-right across the stereo
// field in the order given, via audio.AudioPosition.
func assignPanPositions(channels []Channel) {
	for i := range channels {
		channels[i].Pos = audio.AudioPosition(i, len(channels))
	}
}

func parseModulation(s string) (audio.Modulation, error) {
	m := audio.ParseModulation(strings.ToUpper(s))
	if m == audio.ModulationUnspecified {
		return m, fmt.Errorf("config: invalid modulation %q", s)
	}
	return m, nil
}

package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Parse builds Settings from the given argument vector (normally
// os.Args[1:]), layering CLI flags over an optional ini config file default,
// then validating the result. A nil Settings with ErrListDevices means the
// caller should list devices and exit cleanly rather than starting a run;
// -h/--help is handled by pflag itself (prints usage, returns
// pflag.ErrHelp).
func Parse(args []string) (*Settings, error) {
	fs := pflag.NewFlagSet("sdrx", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		listDevices = fs.BoolP("list", "l", false, "list available devices and exit")
		device      = fs.StringP("device", "d", "", "serial of device to use (default: first available)")
		fqCorr      = fs.IntP("fq-corr", "c", 0, "crystal frequency correction, in PPM")
		gain        = fs.StringP("gain", "g", "30", "RF gain in dB, or LNA:MIX:VGA gain table indexes")
		volume      = fs.Float32P("volume", "v", 0.0, "audio volume adjustment, in dB")
		sqlLevel    = fs.Float32P("sql-level", "s", 9.0, "squelch level, as SNR in dB")
		audioDev    = fs.String("audio-dev", "default", "ALSA device to use for audio output")
		sampleRate  = fs.String("sample-rate", "1.92", "input sample rate, in MS/s")
		modulation  = fs.String("modulation", "AM", "demodulation mode: AM or FM")
		cfgFile     = fs.String("config", "", "optional ini config file providing flag defaults")
	)
	fs.SortFlags = false

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *cfgFile != "" {
		if err := applyFileDefaults(*cfgFile, fs); err != nil {
			return nil, err
		}
	}

	if *listDevices {
		return nil, ErrListDevices
	}

	mod, err := parseModulation(*modulation)
	if err != nil {
		return nil, err
	}
	rate, err := ParseSampleRate(*sampleRate)
	if err != nil {
		return nil, err
	}

	s := &Settings{
		DeviceSerial: *device,
		AudioDevice:  *audioDev,
		Rate:         rate,
		Mod:          mod,
		SqlLevel:     float32(*sqlLevel),
		Volume:       float32(*volume),
		FqCorrPPM:    *fqCorr,
	}

	if err := s.parseGain(*gain); err != nil {
		return nil, err
	}

	for _, name := range fs.Args() {
		if _, err := ParseFq(name, true); err != nil {
			return nil, fmt.Errorf("config: invalid channel %q: %w", name, err)
		}
		if !containsChannel(s.Channels, name) {
			s.Channels = append(s.Channels, Channel{Name: name, SqlLevel: s.SqlLevel, Mod: mod})
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func containsChannel(channels []Channel, name string) bool {
	for _, c := range channels {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (s *Settings) parseGain(gain string) error {
	if gain == "" {
		s.GainMode = GainComposite
		s.CompositeGain = 30.0
		return nil
	}

	var lna, mix, vga uint
	if n, _ := fmt.Sscanf(gain, "%d:%d:%d", &lna, &mix, &vga); n == 3 {
		s.GainMode = GainSplit
		s.LnaGainIdx, s.MixGainIdx, s.VgaGainIdx = lna, mix, vga
		return nil
	}

	var composite float32
	if n, _ := fmt.Sscanf(gain, "%f", &composite); n == 1 {
		s.GainMode = GainComposite
		s.CompositeGain = composite
		return nil
	}

	return fmt.Errorf("config: invalid gain %q", gain)
}

const usageText = `sdrx is a software defined narrow band AM/FM receiver for R820T(2)/R860
based RTL-SDR or Airspy Mini/R2 dongles, mainly designed for the 118-138MHz
airband. Channels are given as positional arguments in aeronautical
notation (six digits, dot-separated), e.g. 118.275 or 118.280 -- both the
legacy 25kHz and newer 8.33kHz channel spacing notations are accepted for
the same underlying frequency.

If multiple channels are given, they must all fit within 80% of the chosen
sample rate.

Examples:
  sdrx --list
  sdrx --device MY-SERIAL --gain 40 --volume 3 122.450
  sdrx --gain 34 --sql-level 5 --sample-rate 1.2 118.105 118.505
`

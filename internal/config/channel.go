// Package config parses command-line flags and an optional ini config file
// into the immutable Settings a run is driven by, generalizing the teacher
// repo's pflag-plus-ini.v1 layering to the receiver's channel/gain/rate
// surface.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// subChannelOffsetHz maps the last two digits of an aeronautical
// channel's fractional part to the offset, in Hz, of its 8.33kHz sub-channel
// within the containing 100kHz band. A 100kHz band holds 12 8.33kHz channels
// or 4 25kHz channels, and both notations for the same frequency share this
// table (e.g. "118.275" and "118.280" both resolve to the same Hz offset).
var subChannelOffsetHz = map[string]uint32{
	"00": 0, "05": 0, "10": 8333, "15": 16667,
	"25": 25000, "30": 25000, "35": 33333, "40": 41667,
	"50": 50000, "55": 50000, "60": 58333, "65": 66667,
	"75": 75000, "80": 75000, "85": 83333, "90": 91667,
}

// subChannelOffsetStep is subChannelOffsetHz expressed in 8.33kHz steps
// instead of Hz, used to compute a channel's FTFIR translator offset index
// relative to the tuner center frequency.
var subChannelOffsetStep = map[string]int{
	"00": 0, "05": 0, "10": 1, "15": 2,
	"25": 3, "30": 3, "35": 4, "40": 5,
	"50": 6, "55": 6, "60": 7, "65": 8,
	"75": 9, "80": 9, "85": 10, "90": 11,
}

// fracMultipliers convert a plain-frequency fractional part's successive
// digits into Hz: tenths-of-MHz, hundredths-of-MHz, ... down to the Hz digit.
var fracMultipliers = [...]uint32{100000, 10000, 1000, 100, 10, 1}

// ParseFq parses a frequency string of the form "NNN.FFFFFF" (dot as decimal
// separator, MHz as the integral unit) into a frequency in Hz. If
// aeronautical is true, str must be a six-digit aeronautical channel
// ("118.275") and the fractional part is resolved through
// subChannelOffsetHz rather than parsed digit-by-digit. Returns an error for
// any malformed or out-of-range string.
func ParseFq(str string, aeronautical bool) (uint32, error) {
	dot := strings.IndexByte(str, '.')
	if dot < 0 {
		return 0, fmt.Errorf("config: %q: missing decimal point", str)
	}
	intStr, fracStr := str[:dot], str[dot+1:]

	if !allDigits(intStr) || !allDigits(fracStr) ||
		len(intStr) < 2 || len(intStr) > 4 ||
		len(fracStr) == 0 || len(fracStr) > 6 {
		return 0, fmt.Errorf("config: %q: malformed frequency", str)
	}
	if aeronautical && len(fracStr) != 3 {
		return 0, fmt.Errorf("config: %q: aeronautical channels need a 3-digit fractional part", str)
	}

	mhz, err := strconv.ParseUint(intStr, 10, 32)
	if err != nil {
		return 0, err
	}

	var hz uint32
	if aeronautical {
		off, ok := subChannelOffsetHz[fracStr[1:]]
		if !ok {
			return 0, fmt.Errorf("config: %q: not a valid 8.33/25kHz sub-channel", str)
		}
		hz = uint32(fracStr[0]-'0')*100000 + off
	} else {
		for i := 0; i < len(fracStr); i++ {
			hz += uint32(fracStr[i]-'0') * fracMultipliers[i]
		}
	}

	return uint32(mhz)*1000000 + hz, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ChannelOffset returns how many 8.33kHz steps the given aeronautical
// channel sits from the tuner's center frequency (positive above center,
// negative below), used to derive the FTFIR translator frequency for a
// channel's MSD cascade.
func ChannelOffset(channel string, tunerFqHz uint32) (int, error) {
	dot := strings.IndexByte(channel, '.')
	if dot < 0 {
		return 0, fmt.Errorf("config: %q: missing decimal point", channel)
	}
	intStr, fracStr := channel[:dot], channel[dot+1:]
	if !allDigits(intStr) || len(fracStr) != 3 {
		return 0, fmt.Errorf("config: %q: malformed aeronautical channel", channel)
	}

	mhz, err := strconv.ParseUint(intStr, 10, 32)
	if err != nil {
		return 0, err
	}
	subOffset, ok := subChannelOffsetStep[fracStr[1:]]
	if !ok {
		return 0, fmt.Errorf("config: %q: not a valid 8.33/25kHz sub-channel", channel)
	}

	fqBase := int64(mhz)*1000000 + int64(fracStr[0]-'0')*100000
	fqDiff := fqBase - int64(tunerFqHz)
	offsetDiff := (fqDiff / 100000) * 12
	return int(offsetDiff) + subOffset, nil
}

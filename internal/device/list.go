package device

import (
	rtl "github.com/jpoirier/gortlsdr"
)

// rtlSampleRates is the fixed RTL-capable menu from the sample rate table;
// Airspy devices additionally support 2.5M and 3M (queried live from the
// device, not listed here).
var rtlSampleRates = []uint32{960000, 1200000, 1440000, 1600000, 1920000, 2400000, 2560000}

// List enumerates RTL-SDR devices attached to the system, mirroring
// R820Dev::list()/RtlDev::list(). Airspy enumeration additionally requires
// an AirspyVendor and is exposed separately via ListAirspy.
func List() []Info {
	count := rtl.GetDeviceCount()
	infos := make([]Info, 0, count)
	for i := 0; i < count; i++ {
		_, _, serial, err := rtl.GetDeviceUsbStrings(i)
		available := err == nil
		infos = append(infos, Info{
			Type:              TypeRTL,
			Index:             uint(i),
			Serial:            serial,
			Available:         available,
			Supported:         true,
			Description:       rtl.GetDeviceName(i),
			SampleRates:       append([]uint32(nil), rtlSampleRates...),
			DefaultSampleRate: 1920000,
		})
	}
	return infos
}

// ListAirspy enumerates Airspy devices via the given vendor binding.
func ListAirspy(vendor AirspyVendor) ([]Info, error) {
	serials, err := vendor.ListSerials()
	if err != nil {
		return nil, err
	}

	infos := make([]Info, 0, len(serials))
	for i, serial := range serials {
		infos = append(infos, Info{
			Type:              TypeAirspy,
			Index:             uint(i),
			Serial:            serial,
			Available:         true,
			Supported:         true,
			Description:       "Airspy",
			SampleRates:       []uint32{2500000, 3000000, 6000000, 10000000},
			DefaultSampleRate: 6000000,
		})
	}
	return infos, nil
}

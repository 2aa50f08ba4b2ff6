package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/ini.v1"
)

// fileDefaults mirrors the teacher's ini-mapped config struct: one section
// matching a handful of CLI flags, applied only where the flag wasn't given
// explicitly on the command line.
type fileDefaults struct {
	Receiver struct {
		Device     string
		Gain       string
		Volume     float32
		SqlLevel   float32  `ini:"sql_level"`
		AudioDev   string   `ini:"audio_dev"`
		SampleRate string   `ini:"sample_rate"`
		Modulation string
		FqCorr     int `ini:"fq_corr"`
	}
}

// applyFileDefaults loads path as an ini file and, for every flag not
// already set explicitly on the command line, applies the file's value as
// that flag's new default.
func applyFileDefaults(path string, fs *pflag.FlagSet) error {
	var fd fileDefaults
	if err := ini.MapTo(&fd, path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config: config file %q not found", path)
		}
		return fmt.Errorf("config: reading %q: %w", path, err)
	}

	setIfUnchanged(fs, "device", fd.Receiver.Device)
	setIfUnchanged(fs, "gain", fd.Receiver.Gain)
	setIfUnchanged(fs, "audio-dev", fd.Receiver.AudioDev)
	setIfUnchanged(fs, "sample-rate", fd.Receiver.SampleRate)
	setIfUnchanged(fs, "modulation", fd.Receiver.Modulation)
	if fd.Receiver.Volume != 0 {
		setIfUnchanged(fs, "volume", fmt.Sprintf("%g", fd.Receiver.Volume))
	}
	if fd.Receiver.SqlLevel != 0 {
		setIfUnchanged(fs, "sql-level", fmt.Sprintf("%g", fd.Receiver.SqlLevel))
	}
	if fd.Receiver.FqCorr != 0 {
		setIfUnchanged(fs, "fq-corr", fmt.Sprintf("%d", fd.Receiver.FqCorr))
	}
	return nil
}

func setIfUnchanged(fs *pflag.FlagSet, name, value string) {
	if value == "" || fs.Changed(name) {
		return
	}
	fs.Set(name, value)
}

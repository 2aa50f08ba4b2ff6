package config

import (
	"testing"

	"github.com/sdrxgo/sdrx/internal/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	return &Settings{
		Rate:     Rate1920k,
		Mod:      audio.ModulationAM,
		SqlLevel: 9.0,
		Channels: []Channel{{Name: "118.275", SqlLevel: 9.0}},
	}
}

func TestSettings_ValidateAssignsTunerFq(t *testing.T) {
	s := validSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, uint32(118200000), s.TunerFq)
}

func TestSettings_ValidateRejectsUnsupportedRate(t *testing.T) {
	s := validSettings()
	s.Rate = Rate2500k
	assert.Error(t, s.Validate())
}

func TestSettings_ValidateRejectsOutOfRangeSquelch(t *testing.T) {
	s := validSettings()
	s.SqlLevel = 99
	assert.Error(t, s.Validate())
}

func TestSettings_ValidateRejectsNoChannels(t *testing.T) {
	s := validSettings()
	s.Channels = nil
	assert.Error(t, s.Validate())
}

func TestSettings_ValidateRejectsChannelsOutsideBandwidth(t *testing.T) {
	s := validSettings()
	s.Rate = Rate960k // 960kHz * 0.8 / 2 = 384kHz half-bandwidth
	s.Channels = []Channel{{Name: "118.000"}, {Name: "119.000"}}
	assert.Error(t, s.Validate())
}

func TestSettings_ValidateAssignsPanPositions(t *testing.T) {
	s := validSettings()
	s.Channels = []Channel{{Name: "118.105"}, {Name: "118.505"}}
	require.NoError(t, s.Validate())
	assert.NotEqual(t, s.Channels[0].Pos, s.Channels[1].Pos)
}

func TestParseSampleRate_KnownRates(t *testing.T) {
	r, err := ParseSampleRate("1.92")
	require.NoError(t, err)
	assert.Equal(t, Rate1920k, r)
}

func TestParseSampleRate_RejectsUnknown(t *testing.T) {
	_, err := ParseSampleRate("1.23")
	assert.Error(t, err)
}

func TestSampleRate_String(t *testing.T) {
	assert.Equal(t, "0.96", Rate960k.String())
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFq_PlainFrequency(t *testing.T) {
	hz, err := ParseFq("118.275", false)
	require.NoError(t, err)
	assert.Equal(t, uint32(118275000), hz)
}

func TestParseFq_AeronauticalEquivalentNotations(t *testing.T) {
	a, err := ParseFq("118.275", true)
	require.NoError(t, err)
	b, err := ParseFq("118.280", true)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestParseFq_RejectsMissingDot(t *testing.T) {
	_, err := ParseFq("118275", false)
	assert.Error(t, err)
}

func TestParseFq_RejectsNonAeronauticalSubChannel(t *testing.T) {
	_, err := ParseFq("118.999", true)
	assert.Error(t, err)
}

func TestParseFq_RejectsWrongFractionalLengthForAeronautical(t *testing.T) {
	_, err := ParseFq("118.27", true)
	assert.Error(t, err)
}

func TestChannelOffset_ZeroAtCenter(t *testing.T) {
	off, err := ChannelOffset("118.300", 118300000)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
}

func TestChannelOffset_OneStepAbove(t *testing.T) {
	off, err := ChannelOffset("118.310", 118300000)
	require.NoError(t, err)
	assert.Equal(t, 1, off)
}

func TestChannelOffset_NegativeBelowCenter(t *testing.T) {
	off, err := ChannelOffset("118.210", 118300000)
	require.NoError(t, err)
	assert.Less(t, off, 0)
}

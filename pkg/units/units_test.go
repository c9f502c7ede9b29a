package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	got, err := Parse("Oscillator")
	require.NoError(t, err)
	assert.Equal(t, Oscillator, got)

	_, err = Parse("Theremin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestAll_SortedAndComplete(t *testing.T) {
	all := All()
	require.Len(t, all, len(categories))
	for i := 1; i < len(all); i++ {
		assert.Less(t, string(all[i-1]), string(all[i]))
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, CategorySource, LFO.Category())
	assert.Equal(t, CategoryEffect, Filter.Category())
	assert.Equal(t, CategoryRouting, Merge.Category())
	assert.Equal(t, CategoryAnalysis, Meter.Category())
	assert.Equal(t, CategoryUnknown, Type("Nope").Category())
	assert.Equal(t, "Instrument", CategoryInstrument.String())
}

func TestPolicyFor(t *testing.T) {
	assert.True(t, PolicyFor(Oscillator).AutoStart)
	assert.True(t, PolicyFor(LFO).AutoStart)
	assert.False(t, PolicyFor(Player).AutoStart)
	assert.True(t, PolicyFor(Channel).RouteToOutput)
	assert.Equal(t, Policy{}, PolicyFor(Filter))
}

func TestContinuousSources(t *testing.T) {
	sources := ContinuousSources()
	assert.Len(t, sources, 8)
	assert.Contains(t, sources, PulseOscillator)
	assert.NotContains(t, sources, Channel)
}

package ports

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-patchbay/pkg/events"
	"github.com/dd0wney/cluso-patchbay/pkg/logging"
	"github.com/dd0wney/cluso-patchbay/pkg/metrics"
	"github.com/dd0wney/cluso-patchbay/pkg/units"
)

func TestBuiltinSchemasDecode(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	for _, typ := range []units.Type{units.Oscillator, units.Filter, units.Channel, units.Merge, units.Analyser} {
		assert.True(t, r.Has(typ), typ)
	}
}

func TestFilterSchema(t *testing.T) {
	s := MustRegistry().SchemaFor(units.Filter)

	require.Len(t, s.Inputs, 3)
	require.Len(t, s.Outputs, 1)

	in, ok := s.Input("input")
	require.True(t, ok)
	assert.Equal(t, Audio, in.Signal)
	assert.Equal(t, Stereo, in.ChannelCount())
	assert.Equal(t, 0, in.Index)

	cutoff, ok := s.Input("frequency")
	require.True(t, ok)
	assert.Equal(t, Control, cutoff.Signal)
	assert.Equal(t, "frequency", cutoff.BoundProperty)
	assert.Equal(t, 1, cutoff.Index)

	q, ok := s.Input("Q")
	require.True(t, ok)
	assert.Equal(t, "Q", q.BoundProperty)
	assert.Equal(t, Left, cutoff.Placement.Side)
	assert.Equal(t, Right, q.Placement.Side)

	out, ok := s.DefaultOutput()
	require.True(t, ok)
	assert.Equal(t, Output, out.Direction)
	assert.Equal(t, Stereo, out.ChannelCount())
}

func TestSourceAndAnalyserSchemas(t *testing.T) {
	r := MustRegistry()

	osc := r.SchemaFor(units.Oscillator)
	assert.Empty(t, osc.Inputs)
	_, ok := osc.DefaultInput()
	assert.False(t, ok)
	out, ok := osc.DefaultOutput()
	require.True(t, ok)
	assert.Equal(t, Mono, out.ChannelCount())

	lfo := r.SchemaFor(units.LFO)
	assert.Equal(t, Control, lfo.Outputs[0].Signal)

	for _, typ := range []units.Type{units.Analyser, units.FFT, units.Meter, units.Waveform} {
		s := r.SchemaFor(typ)
		assert.Len(t, s.Inputs, 1, typ)
		assert.Empty(t, s.Outputs, typ)
	}
}

func TestMergeAndSplitMirror(t *testing.T) {
	r := MustRegistry()

	merge := r.SchemaFor(units.Merge)
	require.Len(t, merge.Inputs, 2)
	for i, p := range merge.Inputs {
		assert.Equal(t, Mono, p.ChannelCount())
		assert.Equal(t, i, p.Index)
	}
	assert.Equal(t, "input-0", merge.Inputs[0].ID)
	assert.Equal(t, "input-1", merge.Inputs[1].ID)
	require.Len(t, merge.Outputs, 1)
	assert.Equal(t, Stereo, merge.Outputs[0].ChannelCount())

	split := r.SchemaFor(units.Split)
	require.Len(t, split.Outputs, 2)
	assert.Equal(t, Stereo, split.Inputs[0].ChannelCount())
	assert.Equal(t, "output-1", split.Outputs[1].ID)
}

func TestSynthFamilySharesLayout(t *testing.T) {
	r := MustRegistry()
	base := r.SchemaFor(units.Synth)
	for _, typ := range []units.Type{units.MonoSynth, units.AMSynth, units.FMSynth, units.DuoSynth, units.PolySynth} {
		assert.Equal(t, base, r.SchemaFor(typ), typ)
	}
	assert.Equal(t, "frequency", base.Inputs[0].BoundProperty)
}

func TestSchemaForFallback(t *testing.T) {
	rec := logging.NewRecorder()
	m := metrics.NewRegistry()
	bus := events.NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), events.SchemaFallback)
	require.NoError(t, err)

	r := MustRegistry(WithLogger(rec), WithMetrics(m), WithEvents(bus))
	require.False(t, r.Has(units.Noise))

	s := r.SchemaFor(units.Noise)
	assert.Equal(t, SinglePort(Audio), s)

	warnings := rec.AtLevel(logging.WarnLevel)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Noise", warnings[0].Fields["unit_type"])

	assert.Equal(t, 1.0, metrics.CounterValue(m.SchemaFallbacks, "Noise"))

	select {
	case ev := <-sub.Channel():
		assert.Equal(t, "Noise", ev.UnitType)
	case <-time.After(time.Second):
		t.Fatal("no schema.fallback event")
	}
}

func TestSchemaForKnownTypeIsQuiet(t *testing.T) {
	rec := logging.NewRecorder()
	r := MustRegistry(WithLogger(rec))

	r.SchemaFor(units.Filter)
	assert.Empty(t, rec.Records())
}

func TestSchemaForReturnsClone(t *testing.T) {
	r := MustRegistry()
	s := r.SchemaFor(units.Filter)
	s.Inputs[0].Signal = MIDI

	again := r.SchemaFor(units.Filter)
	assert.Equal(t, Audio, again.Inputs[0].Signal)
}

func TestRegisterIsImmutable(t *testing.T) {
	r := MustRegistry()

	err := r.Register(units.Filter, SinglePort(MIDI))
	assert.ErrorIs(t, err, ErrSchemaExists)

	require.NoError(t, r.Register(units.Gain, SinglePort(Audio)))
	assert.True(t, r.Has(units.Gain))
	assert.ErrorIs(t, r.Register(units.Gain, SinglePort(Audio)), ErrSchemaExists)

	assert.ErrorIs(t, r.Register(units.Type("Theremin"), SinglePort(Audio)), units.ErrUnknownType)
}

func TestEmptyRegistryFallsBackForEverything(t *testing.T) {
	r := NewEmptyRegistry()
	assert.Empty(t, r.DefinedTypes())
	assert.Equal(t, SinglePort(Audio), r.SchemaFor(units.Filter))
}

func TestCoverage(t *testing.T) {
	r := MustRegistry()
	c := r.Coverage()

	assert.Equal(t, len(r.DefinedTypes()), c.Defined)
	assert.Equal(t, len(units.All()), c.Defined+len(c.Missing))
	assert.Contains(t, c.Missing, units.Noise)
	assert.Contains(t, c.Missing, units.CrossFade)
	assert.NotContains(t, c.Missing, units.Oscillator)
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	r := MustRegistry()
	path := writeFile(t, `
schemas:
  - type: Noise
    template: source
  - type: Gain
    inputs:
      - {id: input, signal: audio, channels: 2}
      - {id: gain, signal: control, bind: gain}
    outputs:
      - {id: output, signal: audio, channels: 2}
`)

	n, err := r.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	gain := r.SchemaFor(units.Gain)
	ctl, ok := gain.Input("gain")
	require.True(t, ok)
	assert.Equal(t, 1, ctl.Index)
	assert.Equal(t, Input, ctl.Direction)
	assert.Empty(t, r.SchemaFor(units.Noise).Inputs)
}

func TestLoadFileRejectsKnownType(t *testing.T) {
	r := MustRegistry()
	path := writeFile(t, `
schemas:
  - {type: Noise, template: source}
  - {type: Filter, template: single}
`)

	_, err := r.LoadFile(path)
	assert.ErrorIs(t, err, ErrSchemaExists)
	assert.False(t, r.Has(units.Noise), "load is all-or-nothing")
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type":   "schemas:\n  - {type: Theremin, template: single}\n",
		"bad signal":     "schemas:\n  - {type: Noise, template: source, signal: light}\n",
		"bad channels":   "schemas:\n  - type: Noise\n    outputs:\n      - {id: output, signal: audio, channels: 3}\n",
		"missing id":     "schemas:\n  - type: Noise\n    outputs:\n      - {signal: audio}\n",
		"duplicate port": "schemas:\n  - type: Gain\n    inputs:\n      - {id: x, signal: audio}\n    outputs:\n      - {id: x, signal: audio}\n",
		"mixed":          "schemas:\n  - type: Gain\n    template: single\n    inputs:\n      - {id: x, signal: audio}\n",
		"listed twice":   "schemas:\n  - {type: Gain, template: single}\n  - {type: Gain, template: single}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeString(body)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	_, err := decodeString("schemas:\n  - {type: Gain, colour: red}\n")
	assert.Error(t, err, "unknown fields are rejected")
}

func decodeString(body string) (map[units.Type]Schema, error) {
	return decodeBytes([]byte(body))
}

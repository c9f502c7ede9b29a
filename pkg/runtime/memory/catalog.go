package memory

import "github.com/dd0wney/cluso-patchbay/pkg/units"

// defaults lists the default controls and properties of one unit type.
// Read-only properties are prefixed with "!" in props.
type defaults struct {
	controls map[string]float64
	props    map[string]any
}

func merge(parts ...defaults) defaults {
	out := defaults{controls: map[string]float64{}, props: map[string]any{}}
	for _, p := range parts {
		for k, v := range p.controls {
			out.controls[k] = v
		}
		for k, v := range p.props {
			out.props[k] = v
		}
	}
	return out
}

var (
	source = defaults{
		controls: map[string]float64{"volume": 0},
		props:    map[string]any{"mute": false, "!state": "stopped"},
	}
	oscillator = merge(source, defaults{
		controls: map[string]float64{"frequency": 440, "detune": 0},
		props:    map[string]any{"type": "sine", "phase": 0.0},
	})
	player = merge(source, defaults{
		controls: map[string]float64{"playbackRate": 1},
		props:    map[string]any{"loop": false, "url": ""},
	})
	instrument = defaults{
		controls: map[string]float64{"frequency": 440, "detune": 0, "volume": 0},
		props:    map[string]any{"portamento": 0.0},
	}
	effect = defaults{
		controls: map[string]float64{"wet": 1},
	}
	filter = defaults{
		controls: map[string]float64{"frequency": 350, "Q": 1, "gain": 0, "detune": 0},
		props:    map[string]any{"type": "lowpass", "rolloff": -12},
	}
	envelope = defaults{
		props: map[string]any{"attack": 0.01, "decay": 0.1, "sustain": 0.5, "release": 1.0},
	}
	analysis = defaults{
		props: map[string]any{"size": 1024, "smoothing": 0.8},
	}
)

// catalog is the per-type parameter table. Types missing here have no
// factory in the memory runtime.
var catalog = map[units.Type]defaults{
	units.Oscillator:      oscillator,
	units.OmniOscillator:  oscillator,
	units.AMOscillator:    merge(oscillator, defaults{controls: map[string]float64{"harmonicity": 1}}),
	units.FMOscillator:    merge(oscillator, defaults{controls: map[string]float64{"harmonicity": 1, "modulationIndex": 2}}),
	units.FatOscillator:   merge(oscillator, defaults{props: map[string]any{"count": 3, "spread": 20.0}}),
	units.PWMOscillator:   merge(oscillator, defaults{controls: map[string]float64{"modulationFrequency": 0.4}}),
	units.PulseOscillator: merge(oscillator, defaults{controls: map[string]float64{"width": 0.2}}),
	units.LFO: merge(oscillator, defaults{
		controls: map[string]float64{"frequency": 1, "amplitude": 1},
		props:    map[string]any{"min": 0.0, "max": 1.0},
	}),
	units.Player:      player,
	units.GrainPlayer: merge(player, defaults{props: map[string]any{"grainSize": 0.2, "overlap": 0.1}}),
	units.Noise:       merge(source, defaults{controls: map[string]float64{"playbackRate": 1}, props: map[string]any{"type": "white"}}),
	units.UserMedia:   merge(source, defaults{}),

	units.Synth:     instrument,
	units.MonoSynth: merge(instrument, defaults{props: map[string]any{"filterEnvelope": "default"}}),
	units.AMSynth:   merge(instrument, defaults{controls: map[string]float64{"harmonicity": 3}}),
	units.FMSynth:   merge(instrument, defaults{controls: map[string]float64{"harmonicity": 3, "modulationIndex": 10}}),
	units.DuoSynth:  merge(instrument, defaults{controls: map[string]float64{"harmonicity": 1.5, "vibratoAmount": 0.5}}),
	units.PolySynth: merge(instrument, defaults{props: map[string]any{"maxPolyphony": 32}}),

	units.Filter:           filter,
	units.BiquadFilter:     filter,
	units.Reverb:           merge(effect, defaults{props: map[string]any{"decay": 1.5, "preDelay": 0.01}}),
	units.Delay:            defaults{controls: map[string]float64{"delayTime": 0}, props: map[string]any{"maxDelay": 1.0}},
	units.FeedbackDelay:    merge(effect, defaults{controls: map[string]float64{"delayTime": 0.25, "feedback": 0.125}}),
	units.PingPongDelay:    merge(effect, defaults{controls: map[string]float64{"delayTime": 0.25, "feedback": 0.125}}),
	units.Chorus:           merge(effect, defaults{controls: map[string]float64{"frequency": 1.5}, props: map[string]any{"depth": 0.7, "delayTime": 3.5}}),
	units.Phaser:           merge(effect, defaults{controls: map[string]float64{"frequency": 0.5}, props: map[string]any{"octaves": 3, "baseFrequency": 350.0}}),
	units.Distortion:       merge(effect, defaults{props: map[string]any{"distortion": 0.4, "oversample": "none"}}),
	units.Compressor:       defaults{controls: map[string]float64{"threshold": -24, "ratio": 12, "attack": 0.003, "release": 0.25, "knee": 30}},
	units.AutoFilter:       merge(effect, defaults{controls: map[string]float64{"frequency": 1}, props: map[string]any{"depth": 1.0, "baseFrequency": 200.0}}),
	units.AutoPanner:       merge(effect, defaults{controls: map[string]float64{"frequency": 1}, props: map[string]any{"depth": 1.0}}),
	units.AutoWah:          merge(effect, defaults{controls: map[string]float64{"Q": 2, "gain": 2}, props: map[string]any{"baseFrequency": 100.0, "octaves": 6, "sensitivity": 0.0}}),
	units.BitCrusher:       merge(effect, defaults{props: map[string]any{"bits": 4}}),
	units.Chebyshev:        merge(effect, defaults{props: map[string]any{"order": 50, "oversample": "none"}}),
	units.Freeverb:         merge(effect, defaults{controls: map[string]float64{"roomSize": 0.7, "dampening": 3000}}),
	units.JCReverb:         merge(effect, defaults{controls: map[string]float64{"roomSize": 0.5}}),
	units.PitchShift:       merge(effect, defaults{controls: map[string]float64{"delayTime": 0, "feedback": 0}, props: map[string]any{"pitch": 0.0, "windowSize": 0.1}}),
	units.FrequencyShifter: merge(effect, defaults{controls: map[string]float64{"frequency": 42}}),
	units.StereoWidener:    merge(effect, defaults{controls: map[string]float64{"width": 0.5}}),
	units.Tremolo:          merge(effect, defaults{controls: map[string]float64{"frequency": 10, "depth": 0.5}, props: map[string]any{"type": "sine", "spread": 180.0}}),
	units.Vibrato:          merge(effect, defaults{controls: map[string]float64{"frequency": 5, "depth": 0.1}, props: map[string]any{"type": "sine"}}),
	units.EQ3:              defaults{controls: map[string]float64{"low": 0, "mid": 0, "high": 0, "lowFrequency": 400, "highFrequency": 2500, "Q": 1}},
	units.Gate:             defaults{props: map[string]any{"threshold": -40.0, "smoothing": 0.1}},
	units.Limiter:          defaults{controls: map[string]float64{"threshold": -12}},

	units.AmplitudeEnvelope: envelope,
	units.FrequencyEnvelope: merge(envelope, defaults{props: map[string]any{"baseFrequency": 200.0, "octaves": 4, "exponent": 1}}),
	units.Envelope:          envelope,
	units.Channel:           defaults{controls: map[string]float64{"volume": 0, "pan": 0}, props: map[string]any{"mute": false, "solo": false}},
	units.Panner:            defaults{controls: map[string]float64{"pan": 0}},
	units.Volume:            defaults{controls: map[string]float64{"volume": 0}, props: map[string]any{"mute": false}},
	units.Gain:              defaults{controls: map[string]float64{"gain": 1}},
	units.CrossFade:         defaults{controls: map[string]float64{"fade": 0.5}},

	units.Merge:          defaults{props: map[string]any{"!channels": 2}},
	units.Split:          defaults{props: map[string]any{"!channels": 2}},
	units.MultibandSplit: defaults{controls: map[string]float64{"lowFrequency": 400, "highFrequency": 2500, "Q": 1}},

	units.Analyser: merge(analysis, defaults{props: map[string]any{"type": "fft"}}),
	units.FFT:      merge(analysis, defaults{props: map[string]any{"normalRange": false}}),
	units.Meter:    defaults{props: map[string]any{"smoothing": 0.8, "normalRange": false}},
	units.Waveform: analysis,
}

// Supported lists the types the memory runtime can instantiate.
func Supported() []units.Type {
	out := make([]units.Type, 0, len(catalog))
	for _, t := range units.All() {
		if _, ok := catalog[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

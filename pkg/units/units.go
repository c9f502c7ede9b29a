// Package units defines the closed set of processing-unit types a graph
// node can represent, together with the per-type creation policies the
// engine applies (auto-start, routing to the output sink).
package units

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownType is returned by Parse for tags outside the closed set.
var ErrUnknownType = errors.New("unknown unit type")

// Type identifies which kind of live unit a graph node represents.
type Type string

// Source units
const (
	Oscillator      Type = "Oscillator"
	OmniOscillator  Type = "OmniOscillator"
	AMOscillator    Type = "AMOscillator"
	FMOscillator    Type = "FMOscillator"
	FatOscillator   Type = "FatOscillator"
	PWMOscillator   Type = "PWMOscillator"
	PulseOscillator Type = "PulseOscillator"
	LFO             Type = "LFO"
	Player          Type = "Player"
	GrainPlayer     Type = "GrainPlayer"
	Noise           Type = "Noise"
	UserMedia       Type = "UserMedia"
)

// Instrument units
const (
	Synth     Type = "Synth"
	MonoSynth Type = "MonoSynth"
	AMSynth   Type = "AMSynth"
	FMSynth   Type = "FMSynth"
	DuoSynth  Type = "DuoSynth"
	PolySynth Type = "PolySynth"
)

// Effect units
const (
	Filter           Type = "Filter"
	Reverb           Type = "Reverb"
	Delay            Type = "Delay"
	FeedbackDelay    Type = "FeedbackDelay"
	Chorus           Type = "Chorus"
	Phaser           Type = "Phaser"
	Distortion       Type = "Distortion"
	Compressor       Type = "Compressor"
	AutoFilter       Type = "AutoFilter"
	AutoPanner       Type = "AutoPanner"
	AutoWah          Type = "AutoWah"
	BitCrusher       Type = "BitCrusher"
	Chebyshev        Type = "Chebyshev"
	Freeverb         Type = "Freeverb"
	JCReverb         Type = "JCReverb"
	PingPongDelay    Type = "PingPongDelay"
	PitchShift       Type = "PitchShift"
	FrequencyShifter Type = "FrequencyShifter"
	StereoWidener    Type = "StereoWidener"
	Tremolo          Type = "Tremolo"
	Vibrato          Type = "Vibrato"
	BiquadFilter     Type = "BiquadFilter"
	EQ3              Type = "EQ3"
	Gate             Type = "Gate"
	Limiter          Type = "Limiter"
)

// Component units
const (
	AmplitudeEnvelope Type = "AmplitudeEnvelope"
	FrequencyEnvelope Type = "FrequencyEnvelope"
	Envelope          Type = "Envelope"
	Channel           Type = "Channel"
	Panner            Type = "Panner"
	Volume            Type = "Volume"
	Gain              Type = "Gain"
)

// Routing units
const (
	Merge          Type = "Merge"
	Split          Type = "Split"
	MultibandSplit Type = "MultibandSplit"
	CrossFade      Type = "CrossFade"
)

// Analysis units
const (
	Analyser Type = "Analyser"
	FFT      Type = "FFT"
	Meter    Type = "Meter"
	Waveform Type = "Waveform"
)

// Category groups unit types the way a node catalog would.
type Category int

const (
	CategoryUnknown Category = iota
	CategorySource
	CategoryInstrument
	CategoryEffect
	CategoryComponent
	CategoryRouting
	CategoryAnalysis
)

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case CategorySource:
		return "Source"
	case CategoryInstrument:
		return "Instrument"
	case CategoryEffect:
		return "Effect"
	case CategoryComponent:
		return "Component"
	case CategoryRouting:
		return "Routing"
	case CategoryAnalysis:
		return "Analysis"
	default:
		return "Unknown"
	}
}

var categories = map[Type]Category{
	Oscillator:      CategorySource,
	OmniOscillator:  CategorySource,
	AMOscillator:    CategorySource,
	FMOscillator:    CategorySource,
	FatOscillator:   CategorySource,
	PWMOscillator:   CategorySource,
	PulseOscillator: CategorySource,
	LFO:             CategorySource,
	Player:          CategorySource,
	GrainPlayer:     CategorySource,
	Noise:           CategorySource,
	UserMedia:       CategorySource,

	Synth:     CategoryInstrument,
	MonoSynth: CategoryInstrument,
	AMSynth:   CategoryInstrument,
	FMSynth:   CategoryInstrument,
	DuoSynth:  CategoryInstrument,
	PolySynth: CategoryInstrument,

	Filter:           CategoryEffect,
	Reverb:           CategoryEffect,
	Delay:            CategoryEffect,
	FeedbackDelay:    CategoryEffect,
	Chorus:           CategoryEffect,
	Phaser:           CategoryEffect,
	Distortion:       CategoryEffect,
	Compressor:       CategoryEffect,
	AutoFilter:       CategoryEffect,
	AutoPanner:       CategoryEffect,
	AutoWah:          CategoryEffect,
	BitCrusher:       CategoryEffect,
	Chebyshev:        CategoryEffect,
	Freeverb:         CategoryEffect,
	JCReverb:         CategoryEffect,
	PingPongDelay:    CategoryEffect,
	PitchShift:       CategoryEffect,
	FrequencyShifter: CategoryEffect,
	StereoWidener:    CategoryEffect,
	Tremolo:          CategoryEffect,
	Vibrato:          CategoryEffect,
	BiquadFilter:     CategoryEffect,
	EQ3:              CategoryEffect,
	Gate:             CategoryEffect,
	Limiter:          CategoryEffect,

	AmplitudeEnvelope: CategoryComponent,
	FrequencyEnvelope: CategoryComponent,
	Envelope:          CategoryComponent,
	Channel:           CategoryComponent,
	Panner:            CategoryComponent,
	Volume:            CategoryComponent,
	Gain:              CategoryComponent,

	Merge:          CategoryRouting,
	Split:          CategoryRouting,
	MultibandSplit: CategoryRouting,
	CrossFade:      CategoryRouting,

	Analyser: CategoryAnalysis,
	FFT:      CategoryAnalysis,
	Meter:    CategoryAnalysis,
	Waveform: CategoryAnalysis,
}

// All returns every known unit type in lexical order.
func All() []Type {
	all := make([]Type, 0, len(categories))
	for t := range categories {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return all
}

// Parse converts a tag into a Type, rejecting anything outside the closed set.
func Parse(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t belongs to the closed set.
func (t Type) Valid() bool {
	_, ok := categories[t]
	return ok
}

// Category returns the catalog category of t.
func (t Type) Category() Category {
	return categories[t]
}

func (t Type) String() string {
	return string(t)
}

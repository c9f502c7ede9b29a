package params

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// A4 is MIDI note 69 at 440 Hz.
const (
	A4Note      = 69
	A4Frequency = 440.0
)

// MIDINote is a note-on message.
type MIDINote struct {
	Note     int `validate:"min=0,max=127"`
	Velocity int `validate:"min=0,max=127"`
}

// Validate checks both fields are in the 7-bit MIDI range.
func (n MIDINote) Validate() error {
	if err := validate.Struct(n); err != nil {
		return fmt.Errorf("midi note %d velocity %d: out of range 0-127", n.Note, n.Velocity)
	}
	return nil
}

// Frequency returns the equal-tempered frequency of the note.
func (n MIDINote) Frequency() float64 {
	return MIDINoteToFrequency(n.Note)
}

// MIDINoteToFrequency converts a MIDI note number to Hz.
func MIDINoteToFrequency(note int) float64 {
	return A4Frequency * math.Pow(2, float64(note-A4Note)/12)
}

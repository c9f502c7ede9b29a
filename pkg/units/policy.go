package units

// Policy describes what the engine does to a unit right after instantiation.
type Policy struct {
	// AutoStart marks continuous signal generators that must be started
	// to produce signal.
	AutoStart bool
	// RouteToOutput marks terminal units wired to the runtime's output sink.
	RouteToOutput bool
}

var policies = map[Type]Policy{
	Oscillator:      {AutoStart: true},
	OmniOscillator:  {AutoStart: true},
	AMOscillator:    {AutoStart: true},
	FMOscillator:    {AutoStart: true},
	FatOscillator:   {AutoStart: true},
	PWMOscillator:   {AutoStart: true},
	PulseOscillator: {AutoStart: true},
	LFO:             {AutoStart: true},

	Channel: {RouteToOutput: true},
}

// PolicyFor returns the creation policy for t. Types without an entry get
// the zero Policy.
func PolicyFor(t Type) Policy {
	return policies[t]
}

// ContinuousSources lists the auto-started types.
func ContinuousSources() []Type {
	var out []Type
	for _, t := range All() {
		if policies[t].AutoStart {
			out = append(out, t)
		}
	}
	return out
}

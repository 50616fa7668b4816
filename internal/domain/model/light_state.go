package model

// LightState is a normalized lighting command. Nil fields are left untouched on the bulb.
type LightState struct {
	On               bool
	TransitionPeriod *int // milliseconds
	Brightness       *int
	Temperature      *int // Kelvin
	Hue              *int
	Saturation       *int
}

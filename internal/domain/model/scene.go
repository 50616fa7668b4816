package model

type DurationUnit string

const (
	DurationSecond DurationUnit = "SECOND"
	DurationMinute DurationUnit = "MINUTE"
)

// Scene is the lighting configuration applied to a device. A color bulb uses either
// Temperature or Hue+Saturation; nil means the attribute is absent.
type Scene struct {
	DurationValue int          `json:"duration_value" yaml:"duration_value" validate:"gt=0"`
	DurationUnit  DurationUnit `json:"duration_unit" yaml:"duration_unit" validate:"oneof=SECOND MINUTE"`
	Brightness    int          `json:"brightness" yaml:"brightness" validate:"min=0,max=100"`
	Temperature   *int         `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"omitempty,gt=0"`
	Hue           *int         `json:"hue,omitempty" yaml:"hue,omitempty" validate:"omitempty,min=0,max=359"`
	Saturation    *int         `json:"saturation,omitempty" yaml:"saturation,omitempty" validate:"omitempty,min=0,max=100"`
}

// HasColor reports whether any color attribute is set.
func (s Scene) HasColor() bool {
	return s.Temperature != nil || s.Hue != nil || s.Saturation != nil
}

// Clone returns a deep copy so stored scenes are never shared with callers.
func (s Scene) Clone() Scene {
	c := s
	c.Temperature = cloneInt(s.Temperature)
	c.Hue = cloneInt(s.Hue)
	c.Saturation = cloneInt(s.Saturation)
	return c
}

// Int returns a pointer to v, for optional fields.
func Int(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

package translator

import (
	"domotic/internal/domain/model"
)

// Translator turns a stored scene into the lighting command for one device type.
// It converts units only; range checks belong to the caller.
type Translator interface {
	ToLightState(scene model.Scene) model.LightState
}

// TransitionPeriod converts a scene duration to milliseconds. It reports false for
// an unknown unit.
func TransitionPeriod(value int, unit model.DurationUnit) (int, bool) {
	switch unit {
	case model.DurationMinute:
		return value * 60 * 1000, true
	case model.DurationSecond:
		return value * 1000, true
	default:
		return 0, false
	}
}

// transitionPeriod is nil for an unknown unit, so no period is sent and the bulb
// keeps its own.
func transitionPeriod(scene model.Scene) *int {
	if ms, ok := TransitionPeriod(scene.DurationValue, scene.DurationUnit); ok {
		return model.Int(ms)
	}
	return nil
}

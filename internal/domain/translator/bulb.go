package translator

import (
	"domotic/internal/domain/model"
)

// SimpleBulbStrategy drives dimmable white bulbs; color attributes are not sent.
type SimpleBulbStrategy struct{}

func (s *SimpleBulbStrategy) ToLightState(scene model.Scene) model.LightState {
	return model.LightState{
		On:               true,
		TransitionPeriod: transitionPeriod(scene),
		Brightness:       model.Int(scene.Brightness),
	}
}

// ColorBulbStrategy passes every attribute present on the scene.
type ColorBulbStrategy struct{}

func (s *ColorBulbStrategy) ToLightState(scene model.Scene) model.LightState {
	scene = scene.Clone()
	return model.LightState{
		On:               true,
		TransitionPeriod: transitionPeriod(scene),
		Brightness:       model.Int(scene.Brightness),
		Temperature:      scene.Temperature,
		Hue:              scene.Hue,
		Saturation:       scene.Saturation,
	}
}

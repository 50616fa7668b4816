package translator

import (
	"testing"

	"domotic/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestTransitionPeriod(t *testing.T) {
	tests := []struct {
		value int
		unit  model.DurationUnit
		ms    int
		ok    bool
	}{
		{1, model.DurationMinute, 60000, true},
		{10, model.DurationMinute, 600000, true},
		{30, model.DurationSecond, 30000, true},
		{0, model.DurationSecond, 0, true},
		{5, model.DurationUnit("HOUR"), 0, false},
		{5, model.DurationUnit(""), 0, false},
	}

	for _, tt := range tests {
		ms, ok := TransitionPeriod(tt.value, tt.unit)
		assert.Equal(t, tt.ok, ok, "%d %s", tt.value, tt.unit)
		assert.Equal(t, tt.ms, ms, "%d %s", tt.value, tt.unit)
	}
}

func TestUnknownUnitSendsNoPeriod(t *testing.T) {
	scene := model.Scene{DurationValue: 5, DurationUnit: model.DurationUnit("HOUR"), Brightness: 40, Hue: model.Int(10), Saturation: model.Int(20)}

	assert.Nil(t, (&ColorBulbStrategy{}).ToLightState(scene).TransitionPeriod)
	assert.Nil(t, (&SimpleBulbStrategy{}).ToLightState(scene).TransitionPeriod)
	assert.Equal(t, 40, *(&SimpleBulbStrategy{}).ToLightState(scene).Brightness)
}

func TestColorBulbStrategy(t *testing.T) {
	s := &ColorBulbStrategy{}
	scene := model.Scene{
		DurationValue: 1,
		DurationUnit:  model.DurationMinute,
		Brightness:    100,
		Hue:           model.Int(180),
		Saturation:    model.Int(75),
	}

	state := s.ToLightState(scene)
	assert.True(t, state.On)
	assert.Equal(t, 60000, *state.TransitionPeriod)
	assert.Equal(t, 100, *state.Brightness)
	assert.Equal(t, 180, *state.Hue)
	assert.Equal(t, 75, *state.Saturation)
	assert.Nil(t, state.Temperature)

	// The command must not alias the scene
	*state.Hue = 10
	assert.Equal(t, 180, *scene.Hue)

	// Temperature mode
	scene = model.Scene{DurationValue: 30, DurationUnit: model.DurationSecond, Brightness: 50, Temperature: model.Int(2700)}
	state = s.ToLightState(scene)
	assert.Equal(t, 30000, *state.TransitionPeriod)
	assert.Equal(t, 2700, *state.Temperature)
	assert.Nil(t, state.Hue)
	assert.Nil(t, state.Saturation)
}

func TestColorBulbStrategy_NoClamping(t *testing.T) {
	s := &ColorBulbStrategy{}
	state := s.ToLightState(model.Scene{DurationValue: 1, DurationUnit: model.DurationSecond, Brightness: 150, Hue: model.Int(400), Saturation: model.Int(-1)})
	assert.Equal(t, 150, *state.Brightness)
	assert.Equal(t, 400, *state.Hue)
	assert.Equal(t, -1, *state.Saturation)
}

func TestSimpleBulbStrategy(t *testing.T) {
	s := &SimpleBulbStrategy{}
	state := s.ToLightState(model.Scene{
		DurationValue: 2,
		DurationUnit:  model.DurationMinute,
		Brightness:    80,
		Temperature:   model.Int(5750),
	})
	assert.True(t, state.On)
	assert.Equal(t, 120000, *state.TransitionPeriod)
	assert.Equal(t, 80, *state.Brightness)
	assert.Nil(t, state.Temperature)
	assert.Nil(t, state.Hue)
	assert.Nil(t, state.Saturation)
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	assert.IsType(t, &SimpleBulbStrategy{}, f.GetTranslator(model.DeviceTypeSimpleBulb))
	assert.IsType(t, &ColorBulbStrategy{}, f.GetTranslator(model.DeviceTypeColorBulb))
	assert.IsType(t, &SimpleBulbStrategy{}, f.GetTranslator(model.DeviceType("STRIP")))
}

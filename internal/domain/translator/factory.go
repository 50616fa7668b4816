package translator

import (
	"domotic/internal/domain/model"
)

// Factory holds one Translator per bulb type.
type Factory struct {
	strategies map[model.DeviceType]Translator
}

func NewFactory() *Factory {
	return &Factory{
		strategies: map[model.DeviceType]Translator{
			model.DeviceTypeSimpleBulb: &SimpleBulbStrategy{},
			model.DeviceTypeColorBulb:  &ColorBulbStrategy{},
		},
	}
}

// GetTranslator returns the strategy for deviceType. Types without a strategy are
// driven as simple bulbs, which only receive brightness and transition.
func (f *Factory) GetTranslator(deviceType model.DeviceType) Translator {
	if t, ok := f.strategies[deviceType]; ok {
		return t
	}
	return f.strategies[model.DeviceTypeSimpleBulb]
}

package persistence

import (
	"encoding/json"

	"domotic/internal/domain/model"
	"github.com/rs/zerolog/log"
)

// Earlier releases wrote a bare JSON array, either of devices carrying their own
// scene or of configs keyed by the cloud device id.

type legacyDevice struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Type       model.DeviceType `json:"type"`
	Duration   int              `json:"duration"` // milliseconds
	Brightness int              `json:"brightness"`
	Hue        *int             `json:"hue"`
	Saturation *int             `json:"saturation"`
}

type legacyConfig struct {
	DeviceID    string         `json:"deviceId"`
	Name        string         `json:"name"`
	Duration    legacyDuration `json:"duration"`
	Brightness  int            `json:"brightness"`
	Temperature int            `json:"temperature"`
	Hue         int            `json:"hue"`
	Saturation  int            `json:"saturation"`
}

type legacyDuration struct {
	Value int                `json:"value"`
	Type  model.DurationUnit `json:"type"`
}

func migrate(data []byte) (*snapshot, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	snap := &snapshot{
		Version: currentVersion,
		Devices: make([]model.Device, 0, len(raw)),
		Scenes:  make(map[string]model.Scene, len(raw)),
	}
	if len(raw) == 0 {
		return snap, nil
	}

	var probe struct {
		DeviceID string `json:"deviceId"`
	}
	if err := json.Unmarshal(raw[0], &probe); err != nil {
		return nil, err
	}

	if probe.DeviceID != "" {
		var configs []legacyConfig
		if err := json.Unmarshal(data, &configs); err != nil {
			return nil, err
		}
		for _, c := range configs {
			d, s := fromLegacyConfig(c)
			snap.Devices = append(snap.Devices, d)
			snap.Scenes[d.ID] = s
		}
		log.Info().Int("configs", len(configs)).Msg("Migrated legacy config list")
		return snap, nil
	}

	var devices []legacyDevice
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, err
	}
	for _, ld := range devices {
		d, s := fromLegacyDevice(ld)
		snap.Devices = append(snap.Devices, d)
		snap.Scenes[d.ID] = s
	}
	log.Info().Int("devices", len(devices)).Msg("Migrated legacy device list")
	return snap, nil
}

func fromLegacyDevice(ld legacyDevice) (model.Device, model.Scene) {
	typ := ld.Type
	if typ != model.DeviceTypeColorBulb {
		typ = model.DeviceTypeSimpleBulb
	}
	value, unit := splitMillis(ld.Duration)
	s := model.Scene{DurationValue: value, DurationUnit: unit, Brightness: ld.Brightness}
	if typ == model.DeviceTypeColorBulb && ld.Hue != nil && ld.Saturation != nil {
		s.Hue = model.Int(*ld.Hue)
		s.Saturation = model.Int(*ld.Saturation)
	}
	return model.Device{ID: ld.ID, Name: ld.Name, Type: typ}, s
}

// fromLegacyConfig reads the color mode from the temperature: a positive one is
// white mode, zero means hue and saturation were in use. Both modes need a color bulb.
func fromLegacyConfig(c legacyConfig) (model.Device, model.Scene) {
	d := model.Device{ID: c.DeviceID, Name: c.Name, Type: model.DeviceTypeColorBulb}
	unit := c.Duration.Type
	if unit != model.DurationMinute {
		unit = model.DurationSecond
	}
	s := model.Scene{DurationValue: c.Duration.Value, DurationUnit: unit, Brightness: c.Brightness}

	if c.Temperature > 0 {
		s.Temperature = model.Int(c.Temperature)
	} else {
		s.Hue = model.Int(c.Hue)
		s.Saturation = model.Int(c.Saturation)
	}
	return d, s
}

func splitMillis(ms int) (int, model.DurationUnit) {
	if ms >= 60000 && ms%60000 == 0 {
		return ms / 60000, model.DurationMinute
	}
	if ms < 1000 {
		return 1, model.DurationSecond
	}
	return ms / 1000, model.DurationSecond
}

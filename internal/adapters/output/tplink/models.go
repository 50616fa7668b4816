package tplink

import (
	"encoding/json"

	"domotic/internal/domain/model"
)

const (
	methodPassthrough   = "passthrough"
	methodGetDeviceList = "getDeviceList"
)

type request struct {
	Method string         `json:"method"`
	Params *requestParams `json:"params,omitempty"`
}

// requestParams addresses one device. RequestData is the inner command serialized
// to a JSON string, the form the cloud relays to the bulb.
type requestParams struct {
	DeviceID    string `json:"deviceId"`
	RequestData string `json:"requestData"`
}

type requestData struct {
	LightService lightService `json:"smartlife.iot.smartbulb.lightingservice"`
}

type lightService struct {
	TransitionLightState transitionLightState `json:"transition_light_state"`
}

// Absent attributes are omitted so the bulb keeps its current value for them.
type transitionLightState struct {
	IgnoreDefault    int  `json:"ignore_default"`
	OnOff            int  `json:"on_off"`
	TransitionPeriod *int `json:"transition_period,omitempty"`
	Brightness       *int `json:"brightness,omitempty"`
	ColorTemp        *int `json:"color_temp,omitempty"`
	Hue              *int `json:"hue,omitempty"`
	Saturation       *int `json:"saturation,omitempty"`
}

type envelope struct {
	ErrorCode int             `json:"error_code"`
	Msg       *string         `json:"msg"`
	Result    json.RawMessage `json:"result"`
}

type deviceListResult struct {
	DeviceList []deviceDetail `json:"deviceList"`
}

type deviceDetail struct {
	DeviceID    string `json:"deviceId"`
	Alias       string `json:"alias"`
	DeviceModel string `json:"deviceModel"`
	Status      int    `json:"status"`
}

var modelTypes = map[string]model.DeviceType{
	"LB100(EU)": model.DeviceTypeSimpleBulb,
	"LB100(US)": model.DeviceTypeSimpleBulb,
	"LB110(EU)": model.DeviceTypeSimpleBulb,
	"LB110(US)": model.DeviceTypeSimpleBulb,
	"KL110(EU)": model.DeviceTypeSimpleBulb,
	"KL110(US)": model.DeviceTypeSimpleBulb,
	"LB130(EU)": model.DeviceTypeColorBulb,
	"LB130(US)": model.DeviceTypeColorBulb,
	"KL130(EU)": model.DeviceTypeColorBulb,
	"KL130(US)": model.DeviceTypeColorBulb,
}

// DeviceTypeOf maps a vendor model string to a bulb type. Unknown models are simple bulbs.
func DeviceTypeOf(vendorModel string) model.DeviceType {
	if t, ok := modelTypes[vendorModel]; ok {
		return t
	}
	return model.DeviceTypeSimpleBulb
}

func newTransitionLightState(state model.LightState) transitionLightState {
	t := transitionLightState{
		IgnoreDefault:    1,
		TransitionPeriod: state.TransitionPeriod,
		Brightness:       state.Brightness,
		ColorTemp:        state.Temperature,
		Hue:              state.Hue,
		Saturation:       state.Saturation,
	}
	if state.On {
		t.OnOff = 1
	}
	return t
}

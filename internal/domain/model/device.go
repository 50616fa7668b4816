package model

type DeviceType string

const (
	DeviceTypeSimpleBulb DeviceType = "SIMPLE_BULB"
	DeviceTypeColorBulb  DeviceType = "COLOR_BULB"
)

// Device is a registered bulb. ID is assigned by the cloud vendor (or the user) and never
// changes once created; Name is the human label used by external triggers.
type Device struct {
	ID     string     `json:"id" validate:"required"`
	Name   string     `json:"name" validate:"required"`
	Type   DeviceType `json:"type" validate:"required,oneof=SIMPLE_BULB COLOR_BULB"`
	Status *bool      `json:"status,omitempty"` // Live on/off from the cloud, never persisted
}

// CloudDevice is a bulb as reported by the vendor's device list.
type CloudDevice struct {
	ID     string     `json:"id"`
	Alias  string     `json:"alias"`
	Model  string     `json:"model"`
	Type   DeviceType `json:"type"`
	Status bool       `json:"status"`
}

// DeviceDetail pairs a device with its scene, or with the default scene when none is stored.
type DeviceDetail struct {
	Device Device `json:"device"`
	Scene  Scene  `json:"scene"`
}

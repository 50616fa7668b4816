package ports

import (
	"context"

	"domotic/internal/domain/model"
)

// DeviceRepository is the authoritative device and scene collection.
// Lookups report absence with a false flag, never with an error.
type DeviceRepository interface {
	List(ctx context.Context) ([]model.Device, error)
	GetByID(ctx context.Context, id string) (model.Device, bool)
	GetByName(ctx context.Context, name string) (model.Device, bool)
	Create(ctx context.Context, device model.Device) error
	Update(ctx context.Context, id string, device model.Device) error
	Remove(ctx context.Context, id string) error

	GetScene(ctx context.Context, id string) (model.Scene, bool)
	SaveScene(ctx context.Context, id string, scene model.Scene) error
	DeleteScene(ctx context.Context, id string) error
}

// LightingPort issues commands to the cloud lighting API.
type LightingPort interface {
	ListDevices(ctx context.Context) ([]model.CloudDevice, error)
	SetLightState(ctx context.Context, deviceID string, state model.LightState) error
	TurnOn(ctx context.Context, deviceID string) error
	TurnOff(ctx context.Context, deviceID string) error
}

// ActivityRecorder keeps the history of cloud actions.
type ActivityRecorder interface {
	Record(ctx context.Context, activity model.Activity) error
	Recent(ctx context.Context, limit int) ([]model.Activity, error)
}

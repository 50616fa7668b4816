package ports

import (
	"context"

	"domotic/internal/domain/model"
)

// PanelPort is what the HTTP layer drives.
type PanelPort interface {
	ListDevices(ctx context.Context) ([]model.Device, error)
	CloudDevices(ctx context.Context) ([]model.CloudDevice, error)
	Detail(ctx context.Context, id string) (*model.DeviceDetail, error)
	DetailByName(ctx context.Context, name string) (*model.DeviceDetail, error)
	CreateDevice(ctx context.Context, device model.Device) (*model.DeviceDetail, error)
	UpdateDevice(ctx context.Context, id string, device model.Device) (*model.DeviceDetail, error)
	RemoveDevice(ctx context.Context, id string) error

	// Scene management
	SaveScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error)
	DeleteScene(ctx context.Context, id string) (*model.DeviceDetail, error)
	PreviewScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error)

	// Cloud actions
	ApplyStoredScene(ctx context.Context, id string) (*model.DeviceDetail, error)
	ApplyStoredSceneByName(ctx context.Context, name string) error
	RawOn(ctx context.Context, id string) (*model.DeviceDetail, error)
	RawOff(ctx context.Context, id string) (*model.DeviceDetail, error)

	History(ctx context.Context, limit int) ([]model.Activity, error)
}

package service

import (
	"context"

	"domotic/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]model.Device, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Device), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (model.Device, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Device), args.Bool(1)
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (model.Device, bool) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Device), args.Bool(1)
}

func (m *MockRepository) Create(ctx context.Context, device model.Device) error {
	return m.Called(ctx, device).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id string, device model.Device) error {
	return m.Called(ctx, id, device).Error(0)
}

func (m *MockRepository) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) GetScene(ctx context.Context, id string) (model.Scene, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Scene), args.Bool(1)
}

func (m *MockRepository) SaveScene(ctx context.Context, id string, scene model.Scene) error {
	return m.Called(ctx, id, scene).Error(0)
}

func (m *MockRepository) DeleteScene(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockLighting struct {
	mock.Mock
}

func (m *MockLighting) ListDevices(ctx context.Context) ([]model.CloudDevice, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]model.CloudDevice)
	return devices, args.Error(1)
}

func (m *MockLighting) SetLightState(ctx context.Context, deviceID string, state model.LightState) error {
	return m.Called(ctx, deviceID, state).Error(0)
}

func (m *MockLighting) TurnOn(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

func (m *MockLighting) TurnOff(ctx context.Context, deviceID string) error {
	return m.Called(ctx, deviceID).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, activity model.Activity) error {
	return m.Called(ctx, activity).Error(0)
}

func (m *MockRecorder) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.Activity), args.Error(1)
}

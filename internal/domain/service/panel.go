package service

import (
	"context"
	"time"

	"domotic/internal/domain/model"
	"domotic/internal/domain/translator"
	"domotic/internal/domain/validation"
	"domotic/internal/ports"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var _ ports.PanelPort = (*PanelService)(nil)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// PanelService drives registered bulbs: it keeps the device and scene collection
// consistent and turns scenes into cloud commands.
type PanelService struct {
	repo              ports.DeviceRepository
	lighting          ports.LightingPort
	recorder          ports.ActivityRecorder
	translatorFactory *translator.Factory
	validator         *validation.Validator
	defaultScene      model.Scene
	now               func() time.Time
}

func NewPanelService(repo ports.DeviceRepository, lighting ports.LightingPort, recorder ports.ActivityRecorder, defaultScene model.Scene) *PanelService {
	return &PanelService{
		repo:              repo,
		lighting:          lighting,
		recorder:          recorder,
		translatorFactory: translator.NewFactory(),
		validator:         validation.New(),
		defaultScene:      defaultScene.Clone(),
		now:               time.Now,
	}
}

// ListDevices returns registered devices ordered by name. Live status is attached when
// the cloud answers; a cloud failure only costs the status.
func (s *PanelService) ListDevices(ctx context.Context) ([]model.Device, error) {
	devices, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	cloud, err := s.lighting.ListDevices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Device status unavailable")
		return devices, nil
	}
	status := make(map[string]bool, len(cloud))
	for _, c := range cloud {
		status[c.ID] = c.Status
	}
	for i := range devices {
		if on, ok := status[devices[i].ID]; ok {
			on := on
			devices[i].Status = &on
		}
	}
	return devices, nil
}

func (s *PanelService) CloudDevices(ctx context.Context) ([]model.CloudDevice, error) {
	return s.lighting.ListDevices(ctx)
}

func (s *PanelService) Detail(ctx context.Context, id string) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, device), nil
}

func (s *PanelService) DetailByName(ctx context.Context, name string) (*model.DeviceDetail, error) {
	device, ok := s.repo.GetByName(ctx, name)
	if !ok {
		return nil, &model.NotFoundError{Key: name}
	}
	return s.detail(ctx, device), nil
}

func (s *PanelService) CreateDevice(ctx context.Context, device model.Device) (*model.DeviceDetail, error) {
	device.Status = nil
	if err := s.validator.Device(device); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, device); err != nil {
		return nil, err
	}
	log.Info().Str("device_id", device.ID).Str("name", device.Name).Msg("Device created")
	return s.Detail(ctx, device.ID)
}

// UpdateDevice renames or retypes a device. A stored color scene pins the device to
// the color type.
func (s *PanelService) UpdateDevice(ctx context.Context, id string, device model.Device) (*model.DeviceDetail, error) {
	if _, err := s.device(ctx, id); err != nil {
		return nil, err
	}
	device.ID = id
	device.Status = nil
	if err := s.validator.Device(device); err != nil {
		return nil, err
	}
	if scene, ok := s.repo.GetScene(ctx, id); ok {
		if err := s.validator.Scene(device.Type, scene); err != nil {
			return nil, &model.ValidationError{Field: "type", Reason: "stored scene is not supported by " + string(device.Type) + " devices"}
		}
	}
	if err := s.repo.Update(ctx, id, device); err != nil {
		return nil, err
	}
	return s.Detail(ctx, id)
}

func (s *PanelService) RemoveDevice(ctx context.Context, id string) error {
	if err := s.repo.Remove(ctx, id); err != nil {
		return err
	}
	log.Info().Str("device_id", id).Msg("Device removed")
	return nil
}

func (s *PanelService) SaveScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Scene(device.Type, scene); err != nil {
		return nil, err
	}
	if err := s.repo.SaveScene(ctx, id, scene); err != nil {
		return nil, err
	}
	return s.Detail(ctx, id)
}

// DeleteScene reverts the device to the default scene.
func (s *PanelService) DeleteScene(ctx context.Context, id string) (*model.DeviceDetail, error) {
	if _, err := s.device(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteScene(ctx, id); err != nil {
		return nil, err
	}
	return s.Detail(ctx, id)
}

// PreviewScene switches the bulb off, then runs the candidate scene from dark. The
// candidate is never stored.
func (s *PanelService) PreviewScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Scene(device.Type, scene); err != nil {
		return nil, err
	}

	err = s.lighting.TurnOff(ctx, device.ID)
	if err == nil {
		state := s.translatorFactory.GetTranslator(device.Type).ToLightState(scene)
		err = s.lighting.SetLightState(ctx, device.ID, state)
	}
	s.record(ctx, model.ActionPreviewScene, device.ID, err)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, device), nil
}

func (s *PanelService) ApplyStoredScene(ctx context.Context, id string) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, device); err != nil {
		return nil, err
	}
	return s.detail(ctx, device), nil
}

// ApplyStoredSceneByName is the external trigger path.
func (s *PanelService) ApplyStoredSceneByName(ctx context.Context, name string) error {
	device, ok := s.repo.GetByName(ctx, name)
	if !ok {
		return &model.NotFoundError{Key: name}
	}
	return s.apply(ctx, device)
}

func (s *PanelService) RawOn(ctx context.Context, id string) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.lighting.TurnOn(ctx, device.ID)
	s.record(ctx, model.ActionTurnOn, device.ID, err)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, device), nil
}

func (s *PanelService) RawOff(ctx context.Context, id string) (*model.DeviceDetail, error) {
	device, err := s.device(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.lighting.TurnOff(ctx, device.ID)
	s.record(ctx, model.ActionTurnOff, device.ID, err)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, device), nil
}

func (s *PanelService) History(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.recorder.Recent(ctx, limit)
}

func (s *PanelService) apply(ctx context.Context, device model.Device) error {
	scene := s.scene(ctx, device.ID)
	state := s.translatorFactory.GetTranslator(device.Type).ToLightState(scene)
	err := s.lighting.SetLightState(ctx, device.ID, state)
	s.record(ctx, model.ActionApplyScene, device.ID, err)
	return err
}

func (s *PanelService) device(ctx context.Context, id string) (model.Device, error) {
	device, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return model.Device{}, &model.NotFoundError{Key: id}
	}
	return device, nil
}

func (s *PanelService) detail(ctx context.Context, device model.Device) *model.DeviceDetail {
	return &model.DeviceDetail{Device: device, Scene: s.scene(ctx, device.ID)}
}

func (s *PanelService) scene(ctx context.Context, id string) model.Scene {
	if scene, ok := s.repo.GetScene(ctx, id); ok {
		return scene
	}
	return s.defaultScene.Clone()
}

// record appends the outcome of a cloud action. The ledger never fails the action.
func (s *PanelService) record(ctx context.Context, action model.ActivityAction, deviceID string, actionErr error) {
	activity := model.Activity{
		ID:       uuid.NewString(),
		Action:   action,
		DeviceID: deviceID,
		Outcome:  model.OutcomeSuccess,
		At:       s.now().UTC(),
	}
	if actionErr != nil {
		activity.Outcome = model.OutcomeFailure
		activity.Message = actionErr.Error()
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), activity); err != nil {
		log.Warn().Err(err).Str("device_id", deviceID).Str("action", string(action)).Msg("Cannot record activity")
	}
}

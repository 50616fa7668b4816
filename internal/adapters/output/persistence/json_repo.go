package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"domotic/internal/domain/model"
	"domotic/internal/ports"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const currentVersion = 1

var _ ports.DeviceRepository = (*JSONDeviceRepository)(nil)

// ErrClosed is returned by mutations after Close.
var ErrClosed = errors.New("device store is closed")

// JSONDeviceRepository keeps devices and scenes in memory and rewrites the whole
// file after every mutation. The in-memory state is swapped only once the file
// has been replaced, so readers never see a change that was not persisted.
type JSONDeviceRepository struct {
	path string
	mu   sync.RWMutex

	devices []model.Device
	scenes  map[string]model.Scene
	closed  bool
}

type snapshot struct {
	Version int                    `json:"version"`
	Devices []model.Device         `json:"devices"`
	Scenes  map[string]model.Scene `json:"scenes"`
}

// Open loads the store from path. A missing file yields an empty store; a file
// that cannot be decoded yields a *model.CorruptStoreError.
func Open(path string) (*JSONDeviceRepository, error) {
	r := &JSONDeviceRepository{
		path:    path,
		devices: []model.Device{},
		scenes:  map[string]model.Scene{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("Device store not found, starting empty")
			return r, nil
		}
		return nil, errors.Wrapf(err, "read device store %s", path)
	}

	snap, err := decode(data)
	if err != nil {
		return nil, &model.CorruptStoreError{Path: path, Err: err}
	}
	if err := checkUnique(snap.Devices); err != nil {
		return nil, &model.CorruptStoreError{Path: path, Err: err}
	}

	r.devices = snap.Devices
	r.scenes = snap.Scenes
	log.Info().Str("path", path).Int("devices", len(r.devices)).Int("scenes", len(r.scenes)).Msg("Device store loaded")
	return r, nil
}

func decode(data []byte) (*snapshot, error) {
	var snap *snapshot
	switch firstToken(data) {
	case '[':
		legacy, err := migrate(data)
		if err != nil {
			return nil, err
		}
		snap = legacy
	case '{':
		snap = &snapshot{}
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, err
		}
		if snap.Version > currentVersion {
			return nil, errors.Errorf("unsupported store version %d", snap.Version)
		}
	default:
		return nil, errors.New("expected a JSON object or array")
	}

	if snap.Devices == nil {
		snap.Devices = []model.Device{}
	}
	if snap.Scenes == nil {
		snap.Scenes = map[string]model.Scene{}
	}
	for i := range snap.Devices {
		snap.Devices[i].Status = nil
	}
	return snap, nil
}

func firstToken(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}

func checkUnique(devices []model.Device) error {
	ids := make(map[string]struct{}, len(devices))
	names := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		if _, ok := ids[d.ID]; ok {
			return &model.DuplicateKeyError{Field: "id", Value: d.ID}
		}
		if _, ok := names[d.Name]; ok {
			return &model.DuplicateKeyError{Field: "name", Value: d.Name}
		}
		ids[d.ID] = struct{}{}
		names[d.Name] = struct{}{}
	}
	return nil
}

// Close flushes nothing (every mutation is already on disk) and rejects later mutations.
func (r *JSONDeviceRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *JSONDeviceRepository) List(ctx context.Context) ([]model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]model.Device, len(r.devices))
	copy(devices, r.devices)
	sort.SliceStable(devices, func(i, j int) bool {
		if devices[i].Name == devices[j].Name {
			return devices[i].ID < devices[j].ID
		}
		return devices[i].Name < devices[j].Name
	})
	return devices, nil
}

func (r *JSONDeviceRepository) GetByID(ctx context.Context, id string) (model.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.devices[i], true
	}
	return model.Device{}, false
}

func (r *JSONDeviceRepository) GetByName(ctx context.Context, name string) (model.Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.devices {
		if d.Name == name {
			return d, true
		}
	}
	return model.Device{}, false
}

func (r *JSONDeviceRepository) Create(ctx context.Context, device model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	for _, d := range r.devices {
		if d.ID == device.ID {
			return &model.DuplicateKeyError{Field: "id", Value: device.ID}
		}
		if d.Name == device.Name {
			return &model.DuplicateKeyError{Field: "name", Value: device.Name}
		}
	}

	device.Status = nil
	next := append(r.cloneDevices(), device)
	return r.commit(next, r.scenes)
}

// Update replaces the device stored under id. The id itself is immutable.
func (r *JSONDeviceRepository) Update(ctx context.Context, id string, device model.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	i := r.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{Key: id}
	}
	for _, d := range r.devices {
		if d.ID != id && d.Name == device.Name {
			return &model.DuplicateKeyError{Field: "name", Value: device.Name}
		}
	}

	device.ID = id
	device.Status = nil
	next := r.cloneDevices()
	next[i] = device
	return r.commit(next, r.scenes)
}

// Remove deletes the device and its scene.
func (r *JSONDeviceRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	i := r.indexOf(id)
	if i < 0 {
		return &model.NotFoundError{Key: id}
	}

	next := make([]model.Device, 0, len(r.devices)-1)
	next = append(next, r.devices[:i]...)
	next = append(next, r.devices[i+1:]...)
	scenes := r.cloneScenes()
	delete(scenes, id)
	return r.commit(next, scenes)
}

func (r *JSONDeviceRepository) GetScene(ctx context.Context, id string) (model.Scene, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scenes[id]
	if !ok {
		return model.Scene{}, false
	}
	return s.Clone(), true
}

func (r *JSONDeviceRepository) SaveScene(ctx context.Context, id string, scene model.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.indexOf(id) < 0 {
		return &model.NotFoundError{Key: id}
	}

	scenes := r.cloneScenes()
	scenes[id] = scene.Clone()
	return r.commit(r.devices, scenes)
}

// DeleteScene drops the scene of an existing device. A device without scene is left as is.
func (r *JSONDeviceRepository) DeleteScene(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.indexOf(id) < 0 {
		return &model.NotFoundError{Key: id}
	}
	if _, ok := r.scenes[id]; !ok {
		return nil
	}

	scenes := r.cloneScenes()
	delete(scenes, id)
	return r.commit(r.devices, scenes)
}

// commit persists the next state and swaps it in. Caller must hold r.mu.
func (r *JSONDeviceRepository) commit(devices []model.Device, scenes map[string]model.Scene) error {
	if err := r.writeLocked(devices, scenes); err != nil {
		return err
	}
	r.devices = devices
	r.scenes = scenes
	return nil
}

// writeLocked writes a temp file next to the target, syncs it and renames it over
// the target so a crash leaves either the old or the new snapshot.
func (r *JSONDeviceRepository) writeLocked(devices []model.Device, scenes map[string]model.Scene) error {
	data, err := json.MarshalIndent(snapshot{
		Version: currentVersion,
		Devices: devices,
		Scenes:  scenes,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode device store")
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create store directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp store file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp store file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp store file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp store file")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.Wrap(err, "chmod temp store file")
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return errors.Wrapf(err, "replace device store %s", r.path)
	}
	return nil
}

func (r *JSONDeviceRepository) indexOf(id string) int {
	for i, d := range r.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (r *JSONDeviceRepository) cloneDevices() []model.Device {
	next := make([]model.Device, len(r.devices), len(r.devices)+1)
	copy(next, r.devices)
	return next
}

func (r *JSONDeviceRepository) cloneScenes() map[string]model.Scene {
	next := make(map[string]model.Scene, len(r.scenes))
	for k, v := range r.scenes {
		next[k] = v
	}
	return next
}

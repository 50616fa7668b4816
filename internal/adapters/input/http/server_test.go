package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"domotic/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPanel struct {
	mock.Mock
}

func (m *MockPanel) detail(args mock.Arguments) (*model.DeviceDetail, error) {
	d, _ := args.Get(0).(*model.DeviceDetail)
	return d, args.Error(1)
}

func (m *MockPanel) ListDevices(ctx context.Context) ([]model.Device, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]model.Device)
	return devices, args.Error(1)
}

func (m *MockPanel) CloudDevices(ctx context.Context) ([]model.CloudDevice, error) {
	args := m.Called(ctx)
	devices, _ := args.Get(0).([]model.CloudDevice)
	return devices, args.Error(1)
}

func (m *MockPanel) Detail(ctx context.Context, id string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *MockPanel) DetailByName(ctx context.Context, name string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, name))
}

func (m *MockPanel) CreateDevice(ctx context.Context, device model.Device) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, device))
}

func (m *MockPanel) UpdateDevice(ctx context.Context, id string, device model.Device) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id, device))
}

func (m *MockPanel) RemoveDevice(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPanel) SaveScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id, scene))
}

func (m *MockPanel) DeleteScene(ctx context.Context, id string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *MockPanel) PreviewScene(ctx context.Context, id string, scene model.Scene) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id, scene))
}

func (m *MockPanel) ApplyStoredScene(ctx context.Context, id string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *MockPanel) ApplyStoredSceneByName(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *MockPanel) RawOn(ctx context.Context, id string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *MockPanel) RawOff(ctx context.Context, id string) (*model.DeviceDetail, error) {
	return m.detail(m.Called(ctx, id))
}

func (m *MockPanel) History(ctx context.Context, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, limit)
	history, _ := args.Get(0).([]model.Activity)
	return history, args.Error(1)
}

var detail = &model.DeviceDetail{
	Device: model.Device{ID: "1", Name: "device1", Type: model.DeviceTypeColorBulb},
	Scene: model.Scene{
		DurationValue: 1,
		DurationUnit:  model.DurationMinute,
		Brightness:    100,
		Hue:           model.Int(180),
		Saturation:    model.Int(75),
	},
}

func newHandler(panel *MockPanel) http.Handler {
	return NewServer(panel, Config{AllowedPrefixes: []string{"192.168.1."}}).Handler()
}

func do(h http.Handler, method, target, body, remoteAddr string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const lan = "192.168.1.20:51000"

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSunrise_AlwaysDone(t *testing.T) {
	panel := new(MockPanel)
	panel.On("ApplyStoredSceneByName", mock.Anything, "device1").Return(nil)
	panel.On("ApplyStoredSceneByName", mock.Anything, "unknown").Return(&model.NotFoundError{Key: "unknown"})
	panel.On("ApplyStoredSceneByName", mock.Anything, "offline").Return(&model.CloudError{Code: -20571, Message: "Device is offline"})
	h := newHandler(panel)

	for _, name := range []string{"device1", "unknown", "offline"} {
		rec := do(h, http.MethodGet, "/sunrise/"+name, "", "203.0.113.9:4000")
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "Done", rec.Body.String(), name)
	}
	panel.AssertExpectations(t)
}

func TestAdminRoutes_RejectRemoteCallers(t *testing.T) {
	panel := new(MockPanel)
	h := newHandler(panel)

	rec := do(h, http.MethodGet, "/devices", "", "203.0.113.9:4000")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	panel.AssertNotCalled(t, "ListDevices", mock.Anything)
}

func TestAdminRoutes_IgnoreForgedHost(t *testing.T) {
	panel := new(MockPanel)
	h := newHandler(panel)

	for _, host := range []string{"localhost", "domotic.local:8080"} {
		req := httptest.NewRequest(http.MethodDelete, "/devices/1", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Host = host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code, host)
	}
	panel.AssertNotCalled(t, "RemoveDevice", mock.Anything, mock.Anything)
}

func TestAdminRoutes_AllowLoopbackListener(t *testing.T) {
	panel := new(MockPanel)
	panel.On("ListDevices", mock.Anything).Return([]model.Device{detail.Device}, nil)
	h := newHandler(panel)

	req := httptest.NewRequest(http.MethodGet, "/devices", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	loopback := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080}
	req = req.WithContext(context.WithValue(req.Context(), http.LocalAddrContextKey, loopback))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var devices []model.Device
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	assert.Equal(t, []model.Device{detail.Device}, devices)
}

func TestCreateDevice(t *testing.T) {
	panel := new(MockPanel)
	panel.On("CreateDevice", mock.Anything, detail.Device).Return(detail, nil)
	h := newHandler(panel)

	rec := do(h, http.MethodPost, "/devices", `{"id":"1","name":"device1","type":"COLOR_BULB"}`, lan)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var got model.DeviceDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, *detail, got)
}

func TestCreateDevice_BadBody(t *testing.T) {
	panel := new(MockPanel)
	h := newHandler(panel)

	rec := do(h, http.MethodPost, "/devices", `{"id":`, lan)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", errorOf(t, rec).Field)
	panel.AssertNotCalled(t, "CreateDevice", mock.Anything, mock.Anything)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", &model.ValidationError{Field: "brightness", Reason: "must be at most 100"}, http.StatusBadRequest, "invalid brightness: must be at most 100"},
		{"not found", &model.NotFoundError{Key: "1"}, http.StatusNotFound, `no device found with the key "1"`},
		{"duplicate", &model.DuplicateKeyError{Field: "name", Value: "device1"}, http.StatusConflict, `a device already exists with the name "device1"`},
		{"cloud", &model.CloudError{Code: -20571, Message: "Device is offline"}, http.StatusBadGateway, "Device is offline"},
		{"transport", &model.TransportError{Err: errors.New("dial tcp: connection refused")}, http.StatusBadGateway, "Internal error"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "Internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := new(MockPanel)
			panel.On("ApplyStoredScene", mock.Anything, "1").Return(nil, tt.err)
			h := newHandler(panel)

			rec := do(h, http.MethodPost, "/devices/1/apply", "", lan)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorOf(t, rec).Error)
		})
	}
}

func TestDeviceRoutes(t *testing.T) {
	scene := detail.Scene
	tests := []struct {
		method string
		target string
		body   string
		call   string
		args   []interface{}
	}{
		{http.MethodGet, "/devices/1", "", "Detail", []interface{}{mock.Anything, "1"}},
		{http.MethodPut, "/devices/1", `{"name":"device1","type":"COLOR_BULB"}`, "UpdateDevice",
			[]interface{}{mock.Anything, "1", model.Device{Name: "device1", Type: model.DeviceTypeColorBulb}}},
		{http.MethodPut, "/devices/1/scene", `{"duration_value":1,"duration_unit":"MINUTE","brightness":100,"hue":180,"saturation":75}`, "SaveScene",
			[]interface{}{mock.Anything, "1", scene}},
		{http.MethodDelete, "/devices/1/scene", "", "DeleteScene", []interface{}{mock.Anything, "1"}},
		{http.MethodPost, "/devices/1/scene/test", `{"duration_value":1,"duration_unit":"MINUTE","brightness":100,"hue":180,"saturation":75}`, "PreviewScene",
			[]interface{}{mock.Anything, "1", scene}},
		{http.MethodPost, "/devices/1/on", "", "RawOn", []interface{}{mock.Anything, "1"}},
		{http.MethodPost, "/devices/1/off", "", "RawOff", []interface{}{mock.Anything, "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			panel := new(MockPanel)
			panel.On(tt.call, tt.args...).Return(detail, nil)
			h := newHandler(panel)

			rec := do(h, tt.method, tt.target, tt.body, lan)

			assert.Equal(t, http.StatusOK, rec.Code)
			panel.AssertExpectations(t)
		})
	}
}

func TestRemoveDevice(t *testing.T) {
	panel := new(MockPanel)
	panel.On("RemoveDevice", mock.Anything, "1").Return(nil)
	h := newHandler(panel)

	rec := do(h, http.MethodDelete, "/devices/1", "", lan)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	panel.AssertExpectations(t)
}

func TestCloudDevices(t *testing.T) {
	panel := new(MockPanel)
	panel.On("CloudDevices", mock.Anything).Return([]model.CloudDevice{{ID: "1", Alias: "Bedroom", Model: "LB130(EU)", Type: model.DeviceTypeColorBulb}}, nil)
	h := newHandler(panel)

	rec := do(h, http.MethodGet, "/cloud/devices", "", lan)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alias":"Bedroom"`)
}

func TestHistory(t *testing.T) {
	panel := new(MockPanel)
	panel.On("History", mock.Anything, 5).Return([]model.Activity{{ID: "a", Action: model.ActionTurnOn}}, nil)
	h := newHandler(panel)

	rec := do(h, http.MethodGet, "/history?limit=5", "", lan)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"turn_on"`)

	rec = do(h, http.MethodGet, "/history?limit=abc", "", lan)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecoversFromPanic(t *testing.T) {
	panel := new(MockPanel)
	panel.On("RawOn", mock.Anything, "1").Run(func(mock.Arguments) { panic("boom") })
	h := newHandler(panel)

	rec := do(h, http.MethodPost, "/devices/1/on", "", lan)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

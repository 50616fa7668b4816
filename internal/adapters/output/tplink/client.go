package tplink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"domotic/internal/domain/model"
	"domotic/internal/ports"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultURL = "https://wap.tplinkcloud.com"

	deviceListKey  = "devices"
	unknownMessage = "Unknown error"
)

var _ ports.LightingPort = (*Client)(nil)

type Config struct {
	URL      string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration // 0 disables the device list cache
}

// Client talks to the TP-Link Kasa cloud. Every call is a single POST bounded by
// the configured timeout; nothing is retried.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	devices    *cache.Cache
}

func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.URL, "/")
	if base == "" {
		base = DefaultURL
	}
	c := &Client{
		url:        base,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.CacheTTL > 0 {
		c.devices = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// ListDevices returns the bulbs bound to the account. An envelope without result is
// an empty account, not a failure.
func (c *Client) ListDevices(ctx context.Context) ([]model.CloudDevice, error) {
	if c.devices != nil {
		if cached, ok := c.devices.Get(deviceListKey); ok {
			return copyDevices(cached.([]model.CloudDevice)), nil
		}
	}

	env, err := c.call(ctx, request{Method: methodGetDeviceList}, "")
	if err != nil {
		return nil, err
	}

	devices := []model.CloudDevice{}
	if !isNull(env.Result) {
		var result deviceListResult
		if err := json.Unmarshal(env.Result, &result); err != nil {
			log.Error().Err(err).Str("method", methodGetDeviceList).Msg("Cannot decode TP-Link device list")
			return nil, &model.TransportError{Err: errors.Wrap(err, "decode device list")}
		}
		for _, d := range result.DeviceList {
			devices = append(devices, model.CloudDevice{
				ID:     d.DeviceID,
				Alias:  d.Alias,
				Model:  d.DeviceModel,
				Type:   DeviceTypeOf(d.DeviceModel),
				Status: d.Status == 1,
			})
		}
	} else {
		log.Warn().Msg("TP-Link returned no device list")
	}

	if c.devices != nil {
		c.devices.Set(deviceListKey, devices, cache.DefaultExpiration)
	}
	return copyDevices(devices), nil
}

// SetLightState sends a transition_light_state command to one bulb.
func (c *Client) SetLightState(ctx context.Context, deviceID string, state model.LightState) error {
	inner, err := json.Marshal(requestData{
		LightService: lightService{TransitionLightState: newTransitionLightState(state)},
	})
	if err != nil {
		return errors.Wrap(err, "encode light state")
	}

	req := request{
		Method: methodPassthrough,
		Params: &requestParams{DeviceID: deviceID, RequestData: string(inner)},
	}
	c.invalidateDevices()
	_, err = c.call(ctx, req, deviceID)
	// A listing that raced with the call may have cached the previous status.
	c.invalidateDevices()
	return err
}

func (c *Client) TurnOn(ctx context.Context, deviceID string) error {
	return c.SetLightState(ctx, deviceID, model.LightState{On: true})
}

func (c *Client) TurnOff(ctx context.Context, deviceID string) error {
	return c.SetLightState(ctx, deviceID, model.LightState{On: false})
}

// call posts one request and checks the response envelope. Failures are logged here
// with full detail and returned as *model.CloudError or *model.TransportError.
func (c *Client) call(ctx context.Context, req request, deviceID string) (*envelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}

	endpoint := fmt.Sprintf("%s?token=%s", c.url, url.QueryEscape(c.token))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, c.transportError(req.Method, deviceID, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportError(req.Method, deviceID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.transportError(req.Method, deviceID, fmt.Errorf("TP-Link API error: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(req.Method, deviceID, err)
	}
	if isNull(data) {
		log.Error().Str("method", req.Method).Str("device_id", deviceID).Msg("TP-Link response has a null body")
		return nil, &model.CloudError{Code: -1, Message: unknownMessage}
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, c.transportError(req.Method, deviceID, errors.Wrap(err, "decode envelope"))
	}

	if env.ErrorCode != 0 || env.Msg != nil {
		msg := unknownMessage
		if env.Msg != nil {
			msg = *env.Msg
		}
		log.Error().
			Str("method", req.Method).
			Str("device_id", deviceID).
			Int("error_code", env.ErrorCode).
			Str("message", msg).
			Msg("TP-Link call rejected")
		return nil, &model.CloudError{Code: env.ErrorCode, Message: msg}
	}

	return &env, nil
}

func (c *Client) transportError(method, deviceID string, err error) error {
	log.Error().Err(err).Str("method", method).Str("device_id", deviceID).Msg("TP-Link call failed")
	return &model.TransportError{Err: err}
}

func (c *Client) invalidateDevices() {
	if c.devices != nil {
		c.devices.Delete(deviceListKey)
	}
}

func copyDevices(devices []model.CloudDevice) []model.CloudDevice {
	out := make([]model.CloudDevice, len(devices))
	copy(out, devices)
	return out
}

func isNull(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

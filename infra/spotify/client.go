// Package spotify implements the media contracts against the Spotify Web
// API. It is the production dispatch sink of the engine: SetVolume maps HTTP
// 429 to media.Rejected so the scheduler can back off, and transparently
// transfers playback to a usable device when none is active.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/orthoctl/orthoctl/core/media"
	"github.com/orthoctl/orthoctl/infra/logger"
)

// Client calls the Spotify Web API with automatic token refresh.
type Client struct {
	http *http.Client
	base string
	log  logger.Logger
}

// New creates a Client using the refresh token from cfg. The returned client
// refreshes access tokens as needed through the configured token endpoint.
func New(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conf := cfg.toOauth2Config()
	ts := conf.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	return &Client{http: hc, base: cfg.APIURL, log: logger.New("spotify")}, nil
}

// NewWithHTTPClient creates a Client with a caller-provided HTTP client,
// bypassing OAuth. Used by tests.
func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	cfg.SetDefaults()
	return &Client{http: hc, base: cfg.APIURL, log: logger.New("spotify")}
}

// SetVolume applies the knob position as a volume percentage on the active
// device. A 404 (no active device) triggers one device-discovery and playback
// transfer attempt before retrying the call.
func (c *Client) SetVolume(ctx context.Context, value int) (media.Outcome, error) {
	pct := media.PercentFromPosition(value)
	outcome, err := c.putVolume(ctx, pct, "")
	if outcome != media.OtherFailure || err == nil || !isNoDevice(err) {
		return outcome, err
	}

	c.log.Warnf("no active device, attempting playback transfer")
	id, derr := c.pickDevice(ctx)
	if derr != nil {
		return media.OtherFailure, fmt.Errorf("device fallback: %w", derr)
	}
	if terr := c.transferPlayback(ctx, id); terr != nil {
		return media.OtherFailure, fmt.Errorf("transfer playback: %w", terr)
	}
	return c.putVolume(ctx, pct, id)
}

func (c *Client) putVolume(ctx context.Context, pct int, deviceID string) (media.Outcome, error) {
	q := url.Values{"volume_percent": []string{strconv.Itoa(pct)}}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/me/player/volume?"+q.Encode(), nil)
	if err != nil {
		return media.OtherFailure, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return media.OtherFailure, err
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			c.log.Warnf("rate limited by Spotify, Retry-After %ss", ra)
		}
		return media.Rejected, fmt.Errorf("spotify: rate limited")
	case resp.StatusCode == http.StatusNotFound:
		return media.OtherFailure, errNoDevice
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return media.Accepted, nil
	default:
		return media.OtherFailure, fmt.Errorf("spotify: volume call returned %s", resp.Status)
	}
}

// CurrentVolume reports the volume of the current playback device in percent.
func (c *Client) CurrentVolume(ctx context.Context) (int, bool) {
	state, err := c.playerState(ctx)
	if err != nil {
		c.log.Debugf("current volume unavailable: %v", err)
		return 0, false
	}
	if state == nil || state.Device.VolumePercent == nil {
		return 0, false
	}
	return *state.Device.VolumePercent, true
}

// TogglePlayPause pauses playback when something is playing and resumes it
// otherwise.
func (c *Client) TogglePlayPause(ctx context.Context) error {
	state, err := c.playerState(ctx)
	if err != nil {
		return err
	}
	endpoint := "/me/player/play"
	if state != nil && state.IsPlaying {
		endpoint = "/me/player/pause"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("spotify: %s returned %s", endpoint, resp.Status)
	}
	return nil
}

type playerState struct {
	IsPlaying bool   `json:"is_playing"`
	Device    device `json:"device"`
}

type device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	VolumePercent *int   `json:"volume_percent"`
}

// playerState returns nil without error when there is no playback session
// (HTTP 204).
func (c *Client) playerState(ctx context.Context) (*playerState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/me/player", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer drain(resp.Body)
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify: player state returned %s", resp.Status)
	}
	var state playerState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, err
	}
	return &state, nil
}

// pickDevice selects a device for volume control: the current one when
// present, else the first non-restricted device of a preferred type, else any
// non-restricted device.
func (c *Client) pickDevice(ctx context.Context) (string, error) {
	if state, err := c.playerState(ctx); err == nil && state != nil && state.Device.ID != "" {
		return state.Device.ID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/me/player/devices", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify: devices returned %s", resp.Status)
	}
	var list struct {
		Devices []device `json:"devices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", err
	}

	for _, preferred := range []string{"Computer", "Speaker"} {
		for _, d := range list.Devices {
			if d.Type == preferred && d.ID != "" && !d.IsRestricted {
				c.log.Infof("using %s device %q for volume control", d.Type, d.Name)
				return d.ID, nil
			}
		}
	}
	for _, d := range list.Devices {
		if d.ID != "" && !d.IsRestricted {
			c.log.Infof("using device %q for volume control", d.Name)
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("spotify: no usable device")
}

func (c *Client) transferPlayback(ctx context.Context, deviceID string) error {
	body, _ := json.Marshal(map[string]any{"device_ids": []string{deviceID}, "play": false})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/me/player", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("spotify: transfer returned %s", resp.Status)
	}
	return nil
}

var errNoDevice = fmt.Errorf("spotify: no active device")

func isNoDevice(err error) bool { return err == errNoDevice }

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}

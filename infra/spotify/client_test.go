package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orthoctl/orthoctl/core/media"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(Config{APIURL: srv.URL}, srv.Client())
}

func TestSetVolume_Accepted(t *testing.T) {
	var gotPct string
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/me/player/volume", r.URL.Path)
		gotPct = r.URL.Query().Get("volume_percent")
		w.WriteHeader(http.StatusNoContent)
	})

	outcome, err := cli.SetVolume(context.Background(), 127)
	assert.NoError(t, err)
	assert.Equal(t, media.Accepted, outcome)
	assert.Equal(t, "100", gotPct)
}

func TestSetVolume_RateLimited(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	outcome, err := cli.SetVolume(context.Background(), 60)
	assert.Error(t, err)
	assert.Equal(t, media.Rejected, outcome)
}

func TestSetVolume_ServerError(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	outcome, err := cli.SetVolume(context.Background(), 60)
	assert.Error(t, err)
	assert.Equal(t, media.OtherFailure, outcome)
}

func TestSetVolume_DeviceFallback(t *testing.T) {
	volumeCalls := 0
	transferred := false
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/me/player/volume":
			volumeCalls++
			if r.URL.Query().Get("device_id") == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			require.Equal(t, "dev-2", r.URL.Query().Get("device_id"))
			w.WriteHeader(http.StatusNoContent)
		case "/me/player":
			if r.Method == http.MethodPut {
				transferred = true
				w.WriteHeader(http.StatusNoContent)
				return
			}
			// No playback session.
			w.WriteHeader(http.StatusNoContent)
		case "/me/player/devices":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"devices":[
				{"id":"dev-1","name":"TV","type":"TV","is_restricted":true},
				{"id":"dev-2","name":"Desk","type":"Computer","is_restricted":false}
			]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	outcome, err := cli.SetVolume(context.Background(), 64)
	assert.NoError(t, err)
	assert.Equal(t, media.Accepted, outcome)
	assert.True(t, transferred)
	assert.Equal(t, 2, volumeCalls)
}

func TestCurrentVolume(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/player", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"is_playing":true,"device":{"id":"d","volume_percent":37}}`))
	})

	v, ok := cli.CurrentVolume(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 37, v)
}

func TestCurrentVolume_NoSession(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, ok := cli.CurrentVolume(context.Background())
	assert.False(t, ok)
}

func TestTogglePlayPause(t *testing.T) {
	var endpoint string
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me/player" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"is_playing":true,"device":{"id":"d"}}`))
			return
		}
		endpoint = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, cli.TogglePlayPause(context.Background()))
	assert.Equal(t, "/me/player/pause", endpoint)
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())
	cfg = Config{ClientID: "id", ClientSecret: "secret"}
	assert.Error(t, cfg.Validate())
	cfg.RefreshToken = "tok"
	assert.NoError(t, cfg.Validate())
}

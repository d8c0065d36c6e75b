package telemetry_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, endpoint string, timeout time.Duration) *telemetry.Client {
	t.Helper()

	cfg := telemetry.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Timeout = timeout

	client, err := telemetry.NewClient(cfg)
	require.NoError(t, err)

	return client
}

func TestFetch(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/system_info", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"DGPU1":{"value":42},"TGPU1":{"value":61}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	assert.Equal(t, srv.URL+"/system_info", client.Endpoint())

	body, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"DGPU1":{"value":42},"TGPU1":{"value":61}}`, string(body))
	assert.Equal(t, int32(1), requests.Load())
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrFetchBadStatus, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "503")
	assert.True(t, telemetry.IsFetchError(err))
}

func TestFetchBodyLimit(t *testing.T) {
	const limit = 1 << 20

	tests := []struct {
		name     string
		size     int
		wantCode errors.ErrorCode
	}{
		{"at limit", limit, ""},
		{"over limit", 2 * limit, telemetry.ErrFetchTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(bytes.Repeat([]byte(" "), tt.size))
			}))
			defer srv.Close()

			body, err := newTestClient(t, srv.URL, 5*time.Second).Fetch(context.Background())
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Len(t, body, tt.size)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.True(t, telemetry.IsFetchError(err))
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestClient(t, srv.URL, 50*time.Millisecond).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrFetchTimeout, errors.CodeOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	_, err := newTestClient(t, endpoint, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrFetchUnreachable, errors.CodeOf(err))
}

func TestFetchCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(t, srv.URL, 10*time.Second).Fetch(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCanceled, errors.CodeOf(err))
	assert.False(t, telemetry.IsFetchError(err))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*telemetry.Config)
		wantCode errors.ErrorCode
	}{
		{"defaults", func(*telemetry.Config) {}, ""},
		{"https", func(c *telemetry.Config) { c.Endpoint = "https://sensors.lan:8443" }, ""},
		{"ftp scheme", func(c *telemetry.Config) { c.Endpoint = "ftp://127.0.0.1" }, errors.ErrInvalidEndpoint},
		{"no host", func(c *telemetry.Config) { c.Endpoint = "http://" }, errors.ErrInvalidEndpoint},
		{"garbage", func(c *telemetry.Config) { c.Endpoint = "::not a url" }, errors.ErrInvalidEndpoint},
		{"zero timeout", func(c *telemetry.Config) { c.Timeout = 0 }, errors.ErrInvalidTimeout},
		{"empty key", func(c *telemetry.Config) { c.FanKey = "" }, errors.ErrMissingConfig},
		{"same keys", func(c *telemetry.Config) { c.TemperatureKey = c.FanKey }, errors.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := telemetry.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			_, clientErr := telemetry.NewClient(cfg)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				assert.NoError(t, clientErr)
				return
			}
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, tt.wantCode, errors.CodeOf(clientErr), "client keeps the validation code")
		})
	}
}

func TestConfigURL(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Endpoint = "http://192.168.0.112:5556/"
	cfg.Path = "system_info"

	u, err := cfg.URL()
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.0.112:5556/system_info", u.String())
}

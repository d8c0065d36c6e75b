package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/config"
	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sensorDocument = `{"DGPU1": {"label": "GPU fan", "value": 55}, "TGPU1": {"label": "GPU", "value": 64}}`

func telemetryServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("GPUFANBRIDGE_CONFIG", "")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gpufanbridge dev\n", out)
}

func TestProbeCommand(t *testing.T) {
	srv := telemetryServer(t, sensorDocument)

	out, err := execute(t, "probe", "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "on:             true")
	assert.Contains(t, out, "rotation_speed: 55")
	assert.Contains(t, out, "temperature:    64")
}

func TestProbeCommandCustomKeys(t *testing.T) {
	srv := telemetryServer(t, `{"FAN2": {"value": 12}, "TEMP2": {"value": 40}}`)

	out, err := execute(t, "probe", "--endpoint", srv.URL, "--fan-key", "FAN2", "--temperature-key", "TEMP2")
	require.NoError(t, err)
	assert.Contains(t, out, "rotation_speed: 12")
}

func TestProbeCommandFailure(t *testing.T) {
	srv := telemetryServer(t, `{"TGPU1": {"value": 64}}`)

	_, err := execute(t, "probe", "--endpoint", srv.URL)
	require.Error(t, err)
	assert.Equal(t, errors.ErrProbeFailed, errors.CodeOf(err))
	assert.True(t, errors.HasCode(err, telemetry.ErrParseMissingField))
}

func TestInvalidFlagValue(t *testing.T) {
	_, err := execute(t, "probe", "--endpoint", "ftp://nowhere")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidEndpoint))
}

func TestAppRunServesStatus(t *testing.T) {
	srv := telemetryServer(t, sensorDocument)
	addr := freeAddr(t)

	t.Setenv("GPUFANBRIDGE_CONFIG", "")
	t.Setenv("GPUFANBRIDGE_ENDPOINT", srv.URL)
	t.Setenv("GPUFANBRIDGE_HOMEKIT_ENABLED", "false")
	t.Setenv("GPUFANBRIDGE_STATUS_LISTEN", addr)
	t.Setenv("GPUFANBRIDGE_PID_FILE", filepath.Join(t.TempDir(), "gpufanbridge.pid"))

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	a, err := newApp(cfg, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, a.homekit)
	require.NotNil(t, a.status)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx) }()

	var body struct {
		On            bool    `json:"on"`
		RotationSpeed float64 `json:"rotation_speed"`
		Temperature   float64 `json:"temperature"`
	}
	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/state")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return false
		}
		return body.RotationSpeed == 55
	}, 5*time.Second, 20*time.Millisecond)

	assert.True(t, body.On)
	assert.Equal(t, 64.0, body.Temperature)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.False(t, a.poller.Busy())
}

package accessory_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/accessory"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/poller"
	"codeberg.org/mutker/gpufanbridge/internal/state"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAccessory(t *testing.T, body string) *accessory.Accessory {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := telemetry.DefaultConfig()
	cfg.Endpoint = srv.URL
	client, err := telemetry.NewClient(cfg)
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	store := state.NewStore(state.WithClock(clock))
	p, err := poller.New(client, telemetry.NewParser(cfg.FanKey, cfg.TemperatureKey), store,
		poller.Config{Interval: poller.DefaultInterval, Endpoint: client.Endpoint()},
		logger.Nop(), poller.WithClock(clock))
	require.NoError(t, err)

	acc, err := accessory.New(accessory.DefaultInfo(), store, p, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, acc.Start(context.Background()))
	t.Cleanup(acc.Close)

	return acc
}

func TestIndependentAccessories(t *testing.T) {
	first := startAccessory(t, `{"DGPU1":{"value":42},"TGPU1":{"value":61}}`)
	second := startAccessory(t, `{"DGPU1":{"value":80},"TGPU1":{"value":77}}`)

	assert.Eventually(t, func() bool { return first.RotationSpeed() == 42 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return second.RotationSpeed() == 80 }, 2*time.Second, 5*time.Millisecond)

	first.Close()

	assert.Equal(t, 61.0, first.Temperature(), "readings survive teardown")
	assert.Equal(t, 77.0, second.Temperature())
	assert.Equal(t, uint64(1), first.Stats().Successes)
}

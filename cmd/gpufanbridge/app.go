package main

import (
	"context"

	"codeberg.org/mutker/gpufanbridge/internal/accessory"
	"codeberg.org/mutker/gpufanbridge/internal/config"
	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/homekit"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/poller"
	"codeberg.org/mutker/gpufanbridge/internal/state"
	"codeberg.org/mutker/gpufanbridge/internal/status"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// app wires one accessory to its telemetry source and its surfaces
type app struct {
	accessory *accessory.Accessory
	poller    *poller.Poller
	homekit   *homekit.Server
	status    *status.Server
	logger    logger.Logger
}

func newApp(cfg *config.Config, log logger.Logger, clientOpts ...telemetry.ClientOption) (*app, error) {
	client, err := telemetry.NewClient(cfg.Telemetry(), clientOpts...)
	if err != nil {
		return nil, err
	}

	store := state.NewStore()
	p, err := poller.New(
		client,
		telemetry.NewParser(cfg.FanKey, cfg.TemperatureKey),
		store,
		cfg.Poller(),
		log.With("poller"),
	)
	if err != nil {
		return nil, err
	}

	acc, err := accessory.New(cfg.AccessoryInfo(), store, p, log.With("accessory"))
	if err != nil {
		return nil, err
	}

	a := &app{
		accessory: acc,
		poller:    p,
		logger:    log,
	}

	if hk := cfg.HomeKitServer(); hk.Enabled {
		a.homekit, err = homekit.New(hk, acc, log.With("homekit"))
		if err != nil {
			return nil, err
		}
	}

	if sc := cfg.StatusServer(); sc.Enabled() {
		a.status, err = status.New(sc, acc, log.With("status"))
		if err != nil {
			return nil, err
		}
	}

	return a, nil
}

// run starts polling and serves every enabled surface until ctx is done
// or one of them fails. The accessory is torn down before returning.
func (a *app) run(ctx context.Context) error {
	if err := a.accessory.Start(ctx); err != nil {
		return err
	}
	defer a.accessory.Close()

	g, gctx := errgroup.WithContext(ctx)

	if a.homekit != nil {
		g.Go(func() error {
			if err := a.homekit.Run(gctx); err != nil {
				return errors.New().Wrap(errors.ErrRunTransport, err)
			}
			return nil
		})
	}

	if a.status != nil {
		g.Go(func() error {
			if err := a.status.Run(gctx); err != nil {
				return errors.New().Wrap(errors.ErrRunStatus, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	return g.Wait()
}

package main

import (
	"context"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"codeberg.org/mutker/gpufanbridge/internal/pid"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Poll telemetry and publish the accessory (default)",
		Args:  cobra.NoArgs,
		RunE:  runBridge,
	}
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := pid.Write(cfg.PIDFile); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go handleSignals(ctx, cancel)

	a, err := newApp(cfg, logger.Default())
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	err = a.run(ctx)
	logger.Info().Msg("Exiting...")

	return err
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/gpufanbridge/internal/config"
	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gpufanbridge",
		Short:         "Expose AIDA64 GPU fan telemetry as a HomeKit fan accessory",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBridge,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newProbeCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig resolves configuration for cmd and initializes logging from it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		return nil, errors.New().Wrap(errors.ErrInitFailed, err)
	}
	logger.Debug().Str("config_file", cfg.ConfigFile).Msg("Config loaded")

	if cfg.TimeoutExceedsInterval() {
		logger.Warn().
			Dur("timeout", cfg.Timeout).
			Dur("interval", cfg.Interval).
			Msg("Fetch timeout exceeds poll interval, ticks will be skipped while a fetch is pending")
	}

	return cfg, nil
}

func handleSignals(ctx context.Context, cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		logger.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}

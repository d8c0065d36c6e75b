package main

import (
	"fmt"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"github.com/spf13/cobra"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Fetch and parse telemetry once, then print the reading",
		Args:  cobra.NoArgs,
		RunE:  runProbe,
	}
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger.Default())
	if err != nil {
		return errors.New().Wrap(errors.ErrInitApp, err)
	}

	if err := a.poller.PollOnce(cmd.Context()); err != nil {
		return errors.New().Wrap(errors.ErrProbeFailed, err)
	}

	st := a.accessory.State()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "endpoint:       %s\n", cfg.Endpoint)
	fmt.Fprintf(out, "on:             %t\n", st.Powered())
	fmt.Fprintf(out, "rotation_speed: %g\n", st.RotationSpeed)
	fmt.Fprintf(out, "temperature:    %g\n", st.TemperatureCelsius)

	return nil
}

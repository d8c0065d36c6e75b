package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env file: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCommand().Execute(); err != nil {
		var appErr errors.Error
		if errors.As(err, &appErr) {
			logger.ErrorWithCode(appErr).Msg("gpufanbridge failed")
		} else {
			logger.Error().Err(err).Msg("gpufanbridge failed")
		}
		os.Exit(1)
	}
}

package homekit

import (
	"regexp"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

const (
	DefaultPin         = "00102003"
	DefaultStoragePath = "/var/lib/gpufanbridge/homekit"
)

var pinPattern = regexp.MustCompile(`^[0-9]{8}$`)

type Config struct {
	Enabled     bool
	Pin         string
	StoragePath string
	// Port is empty for a random port
	Port string
}

func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		Pin:         DefaultPin,
		StoragePath: DefaultStoragePath,
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	errFactory := errors.New()
	if !pinPattern.MatchString(c.Pin) {
		return errFactory.WithData(ErrInvalidPin, c.Pin)
	}
	if c.StoragePath == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "HomeKit storage path must not be empty")
	}

	return nil
}

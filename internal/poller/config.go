package poller

import (
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

const DefaultInterval = 3 * time.Second

type Config struct {
	Interval time.Duration
	// Endpoint is only used to give failure logs context
	Endpoint string
}

func DefaultConfig() Config {
	return Config{
		Interval: DefaultInterval,
	}
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, c.Interval.String())
	}
	return nil
}

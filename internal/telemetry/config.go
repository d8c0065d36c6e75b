package telemetry

import (
	"net/url"
	"strings"
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

const (
	DefaultEndpoint       = "http://127.0.0.1:5556"
	DefaultPath           = "/system_info"
	DefaultTimeout        = 2 * time.Second
	DefaultFanKey         = "DGPU1"
	DefaultTemperatureKey = "TGPU1"

	maxBodySize = 1 << 20
)

type Config struct {
	Endpoint       string
	Path           string
	Timeout        time.Duration
	FanKey         string
	TemperatureKey string
}

func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		Path:           DefaultPath,
		Timeout:        DefaultTimeout,
		FanKey:         DefaultFanKey,
		TemperatureKey: DefaultTemperatureKey,
	}
}

// URL joins the base endpoint and the fixed path
func (c Config) URL() (*url.URL, error) {
	errFactory := errors.New()

	base, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, errFactory.Wrap(ErrInvalidEndpoint, err).WithData(c.Endpoint)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errFactory.WithData(ErrInvalidEndpoint, c.Endpoint)
	}
	if base.Host == "" {
		return nil, errFactory.WithData(ErrInvalidEndpoint, c.Endpoint)
	}

	path := c.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + path
	base.RawQuery = ""
	base.Fragment = ""

	return base, nil
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if _, err := c.URL(); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return errFactory.WithData(errors.ErrInvalidTimeout, c.Timeout.String())
	}
	if c.FanKey == "" || c.TemperatureKey == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "Sensor keys must not be empty")
	}
	if c.FanKey == c.TemperatureKey {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "Fan and temperature sensor keys must differ")
	}

	return nil
}

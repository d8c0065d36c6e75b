package status

import (
	"net"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
)

type Config struct {
	// Listen is a host:port address, the server is disabled when empty
	Listen string
}

func (c Config) Enabled() bool {
	return c.Listen != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		return errors.New().Wrap(ErrInvalidListen, err).WithData(c.Listen)
	}
	return nil
}

package homekit

import "codeberg.org/mutker/gpufanbridge/internal/errors"

const (
	ErrInvalidPin      = errors.ErrorCode("homekit_invalid_pin")
	ErrTransportFailed = errors.ErrorCode("homekit_transport_failed")
)

package status

import "codeberg.org/mutker/gpufanbridge/internal/errors"

const (
	ErrInvalidListen = errors.ErrorCode("status_invalid_listen")
	ErrServeFailed   = errors.ErrorCode("status_serve_failed")
)

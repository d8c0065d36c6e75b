package poller

import "codeberg.org/mutker/gpufanbridge/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrInvalidConfig
	ErrAlreadyRunning = errors.ErrorCode("poller_already_running")
	ErrStopped        = errors.ErrorCode("poller_stopped")
	ErrPollInProgress = errors.ErrorCode("poller_poll_in_progress")
)

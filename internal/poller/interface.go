package poller

import (
	"time"

	"codeberg.org/mutker/gpufanbridge/internal/errors"
	"codeberg.org/mutker/gpufanbridge/internal/telemetry"
)

// Writer receives every successfully parsed snapshot
type Writer interface {
	Write(snap telemetry.Snapshot)
}

// Stats counts poll cycles since the poller was created
type Stats struct {
	Attempts      uint64
	Successes     uint64
	Failures      uint64
	Skipped       uint64
	LastError     string
	LastErrorCode errors.ErrorCode
	LastSuccess   time.Time
	LastFailure   time.Time
}

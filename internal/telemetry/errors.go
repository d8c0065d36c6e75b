package telemetry

import "codeberg.org/mutker/gpufanbridge/internal/errors"

const (
	// Configuration Errors
	ErrInvalidEndpoint = errors.ErrInvalidEndpoint

	// Fetch Errors
	ErrFetchUnreachable = errors.ErrorCode("telemetry_fetch_unreachable")
	ErrFetchTimeout     = errors.ErrorCode("telemetry_fetch_timeout")
	ErrFetchBadStatus   = errors.ErrorCode("telemetry_fetch_bad_status")
	ErrFetchTooLarge    = errors.ErrorCode("telemetry_fetch_too_large")

	// Parse Errors
	ErrParseMalformed    = errors.ErrorCode("telemetry_parse_malformed")
	ErrParseMissingField = errors.ErrorCode("telemetry_parse_missing_field")
	ErrParseWrongType    = errors.ErrorCode("telemetry_parse_wrong_type")
)

// IsFetchError reports whether err is one of the fetch failure kinds
func IsFetchError(err error) bool {
	switch errors.CodeOf(err) {
	case ErrFetchUnreachable, ErrFetchTimeout, ErrFetchBadStatus, ErrFetchTooLarge:
		return true
	}
	return false
}

// IsParseError reports whether err is one of the parse failure kinds
func IsParseError(err error) bool {
	switch errors.CodeOf(err) {
	case ErrParseMalformed, ErrParseMissingField, ErrParseWrongType:
		return true
	}
	return false
}

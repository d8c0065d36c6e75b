package errors

// Common error codes
const (
	// System errors
	ErrInvalidArgument ErrorCode = "invalid_argument"

	// Configuration errors
	ErrInvalidConfig   ErrorCode = "invalid_configuration"
	ErrMissingConfig   ErrorCode = "missing_configuration"
	ErrBindFlags       ErrorCode = "bind_flags_failed"
	ErrReadConfig      ErrorCode = "read_config_failed"
	ErrInvalidInterval ErrorCode = "invalid_interval"
	ErrInvalidTimeout  ErrorCode = "invalid_timeout"
	ErrInvalidEndpoint ErrorCode = "invalid_endpoint"

	// Logging errors
	ErrInvalidLogLevel ErrorCode = "invalid_log_level"

	// Initialization errors
	ErrInitFailed     ErrorCode = "initialization_failed"
	ErrShutdownFailed ErrorCode = "shutdown_failed"
	ErrAlreadyRunning ErrorCode = "already_running"

	// Application errors
	ErrInitApp       ErrorCode = "init_app_failed"
	ErrRunAccessory  ErrorCode = "run_accessory_failed"
	ErrRunTransport  ErrorCode = "run_transport_failed"
	ErrRunStatus     ErrorCode = "run_status_server_failed"
	ErrProbeFailed   ErrorCode = "probe_failed"
	ErrWritePIDFile  ErrorCode = "write_pid_file_failed"
	ErrRemovePIDFile ErrorCode = "remove_pid_file_failed"

	// Operation errors
	ErrCanceled ErrorCode = "operation_canceled"
)

// Common error messages
var errorMessages = map[ErrorCode]string{
	ErrInvalidArgument: "Invalid argument provided",
	ErrInvalidConfig:   "Invalid configuration",
	ErrMissingConfig:   "Missing configuration",
	ErrBindFlags:       "Failed to bind flags",
	ErrReadConfig:      "Failed to read config file",
	ErrInvalidInterval: "Invalid interval value",
	ErrInvalidTimeout:  "Invalid timeout value",
	ErrInvalidEndpoint: "Invalid telemetry endpoint",
	ErrInvalidLogLevel: "Invalid log level",
	ErrInitFailed:      "Initialization failed",
	ErrShutdownFailed:  "Shutdown failed",
	ErrAlreadyRunning:  "Another instance is already running",
	ErrInitApp:         "Failed to initialize application",
	ErrRunAccessory:    "Failed to run accessory",
	ErrRunTransport:    "Failed to run HomeKit transport",
	ErrRunStatus:       "Failed to run status server",
	ErrProbeFailed:     "Telemetry probe failed",
	ErrWritePIDFile:    "Failed to write PID file",
	ErrRemovePIDFile:   "Failed to remove PID file",
	ErrCanceled:        "Operation canceled",
}

// GetErrorMessage returns the message for a given error code
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}

	return string(code)
}

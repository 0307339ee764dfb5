package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Resource errors
const (
	// ErrCodeNotFound indicates the requested provider or algorithm was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates a provider or algorithm with the same
	// identity is already registered.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeConflict indicates a conflict with the current registry state.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Lifecycle errors
const (
	// ErrCodeProviderInactive indicates the provider's external dependencies
	// are missing and it cannot run algorithms.
	ErrCodeProviderInactive ErrorCode = "PROVIDER_INACTIVE"
	// ErrCodeContractViolation indicates a backend broke the loading protocol,
	// e.g. registering algorithms outside of a refresh.
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
}

// IsRetryableCode reports whether an error code represents a retryable condition.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

package httputil

// Machine-readable error codes returned alongside human messages.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_SERVER_ERROR"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
)

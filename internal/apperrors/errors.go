package apperrors

// ErrorCode identifies a failure class in API responses.
type ErrorCode string

const (
	ErrorCodeInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError      ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrorCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrorCodeResolutionFailed     ErrorCode = "RESOLUTION_FAILED"
	ErrorCodeDeviceNotFound       ErrorCode = "DEVICE_NOT_FOUND"
	ErrorCodeDeviceBackendFailure ErrorCode = "DEVICE_BACKEND_FAILURE"
	ErrorCodeWeatherUnavailable   ErrorCode = "WEATHER_UNAVAILABLE"
	ErrorCodeAuthTokenExpired     ErrorCode = "AUTH_TOKEN_EXPIRED"
	ErrorCodeAuthTokenInvalid     ErrorCode = "AUTH_TOKEN_INVALID"
	ErrorCodeAuthPairingInvalid   ErrorCode = "AUTH_PAIRING_INVALID"
)

// ErrorBody is the serialized error payload.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AppError is the base error type for HTTP responses.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
}

func (err *AppError) Error() string {
	return err.Message
}

func (err *AppError) ErrorBody() ErrorBody {
	return ErrorBody{
		Code:    err.Code,
		Message: err.Message,
		Details: err.Details,
	}
}

func NewAppError(code ErrorCode, message string, statusCode int, details map[string]any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeValidationError, message, 400, details)
}

func NewUnauthorizedError(message string, code ...ErrorCode) *AppError {
	errCode := ErrorCodeUnauthorized
	if len(code) > 0 {
		errCode = code[0]
	}
	return NewAppError(errCode, message, 401, nil)
}

func NewNotFoundError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternalError, message, 500, nil)
}

// NewResolutionError reports a catalog lookup or stream resolution failure.
func NewResolutionError(query string) *AppError {
	return NewAppError(ErrorCodeResolutionFailed, "Failed to resolve video", 502, map[string]any{
		"query": query,
	})
}

// NewUnknownDeviceError reports a command against an address the tracker has never seen.
func NewUnknownDeviceError(address string) *AppError {
	return NewAppError(ErrorCodeDeviceNotFound, "Unknown device: "+address, 404, map[string]any{
		"address": address,
	})
}

// NewDeviceBackendError reports a failed or timed-out Bluetooth backend call.
func NewDeviceBackendError(address string) *AppError {
	return NewAppError(ErrorCodeDeviceBackendFailure, "Device backend call failed", 502, map[string]any{
		"address": address,
	})
}

// EnsureAppError converts an arbitrary error into an AppError.
func EnsureAppError(err error) *AppError {
	if err == nil {
		return NewInternalError("Unknown error")
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError("Internal server error")
}

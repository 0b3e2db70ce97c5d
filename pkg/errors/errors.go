package errors

import "errors"

// Codes shared between domain services and the HTTP layer.
const (
	CodeInvalidInput       = "invalid_input"
	CodeUVDataError        = "uv_data_error"
	CodeProfileNotFound    = "profile_not_found"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeSessionActive      = "session_active"
	CodeSessionNotFound    = "session_not_found"
	CodeStorageError       = "storage_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in the chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

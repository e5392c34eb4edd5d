package errors

import "net/http"

// Machine readable codes shared by services and handlers.
const (
	CodeInvalidJSON          = "invalid_json"
	CodeMissingWorkSource    = "missing_work_source"
	CodeTimerStopped         = "timer_stopped"
	CodeRecordNotFound       = "record_not_found"
	CodeCompanionOpen        = "companion_already_open"
	CodeCompanionClosed      = "companion_not_open"
	CodeCompanionDenied      = "companion_denied"
	CodeCompanionStreaming   = "companion_stream_attached"
	CodeCompanionUnsupported = "companion_unsupported"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func Unauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return New(http.StatusUnauthorized, "unauthorized", message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}

// Unavailable reports a capability the host does not offer.
func Unavailable(code, message string) *APIError {
	return New(http.StatusServiceUnavailable, code, message)
}

package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Fault is a business error with a stable code and an HTTP status. It mirrors
// the error envelope contract shared by both services.
type Fault struct {
	Code    string
	Status  int
	Message string
	cause   error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Code, f.Message, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

func (f *Fault) Unwrap() error { return f.cause }

func New(code string, status int, message string) *Fault {
	return &Fault{Code: code, Status: status, Message: message}
}

func Wrap(code string, status int, message string, cause error) *Fault {
	return &Fault{Code: code, Status: status, Message: message, cause: cause}
}

func RoomNotAvailable() *Fault {
	return New("ROOM_NOT_AVAILABLE", http.StatusConflict, "Room is not available for these dates")
}

func NoRecommendation() *Fault {
	return New("NO_RECOMMENDATION", http.StatusConflict, "No room satisfies the requested dates")
}

func RoomIDRequired() *Fault {
	return New("ROOM_ID_REQUIRED", http.StatusBadRequest, "Room id required when auto-select is disabled")
}

func Validation(message string) *Fault {
	return New("VALIDATION_ERROR", http.StatusBadRequest, message)
}

func Forbidden() *Fault {
	return New("FORBIDDEN", http.StatusForbidden, "Caller does not own this resource")
}

func NotFound(message string) *Fault {
	return New("NOT_FOUND", http.StatusNotFound, message)
}

func UsernameTaken() *Fault {
	return New("USERNAME_TAKEN", http.StatusConflict, "Username already exists")
}

func BadCredentials() *Fault {
	return New("BAD_CREDENTIALS", http.StatusUnauthorized, "Bad credentials")
}

func ServiceError(cause error) *Fault {
	msg := "Downstream service failure"
	if cause != nil {
		msg = cause.Error()
	}
	return Wrap("SERVICE_ERROR", http.StatusServiceUnavailable, msg, cause)
}

// From extracts a Fault from an error chain, defaulting to SERVICE_ERROR so
// unclassified failures never leak partial state as success.
func From(err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return ServiceError(err)
}

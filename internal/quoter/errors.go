package quoter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TransportError means no response came back: connection refused, DNS
// failure, timeout or a cancelled context. It never carries a status code.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("quoter %s: transport: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteQueryError means the service answered with a status other than 200.
type RemoteQueryError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *RemoteQueryError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("quoter %s: http %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("quoter %s: http %d: %s", e.Endpoint, e.StatusCode, b)
}

// Message returns the "error" field of a JSON error body, or the raw body
// when the service sent something else.
func (e *RemoteQueryError) Message() string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(e.Body))
}

// ValidationError means the request was rejected before anything was sent.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...), Err: err}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsRemote(err error) bool {
	var re *RemoteQueryError
	return errors.As(err, &re)
}

// StatusCode reports the HTTP status behind err. ok is false for transport
// failures and for errors that never reached the service.
func StatusCode(err error) (code int, ok bool) {
	var re *RemoteQueryError
	if errors.As(err, &re) {
		return re.StatusCode, true
	}
	return 0, false
}

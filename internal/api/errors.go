package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is the closed set of failures returned by Client. The concrete types
// are *ValidationError, *AuthError, *NotFoundError, *ServerError and *NetworkError.
type Error interface {
	error
	// StatusCode is the HTTP status, or 0 when no response was received
	StatusCode() int
	apiError()
}

// ValidationError is a 400 response carrying per-field messages.
// It is never notified; forms display the fields themselves.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return nonEmpty(e.Message, "validation failed")
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s (%s)", nonEmpty(e.Message, "validation failed"), strings.Join(parts, "; "))
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }
func (*ValidationError) apiError()         {}

// AuthError is a 401 response, or a request attempted without a stored token.
// Credentials have already been cleared when it is returned.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return nonEmpty(e.Message, "not logged in") + " (run 'habitvault auth login')"
}

func (e *AuthError) StatusCode() int { return http.StatusUnauthorized }
func (*AuthError) apiError()         {}

// NotFoundError is a 404 response
type NotFoundError struct {
	Message  string
	notified bool
}

func (e *NotFoundError) Error() string {
	return nonEmpty(e.Message, "the requested resource was not found")
}

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }
func (*NotFoundError) apiError()         {}

// ServerError covers every other non-2xx response: 403, 409 and 5xx included
type ServerError struct {
	Status   int
	Message  string
	notified bool
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", nonEmpty(e.Message, fallbackMessage(e.Status)), e.Status)
}

func (e *ServerError) StatusCode() int { return e.Status }
func (*ServerError) apiError()         {}

// NetworkError means no response was received
type NetworkError struct {
	Err      error
	notified bool
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }
func (e *NetworkError) StatusCode() int {
	return 0
}
func (*NetworkError) apiError() {}

// AsError extracts an Error from err's chain
func AsError(err error) (Error, bool) {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether err is a 404
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Notified reports whether the client already showed a notification for err,
// so callers do not notify twice.
func Notified(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}
	switch e := apiErr.(type) {
	case *NotFoundError:
		return e.notified
	case *ServerError:
		return e.notified
	case *NetworkError:
		return e.notified
	}
	return false
}

func fallbackMessage(status int) string {
	switch {
	case status == http.StatusForbidden:
		return "you do not have permission to perform this action"
	case status == http.StatusNotFound:
		return "the requested resource was not found"
	case status == http.StatusConflict:
		return "the request conflicts with the current state"
	case status >= 500:
		return "server error, please try again later"
	default:
		return "an unexpected error occurred"
	}
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// errorBody is the server's error envelope. "errors" is either an object of
// field -> message or a list of {field|param|path, message|msg}.
type errorBody struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

func (b errorBody) message() string {
	return nonEmpty(b.Message, b.Error)
}

func (b errorBody) fields() map[string]string {
	if len(b.Errors) == 0 || string(b.Errors) == "null" {
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(b.Errors, &asMap); err == nil {
		return asMap
	}

	var asList []struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(b.Errors, &asList); err != nil {
		return nil
	}
	fields := make(map[string]string, len(asList))
	for _, item := range asList {
		name := nonEmpty(item.Field, nonEmpty(item.Param, nonEmpty(item.Path, "_")))
		fields[name] = nonEmpty(item.Message, item.Msg)
	}
	return fields
}

// classify turns a non-2xx response into an Error
func classify(status int, body []byte) Error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch status {
	case http.StatusBadRequest:
		if fields := eb.fields(); fields != nil {
			return &ValidationError{Message: eb.message(), Fields: fields}
		}
		return &ServerError{Status: status, Message: eb.message()}
	case http.StatusUnauthorized:
		return &AuthError{Message: eb.message()}
	case http.StatusNotFound:
		return &NotFoundError{Message: eb.message()}
	default:
		return &ServerError{Status: status, Message: eb.message()}
	}
}

package restapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any *Error with status 401 via errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// Error kinds.
const (
	KindHTTP    = "http"
	KindNetwork = "network"
	KindTimeout = "timeout"
)

const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgForbidden      = "You do not have permission to perform this action."
	MsgNotFound       = "The requested resource was not found."
	MsgInvalid        = "The submitted data is invalid."
	MsgRateLimited    = "Too many requests. Please wait a moment and try again."
	MsgServerError    = "Server error. Please try again later."
	MsgUnavailable    = "Service is temporarily unavailable. Please try again later."
	MsgNetwork        = "Network error. Please check your connection."
	MsgTimeout        = "Request timed out. Please try again."
)

// Error is a classified REST failure. Message is safe to show to operators.
type Error struct {
	Kind       string
	Method     string
	Path       string
	StatusCode int
	Message    string
	Detail     string // backend message or transport error, for logs
	err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s %s: %s", e.Method, e.Path, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusMessage maps an HTTP status to its operator-facing message.
func StatusMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return MsgSessionExpired
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusUnprocessableEntity:
		return MsgInvalid
	case http.StatusTooManyRequests:
		return MsgRateLimited
	case http.StatusInternalServerError:
		return MsgServerError
	case http.StatusServiceUnavailable:
		return MsgUnavailable
	}
	return fmt.Sprintf("Request failed with status %d", code)
}

func statusError(method, path string, code int, body []byte) *Error {
	return &Error{
		Kind:       KindHTTP,
		Method:     method,
		Path:       path,
		StatusCode: code,
		Message:    StatusMessage(code),
		Detail:     strings.TrimSpace(string(body)),
	}
}

func transportError(method, path string, err error) *Error {
	e := &Error{Kind: KindNetwork, Method: method, Path: path, Message: MsgNetwork, Detail: err.Error(), err: err}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		e.Kind = KindTimeout
		e.Message = MsgTimeout
	}
	return e
}

// Message returns the operator-facing text for any error a client call may
// return.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// retryable reports whether repeating the request could change the outcome.
func retryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return false
	}
	return true
}

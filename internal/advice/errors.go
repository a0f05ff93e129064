package advice

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an upstream failure.
type Kind int

// Failure kinds.
const (
	KindUnknown Kind = iota
	KindRateLimited
	KindNotAuthorized
	KindBadRequest
	KindModelUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindNotAuthorized:
		return "not_authorized"
	case KindBadRequest:
		return "bad_request"
	case KindModelUnavailable:
		return "model_unavailable"
	default:
		return "unknown"
	}
}

// User-facing messages attached to classified failures.
const (
	MsgRateLimited       = "AI is busy right now, please wait about 30 seconds and try again."
	MsgNotAuthorized     = "AI service is not configured. Please contact the administrator."
	MsgInvalidAPIKey     = "AI service is not configured properly. Please check the API key."
	MsgNotConfigured     = "AI service is not configured. The API key is missing."
	MsgBadRequest        = "Request was too complex, try a shorter or simpler question."
	MsgModelUnavailable  = "AI model is not available right now."
	MsgUnexpectedFailure = "An unexpected error occurred with the AI service."
)

var (
	// ErrNotConfigured is wrapped by the error returned when no upstream
	// credential is configured.
	ErrNotConfigured = errors.New("advice: upstream credential not configured")

	// ErrEmptyQuestion is returned for a question that is blank after trimming.
	ErrEmptyQuestion = errors.New("advice: question is empty")
)

// Error is a classified upstream failure. Retryable is true only for
// KindRateLimited.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UpstreamError is a failure reported by the upstream service.
type UpstreamError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("upstream error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream error %d: %s", e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Retryable: kind == KindRateLimited, Err: cause}
}

// Classify maps a raw upstream failure onto the failure taxonomy. The status
// code decides when present; otherwise the message is inspected. An already
// classified error is returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	var (
		status int
		msg    string
	)
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		status = upErr.StatusCode
		msg = strings.TrimSpace(upErr.Status + " " + upErr.Message)
	} else {
		msg = err.Error()
	}

	switch status {
	case http.StatusTooManyRequests:
		return newError(KindRateLimited, MsgRateLimited, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return newError(KindNotAuthorized, MsgNotAuthorized, err)
	case http.StatusBadRequest:
		return newError(KindBadRequest, MsgBadRequest, err)
	case http.StatusNotFound:
		return newError(KindModelUnavailable, MsgModelUnavailable, err)
	}

	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "quota"):
		return newError(KindRateLimited, MsgRateLimited, err)
	case strings.Contains(msg, "API_KEY_INVALID") || strings.Contains(msg, "API key"):
		return newError(KindNotAuthorized, MsgInvalidAPIKey, err)
	case upErr != nil && upErr.Message != "":
		return newError(KindUnknown, upErr.Message, err)
	case upErr == nil && msg != "":
		return newError(KindUnknown, msg, err)
	default:
		return newError(KindUnknown, MsgUnexpectedFailure, err)
	}
}

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a classified failure worth waiting out,
// i.e. the caller may substitute cached or canned content.
func IsRetryable(err error) bool {
	var classified *Error
	return errors.As(err, &classified) && classified.Retryable
}

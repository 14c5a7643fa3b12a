package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

type Kind string

const (
	// KindInput marks requests rejected before any stage runs.
	KindInput Kind = "validation_input"
	// KindUnavailable marks a missing or uninitialised model handle.
	KindUnavailable Kind = "unavailable"

	KindTransient  Kind = "transient"
	KindRateLimit  Kind = "rate_limit"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindBadRequest Kind = "bad_request"
)

type Error struct {
	Kind Kind
	// SafeMessage is intended for user-facing output and logs.
	SafeMessage string
	// Cause keeps the original internal error for troubleshooting.
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.SafeMessage); msg != "" {
		return msg
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type kindInfo struct {
	message   string
	status    int
	retryable bool
}

// kinds holds the public message and HTTP status for each kind. Provider
// kinds only reach users through logs, since every stage falls back.
var kinds = map[Kind]kindInfo{
	KindInput:       {message: "Input text cannot be empty", status: http.StatusBadRequest},
	KindUnavailable: {message: "Model service not available", status: http.StatusServiceUnavailable},
	KindTransient:   {message: "Provider did not answer in time.", retryable: true},
	KindRateLimit:   {message: "Provider rate limit reached.", retryable: true},
	KindAuth:        {message: "Provider rejected the API key. Run \"codelex env setup\"."},
	KindValidation:  {message: "Provider returned an unusable response."},
	KindBadRequest:  {message: "Provider rejected the request."},
}

func defaultSafeMessage(kind Kind) string {
	if info, ok := kinds[kind]; ok {
		return info.message
	}
	return "Processing failed."
}

func New(kind Kind, safeMessage string, cause error) error {
	msg := strings.TrimSpace(safeMessage)
	if msg == "" {
		msg = defaultSafeMessage(kind)
	}
	return &Error{
		Kind:        kind,
		SafeMessage: msg,
		Cause:       cause,
	}
}

func Input(err error) error {
	return New(KindInput, "", err)
}

func Unavailable(err error) error {
	return New(KindUnavailable, "", err)
}

func Transient(err error) error {
	return New(KindTransient, "", err)
}

func RateLimit(err error) error {
	return New(KindRateLimit, "", err)
}

func Auth(err error) error {
	return New(KindAuth, "", err)
}

func Validation(err error) error {
	return New(KindValidation, "", err)
}

func BadRequest(err error) error {
	return New(KindBadRequest, "", err)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}

// IsRetryable reports whether a provider failure is transient, so a later
// run may succeed. It is logged with every stage fallback.
func IsRetryable(err error) bool {
	kind, ok := KindOf(err)
	return ok && kinds[kind].retryable
}

// HTTPStatus maps err onto a response status. Errors without a client-facing
// kind are internal.
func HTTPStatus(err error) int {
	kind, _ := KindOf(err)
	if status := kinds[kind].status; status != 0 {
		return status
	}
	return http.StatusInternalServerError
}

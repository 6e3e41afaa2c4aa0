// Package apperror defines the error taxonomy shared by the organizer, the
// model adapters and the persistence layer.
//
// Callers branch on the Kind, never on message text:
//
//	if errors.Is(err, apperror.ErrConfiguration) { ... }
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by who is at fault and whether a fallback exists.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is empty or missing input. Caller's fault, no retry.
	KindValidation
	// KindPayloadTooLarge is input above the size bound.
	KindPayloadTooLarge
	// KindConfiguration is a missing provider credential. Never falls back.
	KindConfiguration
	// KindProvider is a failed or unparseable remote model call. Always recovered by fallback.
	KindProvider
	// KindNotFound is an unknown task id for the owner.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the concrete error type for every Kind.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "organize" or "openai.organize"
	Message string // caller-visible message

	// Provider failures only.
	StatusCode int
	Body       string

	Err error
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrPayloadTooLarge = &Error{Kind: KindPayloadTooLarge}
	ErrConfiguration   = &Error{Kind: KindConfiguration}
	ErrProvider        = &Error{Kind: KindProvider}
	ErrNotFound        = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String() + " error"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation returns a KindValidation error.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// PayloadTooLarge returns a KindPayloadTooLarge error.
func PayloadTooLarge(op, format string, args ...any) error {
	return &Error{Kind: KindPayloadTooLarge, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Configuration returns a KindConfiguration error.
func Configuration(op, format string, args ...any) error {
	return &Error{Kind: KindConfiguration, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a KindNotFound error.
func NotFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Provider wraps err as a KindProvider error.
func Provider(op string, err error) *Error {
	return &Error{Kind: KindProvider, Op: op, Err: err}
}

// ProviderMessage returns a KindProvider error with a fixed message.
func ProviderMessage(op, format string, args ...any) *Error {
	return &Error{Kind: KindProvider, Op: op, Message: fmt.Sprintf(format, args...)}
}

// ProviderStatus returns a KindProvider error for a non-2xx response.
func ProviderStatus(op string, status int, body string) *Error {
	return &Error{
		Kind:       KindProvider,
		Op:         op,
		Message:    fmt.Sprintf("API request failed with status %d: %s", status, body),
		StatusCode: status,
		Body:       body,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps a Kind to the status an HTTP surface would answer with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindConfiguration:
		return http.StatusBadRequest
	case KindProvider:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

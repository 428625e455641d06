package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures surfaced to the UI.
type ErrorKind string

const (
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindMissingCredential ErrorKind = "missing_credential"
	KindNetwork           ErrorKind = "network"
	KindService           ErrorKind = "service"
	KindDecode            ErrorKind = "decode"
	KindFileIO            ErrorKind = "file_io"
	KindNothingToProcess  ErrorKind = "nothing_to_process"
	KindCancelled         ErrorKind = "cancelled"
	KindEmptyResponse     ErrorKind = "empty_response"
	KindDeviceConfig      ErrorKind = "device_config"
	KindEncoderInit       ErrorKind = "encoder_init"
	KindUnknown           ErrorKind = "unknown"
)

// Error is the typed failure carried through every pipeline step.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       string
	Detail     string
	Err        error
}

var (
	ErrPermissionDenied  = &Error{Kind: KindPermissionDenied}
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	ErrCancelled         = &Error{Kind: KindCancelled}
	ErrEmptyResponse     = &Error{Kind: KindEmptyResponse}
	ErrNothingToProcess  = &Error{Kind: KindNothingToProcess}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " %d", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with
// errors.Is regardless of details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NetworkError(err error) error {
	return &Error{Kind: KindNetwork, Err: err}
}

func ServiceError(status int, body string) error {
	return &Error{Kind: KindService, StatusCode: status, Body: strings.TrimSpace(body)}
}

func DecodeError(err error) error {
	return &Error{Kind: KindDecode, Err: err}
}

func FileIOError(detail string, err error) error {
	return &Error{Kind: KindFileIO, Detail: detail, Err: err}
}

func NothingToProcess(detail string) error {
	return &Error{Kind: KindNothingToProcess, Detail: detail}
}

func DeviceConfigFailed(reason string, err error) error {
	return &Error{Kind: KindDeviceConfig, Detail: reason, Err: err}
}

func EncoderInitFailed(reason string, err error) error {
	return &Error{Kind: KindEncoderInit, Detail: reason, Err: err}
}

// KindOf classifies err. Context cancellation counts as KindCancelled.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnknown
}

// IsCancelled reports whether err is a silent supersession or cancel.
func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled
}

// Describe renders err as the single human-readable error message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var typed *Error
	if !errors.As(err, &typed) {
		if errors.Is(err, context.DeadlineExceeded) {
			return "Network error: request timed out"
		}
		return "Processing error: " + err.Error()
	}

	switch typed.Kind {
	case KindPermissionDenied:
		return "Recording error: Microphone access denied"
	case KindMissingCredential:
		return "OpenAI API key is missing. Please set it in your app."
	case KindNetwork:
		return "Network error: " + detailOr(typed, "request failed")
	case KindService:
		if typed.StatusCode == 0 {
			return "Service error: " + typed.Body
		}
		if typed.Body == "" {
			return fmt.Sprintf("Service error: %d", typed.StatusCode)
		}
		return fmt.Sprintf("Service error: %d: %s", typed.StatusCode, typed.Body)
	case KindDecode:
		return "Processing error: Failed to decode response: " + detailOr(typed, "invalid body")
	case KindFileIO:
		return "File error: " + detailOr(typed, "I/O failure")
	case KindNothingToProcess:
		return detailOr(typed, "Nothing to process")
	case KindEmptyResponse:
		return "Processing error: No response content"
	case KindDeviceConfig:
		return "Recording error: Could not configure audio device: " + detailOr(typed, "unknown reason")
	case KindEncoderInit:
		return "Recording error: Could not start encoder: " + detailOr(typed, "unknown reason")
	case KindCancelled:
		return ""
	default:
		return "Processing error: " + detailOr(typed, "unknown failure")
	}
}

func detailOr(e *Error, fallback string) string {
	parts := make([]string, 0, 2)
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ": ")
}

package failure

import (
	"errors"
	"strings"

	"mediapull/internal/services"
)

// Kind is the stable error code reported in terminal error events.
type Kind string

const (
	KindAgeRestricted      Kind = "age_restricted"
	KindPrivateVideo       Kind = "private_video"
	KindVideoUnavailable   Kind = "video_unavailable"
	KindRegionBlocked      Kind = "region_blocked"
	KindLoginRequired      Kind = "login_required"
	KindUnviewablePlaylist Kind = "unviewable_playlist"
	KindForbidden          Kind = "forbidden"
	KindRateLimited        Kind = "rate_limited"
	KindGeneric            Kind = "download_error"
	KindTimeout            Kind = "timeout"
	KindParse              Kind = "parse_error"
	KindConversion         Kind = "conversion_error"
	KindUsage              Kind = "usage"
)

// Error is a classified failure carrying a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New builds a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrapf attaches an underlying cause to a classified error.
func Wrapf(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the services marker that corresponds to the error kind, so callers
// can branch on categories without knowing the taxonomy.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	return target == marker(e.Kind)
}

// Retryable reports whether another attempt of the same tool invocation could
// succeed.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindParse, KindUsage:
		return false
	default:
		return true
	}
}

func marker(kind Kind) error {
	switch kind {
	case KindTimeout:
		return services.ErrTimeout
	case KindParse, KindUsage:
		return services.ErrValidation
	case KindVideoUnavailable, KindPrivateVideo, KindUnviewablePlaylist:
		return services.ErrNotFound
	default:
		return services.ErrExternalTool
	}
}

// From maps any error to the code and message carried by a terminal event.
func From(err error) (Kind, string) {
	if err == nil {
		return "", ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind, classified.Error()
	}
	msg := strings.TrimSpace(err.Error())
	switch {
	case errors.Is(err, services.ErrTimeout):
		return KindTimeout, msg
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConfiguration):
		return KindUsage, msg
	default:
		return KindGeneric, msg
	}
}

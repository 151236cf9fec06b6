// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidReference = errors.New("invalid reference")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrValidation         = errors.New("validation error")
	ErrUnauthenticated    = errors.New("access token required")
	ErrIdentityExists     = errors.New("user already exists")
	ErrIdentityInactive   = errors.New("user not found or inactive")
	ErrStorageUnavailable = errors.New("file upload service temporarily unavailable")

	// Upload policy errors.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")

	// Credential errors. Expired and malformed credentials are reported as
	// *CredentialError values that also match ErrInvalidCredentials.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrExpiredCredential   = errors.New("credential expired")
	ErrMalformedCredential = errors.New("credential malformed")
)

// CredentialError describes a rejected token. Kind is either
// ErrExpiredCredential or ErrMalformedCredential.
type CredentialError struct {
	Kind  error
	Cause error
}

func (e *CredentialError) Error() string {
	if e.Cause != nil {
		return e.Kind.Error() + ": " + e.Cause.Error()
	}
	return e.Kind.Error()
}

// Is reports a match for the sub-kind and for the ErrInvalidCredentials family.
func (e *CredentialError) Is(target error) bool {
	return target == e.Kind || target == ErrInvalidCredentials
}

func (e *CredentialError) Unwrap() error { return e.Cause }

// Expired wraps cause as an expired credential error.
func Expired(cause error) error {
	return &CredentialError{Kind: ErrExpiredCredential, Cause: cause}
}

// Malformed wraps cause as a malformed credential error.
func Malformed(cause error) error {
	return &CredentialError{Kind: ErrMalformedCredential, Cause: cause}
}

// Validation returns an error matching ErrValidation with a caller-facing message.
func Validation(msg string) error {
	return &MessageError{Kind: ErrValidation, Msg: msg}
}

// WithMessage returns an error matching kind whose text is msg.
func WithMessage(kind error, msg string) error {
	return &MessageError{Kind: kind, Msg: msg}
}

// MessageError pairs a sentinel kind with a message safe to show to API callers.
type MessageError struct {
	Kind error
	Msg  string
}

func (e *MessageError) Error() string { return e.Msg }

func (e *MessageError) Is(target error) bool { return target == e.Kind }

package domain

import "fmt"

// Kind classifies an AppError into one of the application-visible categories.
type Kind string

const (
	// KindInternal covers storage and remote-call failures. Opaque to clients
	// beyond a stable message.
	KindInternal Kind = "internal"
	// KindBadRequest covers structural validation failures. The message is
	// actionable by the client and surfaced verbatim.
	KindBadRequest Kind = "bad_request"
	// KindMisuse covers programming or configuration errors, such as looking
	// up a session on a request the coordinator never wrapped.
	KindMisuse Kind = "misuse"
)

// AppError is a classified application error produced by the translator.
type AppError struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, may be nil
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Internal builds an internal AppError carrying the original cause.
func Internal(msg string, cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: cause}
}

// BadRequest builds a client-actionable AppError.
func BadRequest(msg string, cause error) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg, Err: cause}
}

// Misuse builds an AppError for programmer errors that should fail loudly.
func Misuse(msg string, cause error) *AppError {
	return &AppError{Kind: KindMisuse, Message: msg, Err: cause}
}

// StorageError marks an error as originating from the transactional data
// store client.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RemoteError marks an error as originating from an outbound remote call made
// by handler code.
type RemoteError struct {
	Target string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote call to %s failed: %v", e.Target, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// ValidationError marks a structural mismatch on input data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

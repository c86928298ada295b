package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a configurator error for exit-code mapping and
// recovery rendering. The kinds form a closed set: rendering and exit
// codes switch over them exhaustively at the CLI boundary.
type ErrorKind string

const (
	// KindValidation covers malformed or incomplete desired-state
	// documents, including conflicting scope flags.
	KindValidation ErrorKind = "validation"

	// KindNotFound covers references to entities that do not exist
	// locally or remotely, such as a category's missing parent.
	KindNotFound ErrorKind = "not_found"

	// KindDuplicate covers natural-key collisions within a collection.
	KindDuplicate ErrorKind = "duplicate"

	// KindTransport covers network, timeout, and connection failures
	// from the remote platform.
	KindTransport ErrorKind = "transport"

	// KindPermission covers operations the platform rejects as
	// unauthorized.
	KindPermission ErrorKind = "permission"

	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// DeployError is a classified configurator error. It carries the entity
// the failure relates to, when one is known.
type DeployError struct {
	Kind    ErrorKind
	Message string
	Entity  string
	Err     error
}

func (e *DeployError) Error() string {
	msg := e.Message
	if e.Entity != "" {
		msg = fmt.Sprintf("%s (entity=%s)", msg, e.Entity)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

func (e *DeployError) Unwrap() error { return e.Err }

// Is matches DeployErrors by kind, so errors.Is can test classification.
func (e *DeployError) Is(target error) bool {
	t, ok := target.(*DeployError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithEntity attaches entity context to the error.
func (e *DeployError) WithEntity(key string) *DeployError {
	e.Entity = key
	return e
}

func NewValidationError(message string, err error) *DeployError {
	return &DeployError{Kind: KindValidation, Message: message, Err: err}
}

func NewNotFoundError(message string, err error) *DeployError {
	return &DeployError{Kind: KindNotFound, Message: message, Err: err}
}

func NewDuplicateError(message string, err error) *DeployError {
	return &DeployError{Kind: KindDuplicate, Message: message, Err: err}
}

func NewTransportError(message string, err error) *DeployError {
	return &DeployError{Kind: KindTransport, Message: message, Err: err}
}

func NewPermissionError(message string, err error) *DeployError {
	return &DeployError{Kind: KindPermission, Message: message, Err: err}
}

func NewInternalError(message string, err error) *DeployError {
	return &DeployError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf returns the classification of an error, or KindInternal when the
// error carries no DeployError in its chain.
func KindOf(err error) ErrorKind {
	var e *DeployError
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsDuplicate(err error) bool  { return KindOf(err) == KindDuplicate }
func IsTransport(err error) bool  { return KindOf(err) == KindTransport }
func IsPermission(err error) bool { return KindOf(err) == KindPermission }

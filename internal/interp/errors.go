package interp

import (
	"errors"
	"fmt"
)

// Sentinel errors for interpreter management.
var (
	// ErrUnknownType is returned when no factory is registered for a name.
	ErrUnknownType = errors.New("unknown interpreter type")

	// ErrInitFailed is matched by errors returned when an interpreter's
	// Init fails.
	ErrInitFailed = errors.New("interpreter failed to initialize")

	// ErrDuplicateRegistration is the panic value cause when a name is
	// registered twice.
	ErrDuplicateRegistration = errors.New("interpreter type already registered")

	// ErrNilFactory is the panic value cause when a nil factory is registered.
	ErrNilFactory = errors.New("interpreter factory is nil")

	// ErrInvalidName is the panic value cause when an empty name is registered.
	ErrInvalidName = errors.New("invalid interpreter name")

	// ErrNoCurrent is returned when an operation needs a current
	// interpreter and the UI has none.
	ErrNoCurrent = errors.New("no current interpreter")

	// ErrScopeOrder is returned when a Scope is restored while a scope
	// entered after it is still open.
	ErrScopeOrder = errors.New("scope restored out of order")

	// ErrScopeClosed is returned when a Scope is restored twice.
	ErrScopeClosed = errors.New("scope already restored")

	// ErrQuit is returned by a command that ends the session. It is not
	// reported as a command error.
	ErrQuit = errors.New("quit")

	// ErrUIClosed is returned by operations on a closed UI.
	ErrUIClosed = errors.New("ui is closed")

	// ErrUnknownUI is returned when a UI does not belong to the Directory.
	ErrUnknownUI = errors.New("ui not in directory")
)

// UnknownTypeError reports a lookup of an unregistered interpreter name.
type UnknownTypeError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("interpreter `%s' unrecognized", e.Name)
}

// Is allows errors.Is to match UnknownTypeError with ErrUnknownType.
func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// InitError wraps the error returned by an interpreter's Init.
type InitError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("interpreter `%s' failed to initialize: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match InitError with ErrInitFailed.
func (e *InitError) Is(target error) bool {
	return target == ErrInitFailed
}

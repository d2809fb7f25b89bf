package common

import (
	"errors"
	"fmt"
)

// Sentinel errors describing the failure classes of the renderer. Wrapped errors are matched with errors.Is.
var (
	// ErrNotFound is returned when a named resource is absent from the registry or a scene.
	ErrNotFound = errors.New("not found")

	// ErrResourceLost is returned when the presentable surface was lost or became outdated.
	ErrResourceLost = errors.New("resource lost")

	// ErrOutOfMemory is returned when the GPU reports it ran out of memory.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrUnsupportedFormat is returned for assets whose format cannot be loaded, e.g. an unknown shader extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformed is returned for assets or geometry that violate a construction-time invariant.
	ErrMalformed = errors.New("malformed")

	// ErrUnexpected wraps backend failures that are neither lost surfaces nor out-of-memory conditions.
	ErrUnexpected = errors.New("unexpected backend error")

	// ErrBorrowConflict is returned when an exclusive-access guard is already borrowed incompatibly.
	ErrBorrowConflict = errors.New("borrow conflict")
)

// NotFoundError reports a missing named resource. It matches ErrNotFound through errors.Is.
type NotFoundError struct {
	// Kind is the human readable resource kind, e.g. "Material" or "Texture".
	Kind string

	// Name is the key that was looked up.
	Name string
}

// NewNotFound creates a NotFoundError for the given resource kind and name.
//
// Parameters:
//   - kind: the resource kind, e.g. "Material"
//   - name: the key that was not found
//
// Returns:
//   - error: the NotFoundError
func NewNotFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// IsFatal reports whether a frame error must stop the frame loop.
// Out-of-memory conditions and surfaces that stayed lost after reconfiguration are fatal.
//
// Parameters:
//   - err: the error returned from a frame
//
// Returns:
//   - bool: true if the caller should stop requesting frames
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrResourceLost)
}

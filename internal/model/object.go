package model

import (
	"errors"

	"github.com/google/uuid"
)

// ErrMissingID is returned by builders asked to build an object without an id.
var ErrMissingID = errors.New("model: id is required")

// Object is the capability set the save dispatcher needs from a domain object:
// a stable identifier and structural equality against another value of the
// same type.
type Object[T any] interface {
	GetID() uuid.UUID
	Equal(other T) bool
}

// Builder produces a (possibly revised) instance of T.
type Builder[T any] interface {
	Build() (T, error)
}

// NewID returns a new time-sortable UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

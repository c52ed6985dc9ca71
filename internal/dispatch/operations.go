package dispatch

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrMissingCallback is returned when a required callback is nil.
var ErrMissingCallback = errors.New("dispatch: required callback is nil")

// StoreFunc persists a new object.
type StoreFunc[T, S any] func(ctx context.Context, obj T, sess S) error

// UpdateFunc overwrites the persisted state existing with updated.
type UpdateFunc[T, S any] func(ctx context.Context, updated, existing T, sess S) error

// CascadeUpdateFunc reconciles the nested elements of updated against
// existing and returns the object as now persisted.
type CascadeUpdateFunc[T, S any] func(ctx context.Context, updated, existing T, sess S) (T, error)

// RetrieveFunc loads the persisted object with the given id. found == false
// with a nil error means no such object exists.
type RetrieveFunc[T, S any] func(ctx context.Context, id uuid.UUID, sess S) (obj T, found bool, err error)

// OperationGroup binds the storage callbacks for one entity type T used with
// session type S. A group is immutable once constructed.
type OperationGroup[T, S any] struct {
	store    StoreFunc[T, S]
	update   UpdateFunc[T, S]
	cascade  CascadeUpdateFunc[T, S]
	retrieve RetrieveFunc[T, S]
}

// NewOperationGroup creates a group for an entity without nested collections.
func NewOperationGroup[T, S any](store StoreFunc[T, S], update UpdateFunc[T, S], retrieve RetrieveFunc[T, S]) (*OperationGroup[T, S], error) {
	if store == nil || update == nil || retrieve == nil {
		return nil, ErrMissingCallback
	}
	return &OperationGroup[T, S]{store: store, update: update, retrieve: retrieve}, nil
}

// NewCascadingOperationGroup creates a group whose entity has nested
// collections reconciled by cascade.
func NewCascadingOperationGroup[T, S any](
	store StoreFunc[T, S],
	update UpdateFunc[T, S],
	cascade CascadeUpdateFunc[T, S],
	retrieve RetrieveFunc[T, S],
) (*OperationGroup[T, S], error) {
	if cascade == nil {
		return nil, ErrMissingCallback
	}
	g, err := NewOperationGroup(store, update, retrieve)
	if err != nil {
		return nil, err
	}
	g.cascade = cascade
	return g, nil
}

// Store returns the store callback.
func (g *OperationGroup[T, S]) Store() StoreFunc[T, S] { return g.store }

// Update returns the update callback.
func (g *OperationGroup[T, S]) Update() UpdateFunc[T, S] { return g.update }

// CascadeUpdate returns the cascade-update callback, or nil when the group
// has none.
func (g *OperationGroup[T, S]) CascadeUpdate() CascadeUpdateFunc[T, S] { return g.cascade }

// Retrieve returns the retrieve callback.
func (g *OperationGroup[T, S]) Retrieve() RetrieveFunc[T, S] { return g.retrieve }

// HasCascadeUpdate reports whether the group carries a cascade-update callback.
func (g *OperationGroup[T, S]) HasCascadeUpdate() bool { return g.cascade != nil }

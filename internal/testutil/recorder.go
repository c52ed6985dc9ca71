package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/datastore/internal/model"
)

// Operation names recorded by Recorder.
const (
	OpStore    = "store"
	OpUpdate   = "update"
	OpCascade  = "cascade"
	OpRetrieve = "retrieve"
)

// Call is one recorded callback invocation.
type Call struct {
	Op string
	ID uuid.UUID
}

// Recorder is an in-memory backend whose methods match the dispatch callback
// signatures. It records every call in order and can be told to fail any
// operation.
//
// Thread-safety: all methods are safe for concurrent use.
type Recorder[T model.Object[T], S any] struct {
	mu       sync.Mutex
	objects  map[uuid.UUID]T
	calls    []Call
	sessions []S
	failures map[string]error
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T model.Object[T], S any]() *Recorder[T, S] {
	return &Recorder[T, S]{
		objects:  make(map[uuid.UUID]T),
		failures: make(map[string]error),
	}
}

// Seed stores objects without recording calls.
func (r *Recorder[T, S]) Seed(objs ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, obj := range objs {
		r.objects[obj.GetID()] = obj
	}
}

// FailOn makes op return err until cleared with a nil err.
func (r *Recorder[T, S]) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, op)
		return
	}
	r.failures[op] = err
}

// Store records the call and keeps obj.
func (r *Recorder[T, S]) Store(_ context.Context, obj T, sess S) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(OpStore, obj.GetID(), sess)
	if err := r.failures[OpStore]; err != nil {
		return err
	}
	r.objects[obj.GetID()] = obj
	return nil
}

// Update records the call and replaces the kept object with updated.
func (r *Recorder[T, S]) Update(_ context.Context, updated, _ T, sess S) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(OpUpdate, updated.GetID(), sess)
	if err := r.failures[OpUpdate]; err != nil {
		return err
	}
	r.objects[updated.GetID()] = updated
	return nil
}

// Cascade records the call and returns updated.
func (r *Recorder[T, S]) Cascade(_ context.Context, updated, _ T, sess S) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(OpCascade, updated.GetID(), sess)
	if err := r.failures[OpCascade]; err != nil {
		var zero T
		return zero, err
	}
	return updated, nil
}

// Retrieve records the call and returns the kept object with the given id.
func (r *Recorder[T, S]) Retrieve(_ context.Context, id uuid.UUID, sess S) (T, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record(OpRetrieve, id, sess)
	var zero T
	if err := r.failures[OpRetrieve]; err != nil {
		return zero, false, err
	}
	obj, ok := r.objects[id]
	if !ok {
		return zero, false, nil
	}
	return obj, true, nil
}

// Calls returns the recorded calls in order.
func (r *Recorder[T, S]) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call{}, r.calls...)
}

// Ops returns the names of the recorded calls in order.
func (r *Recorder[T, S]) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (r *Recorder[T, S]) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Sessions returns the session passed to each recorded call.
func (r *Recorder[T, S]) Sessions() []S {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]S{}, r.sessions...)
}

// ResetCalls forgets recorded calls but keeps stored objects.
func (r *Recorder[T, S]) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.sessions = nil
}

func (r *Recorder[T, S]) record(op string, id uuid.UUID, sess S) {
	r.calls = append(r.calls, Call{Op: op, ID: id})
	r.sessions = append(r.sessions, sess)
}

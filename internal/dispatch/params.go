package dispatch

import (
	"reflect"

	"github.com/roach88/datastore/internal/model"
)

// ParamGroup describes a single save request: the candidate object, its
// declared class and a builder for revised instances.
type ParamGroup[T any] struct {
	obj     T
	class   reflect.Type
	builder model.Builder[T]
}

// NewParamGroup creates a save request for obj. obj may be absent (a nil
// pointer, map, slice or interface), in which case saving it is a no-op.
func NewParamGroup[T any](obj T, builder model.Builder[T]) ParamGroup[T] {
	return ParamGroup[T]{obj: obj, class: reflect.TypeFor[T](), builder: builder}
}

// Object returns the candidate and whether it is present.
func (p ParamGroup[T]) Object() (T, bool) {
	return p.obj, !isAbsent(p.obj)
}

// Class returns the declared type of the candidate.
func (p ParamGroup[T]) Class() reflect.Type {
	return p.class
}

// ClassName returns the short name of the declared type ("Event" for *Event).
func (p ParamGroup[T]) ClassName() string {
	return className(p.class)
}

// Builder returns the builder supplied with the request. It may be nil.
func (p ParamGroup[T]) Builder() model.Builder[T] {
	return p.builder
}

func isAbsent(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func className(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

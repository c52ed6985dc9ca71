// Package fault defines the closed set of failures surfaced by the datastore
// packages.
//
// Every failure is a *Error carrying a Kind and the wrapped cause. Callers
// branch on the kind with errors.As (or the Is* helpers) and reach the
// originating storage or parse error through errors.Unwrap / errors.Is.
//
// A missing record is never an Error: retrieve reports it as found == false.
package fault

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure.
type Kind string

const (
	// KindSave indicates a store, update or cascade update could not complete.
	KindSave Kind = "SAVE"

	// KindRetrieve indicates a retrieve could not complete.
	KindRetrieve Kind = "RETRIEVE"

	// KindDelete indicates a delete could not complete.
	KindDelete Kind = "DELETE"

	// KindCodec indicates a non-null column value could not be decoded
	// (or a native value could not be encoded) for its scalar kind.
	KindCodec Kind = "CODEC"

	// KindSession indicates a session could not be opened or role-scoped.
	KindSession Kind = "SESSION"
)

// verbs maps a kind to the verb used in rendered messages.
var verbs = map[Kind]string{
	KindSave:     "save",
	KindRetrieve: "retrieve",
	KindDelete:   "delete",
	KindCodec:    "decode",
	KindSession:  "open session",
}

// Error is a datastore failure with a wrapped cause.
type Error struct {
	// Kind identifies the failure category.
	Kind Kind

	// Op optionally narrows the verb (e.g. "update" for a KindSave raised
	// by an update callback, "encode" for a KindCodec raised while writing).
	Op string

	// Class names the object type or scalar kind involved.
	Class string

	// ID identifies the object when one is known.
	ID string

	// Err is the originating error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	verb := e.Op
	if verb == "" {
		verb = verbs[e.Kind]
	}

	msg := "failed to " + verb
	if e.Class != "" {
		msg += " " + e.Class
	}
	if e.ID != "" {
		msg += " with id " + e.ID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, class, id string, err error) *Error {
	return &Error{Kind: kind, Class: class, ID: id, Err: err}
}

// Wrap returns err unchanged when it already is (or wraps) an *Error and
// otherwise wraps it as a new Error of the given kind. A nil err stays nil.
func Wrap(kind Kind, op, class, id string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: kind, Op: op, Class: class, ID: id, Err: err}
}

// Codec creates a KindCodec error for the named scalar kind.
func Codec(kindName string, format string, args ...any) *Error {
	return &Error{Kind: KindCodec, Class: kindName, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there
// is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsSave returns true if err is a save failure.
func IsSave(err error) bool { return KindOf(err) == KindSave }

// IsRetrieve returns true if err is a retrieve failure.
func IsRetrieve(err error) bool { return KindOf(err) == KindRetrieve }

// IsDelete returns true if err is a delete failure.
func IsDelete(err error) bool { return KindOf(err) == KindDelete }

// IsCodec returns true if err is a codec failure.
func IsCodec(err error) bool { return KindOf(err) == KindCodec }

// IsSession returns true if err is a session failure.
func IsSession(err error) bool { return KindOf(err) == KindSession }

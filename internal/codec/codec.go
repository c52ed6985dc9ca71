package codec

import (
	"database/sql"
	"database/sql/driver"
	"strings"

	"github.com/roach88/datastore/internal/fault"
)

// Codec converts between a native scalar type T and its column value.
//
// Codecs hold no mutable state and are safe for concurrent use.
type Codec[T any] struct {
	name   string
	encode func(v T) driver.Value
	// decode parses a non-nil column value. ok == false reports a value the
	// kind treats as NULL (blank zoned date-time text).
	decode func(src any) (v T, ok bool, err error)
	// empty is the strict-mode value for a NULL column.
	empty func() T
}

// Name returns the scalar kind name (e.g. "duration").
func (c Codec[T]) Name() string {
	return c.name
}

// Encode converts v to its column value. Encode never inspects nullability.
func (c Codec[T]) Encode(v T) driver.Value {
	return c.encode(v)
}

// EncodeNullable converts v to its column value, or nil when v is not valid.
func (c Codec[T]) EncodeNullable(v sql.Null[T]) driver.Value {
	if !v.Valid {
		return nil
	}
	return c.encode(v.V)
}

// Decode converts a column value to T. A NULL column yields the kind's empty
// value; malformed input fails with a fault.KindCodec error.
func (c Codec[T]) Decode(src any) (T, error) {
	if src == nil {
		return c.emptyValue(), nil
	}
	v, ok, err := c.decode(src)
	if err != nil {
		var zero T
		return zero, err
	}
	if !ok {
		return c.emptyValue(), nil
	}
	return v, nil
}

// DecodeNullable converts a column value to sql.Null[T]. A NULL column yields
// Valid == false; malformed input fails with a fault.KindCodec error.
func (c Codec[T]) DecodeNullable(src any) (sql.Null[T], error) {
	if src == nil {
		return sql.Null[T]{}, nil
	}
	v, ok, err := c.decode(src)
	if err != nil {
		return sql.Null[T]{}, err
	}
	if !ok {
		return sql.Null[T]{}, nil
	}
	return sql.Null[T]{V: v, Valid: true}, nil
}

// Valuer returns a query argument that encodes v.
func (c Codec[T]) Valuer(v T) driver.Valuer {
	return valueFunc(func() (driver.Value, error) {
		return c.Encode(v), nil
	})
}

// NullValuer returns a query argument that encodes v, binding NULL when v is
// not valid.
func (c Codec[T]) NullValuer(v sql.Null[T]) driver.Valuer {
	return valueFunc(func() (driver.Value, error) {
		return c.EncodeNullable(v), nil
	})
}

// Scanner returns a scan destination that decodes into dst.
func (c Codec[T]) Scanner(dst *T) sql.Scanner {
	return scanFunc(func(src any) error {
		v, err := c.Decode(src)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// NullScanner returns a scan destination that decodes into dst.
func (c Codec[T]) NullScanner(dst *sql.Null[T]) sql.Scanner {
	return scanFunc(func(src any) error {
		v, err := c.DecodeNullable(src)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

func (c Codec[T]) emptyValue() T {
	if c.empty != nil {
		return c.empty()
	}
	var zero T
	return zero
}

type valueFunc func() (driver.Value, error)

func (f valueFunc) Value() (driver.Value, error) { return f() }

type scanFunc func(src any) error

func (f scanFunc) Scan(src any) error { return f(src) }

// columnText extracts text from a string or []byte column value.
func columnText(kind string, src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fault.Codec(kind, "unsupported column type %T", src)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

package codec

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/google/uuid"
)

// TextKind adapts a codec to human-written input for tooling such as the CLI.
type TextKind struct {
	// Key is the codec name with spaces replaced by dashes ("local-date").
	Key string

	// Encode parses native values written by a person (one argument for
	// scalar kinds, one per element for list kinds) and returns the column
	// value.
	Encode func(args []string) (driver.Value, error)

	// Decode decodes column text and renders the native value, one line per
	// list element.
	Decode func(column string) ([]string, error)
}

// Kinds returns the text adapters for every supported scalar kind, in a stable
// order.
func Kinds() []TextKind {
	return []TextKind{
		scalarKind(Duration, ParseDurationInput, time.Duration.String),
		scalarKind(LocalDate, civil.ParseDate, civil.Date.String),
		scalarKind(LocalDateTime, civil.ParseDateTime, civil.DateTime.String),
		scalarKind(LocalTime, ParseLocalTime, FormatLocalTime),
		scalarKind(ZonedDateTime, ParseZonedInput, FormatZoned),
		scalarKind(UUID, uuid.Parse, uuid.UUID.String),
		listKind(UUIDList, uuid.Parse, uuid.UUID.String),
		listKind(IntList, strconv.Atoi, strconv.Itoa),
		listKind(StringList, func(s string) (string, error) { return s, nil }, func(s string) string { return s }),
	}
}

// Lookup returns the text adapter with the given key.
func Lookup(key string) (TextKind, bool) {
	kinds := Kinds()
	i := slices.IndexFunc(kinds, func(k TextKind) bool { return k.Key == key })
	if i < 0 {
		return TextKind{}, false
	}
	return kinds[i], true
}

// Keys returns the keys of every supported kind.
func Keys() []string {
	kinds := Kinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = k.Key
	}
	return keys
}

func keyOf(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

func scalarKind[T any](c Codec[T], parse func(string) (T, error), render func(T) string) TextKind {
	return TextKind{
		Key: keyOf(c.Name()),
		Encode: func(args []string) (driver.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("%s takes exactly one value, got %d", c.Name(), len(args))
			}
			v, err := parse(args[0])
			if err != nil {
				return nil, fmt.Errorf("parse %s %q: %w", c.Name(), args[0], err)
			}
			return c.Encode(v), nil
		},
		Decode: func(column string) ([]string, error) {
			v, err := c.Decode(column)
			if err != nil {
				return nil, err
			}
			return []string{render(v)}, nil
		},
	}
}

func listKind[E any](c Codec[[]E], parse func(string) (E, error), render func(E) string) TextKind {
	return TextKind{
		Key: keyOf(c.Name()),
		Encode: func(args []string) (driver.Value, error) {
			values := make([]E, 0, len(args))
			for _, arg := range args {
				v, err := parse(arg)
				if err != nil {
					return nil, fmt.Errorf("parse %s element %q: %w", c.Name(), arg, err)
				}
				values = append(values, v)
			}
			return c.Encode(values), nil
		},
		Decode: func(column string) ([]string, error) {
			values, err := c.Decode(column)
			if err != nil {
				return nil, err
			}
			out := make([]string, len(values))
			for i, v := range values {
				out[i] = render(v)
			}
			return out, nil
		},
	}
}

// ParseDurationInput accepts ISO-8601 ("PT1H30M") or Go ("1h30m") notation.
func ParseDurationInput(s string) (time.Duration, error) {
	if d, err := ParseDuration(s); err == nil {
		return d, nil
	}
	return time.ParseDuration(s)
}

// ParseZonedInput accepts FormatZoned text or RFC 3339.
func ParseZonedInput(s string) (time.Time, error) {
	if t, err := ParseZoned(s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

package codec

import (
	"database/sql/driver"
	"log/slog"
	"strconv"
	"strings"
)

const (
	listSeparator = ","
	// commaEscape replaces literal commas inside StringList elements.
	commaEscape = "%;"
)

// IntList stores []int as comma-joined decimal text, logging skipped elements
// through slog.Default().
var IntList = NewIntList(nil)

// NewIntList returns an integer list codec that reports skipped elements to
// logger. A nil logger resolves to slog.Default() at decode time.
//
// Decoding is lenient: an element that is not a decimal integer is skipped
// with a warning instead of failing the row. Blank text decodes to an empty
// list.
func NewIntList(logger *slog.Logger) Codec[[]int] {
	return Codec[[]int]{
		name: "integer list",
		encode: func(values []int) driver.Value {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.Itoa(v)
			}
			return strings.Join(parts, listSeparator)
		},
		decode: func(src any) ([]int, bool, error) {
			s, err := columnText("integer list", src)
			if err != nil {
				return nil, false, err
			}
			values := []int{}
			if isBlank(s) {
				return values, true, nil
			}
			for _, part := range strings.Split(s, listSeparator) {
				v, err := strconv.Atoi(part)
				if err != nil {
					l := logger
					if l == nil {
						l = slog.Default()
					}
					l.Warn("unable to parse integer value",
						"value", part,
						"error", err,
					)
					continue
				}
				values = append(values, v)
			}
			return values, true, nil
		},
		empty: func() []int { return []int{} },
	}
}

// StringList stores []string as comma-joined text. Commas inside an element
// are written as "%;" and restored on decode. Blank text decodes to an empty
// list.
var StringList = Codec[[]string]{
	name: "string list",
	encode: func(items []string) driver.Value {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = strings.ReplaceAll(item, listSeparator, commaEscape)
		}
		return strings.Join(parts, listSeparator)
	},
	decode: func(src any) ([]string, bool, error) {
		s, err := columnText("string list", src)
		if err != nil {
			return nil, false, err
		}
		items := []string{}
		if isBlank(s) {
			return items, true, nil
		}
		for _, part := range strings.Split(s, listSeparator) {
			items = append(items, strings.ReplaceAll(part, commaEscape, listSeparator))
		}
		return items, true, nil
	},
	empty: func() []string { return []string{} },
}

package codec

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/golang-sql/civil"

	"github.com/roach88/datastore/internal/fault"
)

// timestampLayouts are the text forms accepted where a timestamp column comes
// back as text (SQLite without declared column types, some proxies).
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

// LocalDate stores civil.Date as a timestamp at midnight UTC; decoding
// truncates the timestamp to its date.
var LocalDate = Codec[civil.Date]{
	name: "local date",
	encode: func(d civil.Date) driver.Value {
		return d.In(time.UTC)
	},
	decode: func(src any) (civil.Date, bool, error) {
		t, err := columnTimestamp("local date", src)
		if err != nil {
			return civil.Date{}, false, err
		}
		return civil.DateOf(t), true, nil
	},
}

// LocalDateTime stores civil.DateTime as a timestamp carrying the wall clock
// in UTC.
var LocalDateTime = Codec[civil.DateTime]{
	name: "local date-time",
	encode: func(dt civil.DateTime) driver.Value {
		return dt.In(time.UTC)
	},
	decode: func(src any) (civil.DateTime, bool, error) {
		t, err := columnTimestamp("local date-time", src)
		if err != nil {
			return civil.DateTime{}, false, err
		}
		return civil.DateTimeOf(t), true, nil
	},
}

// LocalTime stores civil.Time as time-of-day text ("HH:MM:SS[.fff]").
// time.Time column values (drivers mapping TIME natively) decode through
// their clock fields.
var LocalTime = Codec[civil.Time]{
	name: "local time",
	encode: func(t civil.Time) driver.Value {
		return FormatLocalTime(t)
	},
	decode: func(src any) (civil.Time, bool, error) {
		if t, ok := src.(time.Time); ok {
			return civil.TimeOf(t), true, nil
		}
		s, err := columnText("local time", src)
		if err != nil {
			return civil.Time{}, false, err
		}
		t, err := ParseLocalTime(s)
		if err != nil {
			return civil.Time{}, false, fault.Codec("local time", "parse %q: %w", s, err)
		}
		return t, true, nil
	},
}

// FormatLocalTime renders t as "HH:MM:SS" followed by a 3, 6 or 9 digit
// fraction when t has sub-second precision.
func FormatLocalTime(t civil.Time) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second) + fractionDigits(t.Nanosecond)
}

// ParseLocalTime parses "HH:MM[:SS[.f]]".
func ParseLocalTime(s string) (civil.Time, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		var minuteErr error
		if t, minuteErr = time.Parse("15:04", s); minuteErr != nil {
			return civil.Time{}, err
		}
	}
	return civil.TimeOf(t), nil
}

// fractionDigits renders nanoseconds the way ISO-8601 local times do: nothing
// for whole seconds, otherwise milli-, micro- or nanosecond precision.
func fractionDigits(nanos int) string {
	switch {
	case nanos == 0:
		return ""
	case nanos%int(time.Millisecond) == 0:
		return fmt.Sprintf(".%03d", nanos/int(time.Millisecond))
	case nanos%int(time.Microsecond) == 0:
		return fmt.Sprintf(".%06d", nanos/int(time.Microsecond))
	default:
		return fmt.Sprintf(".%09d", nanos)
	}
}

func columnTimestamp(kind string, src any) (time.Time, error) {
	if t, ok := src.(time.Time); ok {
		return t, nil
	}
	s, err := columnText(kind, src)
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fault.Codec(kind, "parse timestamp %q", s)
}

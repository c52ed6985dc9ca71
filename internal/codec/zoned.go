package codec

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // region ids must resolve without a system zoneinfo

	"github.com/roach88/datastore/internal/fault"
)

// zonedLayouts are tried in order; seconds are omitted in text when both
// seconds and nanoseconds are zero.
var zonedLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

// ZonedDateTime stores a zoned time.Time as ISO-8601 text: local date-time,
// UTC offset ("Z" for zero) and, for IANA region locations, the region id in
// brackets.
//
//	2026-03-01T12:00+01:00[Europe/Paris]
//	2026-03-01T11:00:30.250Z
//
// Empty or blank text decodes as NULL.
var ZonedDateTime = Codec[time.Time]{
	name: "zoned date-time",
	encode: func(t time.Time) driver.Value {
		return FormatZoned(t)
	},
	decode: func(src any) (time.Time, bool, error) {
		s, err := columnText("zoned date-time", src)
		if err != nil {
			return time.Time{}, false, err
		}
		if isBlank(s) {
			return time.Time{}, false, nil
		}
		t, err := ParseZoned(strings.TrimSpace(s))
		if err != nil {
			return time.Time{}, false, fault.Codec("zoned date-time", "parse %q: %w", s, err)
		}
		return t, true, nil
	},
}

// FormatZoned renders t as ISO-8601 zoned date-time text.
func FormatZoned(t time.Time) string {
	var b strings.Builder
	b.WriteString(t.Format("2006-01-02T15:04"))
	if t.Second() != 0 || t.Nanosecond() != 0 {
		fmt.Fprintf(&b, ":%02d", t.Second())
		b.WriteString(fractionDigits(t.Nanosecond()))
	}

	_, offset := t.Zone()
	switch {
	case offset == 0:
		b.WriteByte('Z')
	case offset%60 != 0:
		b.WriteString(t.Format("-07:00:00"))
	default:
		b.WriteString(t.Format("-07:00"))
	}

	if region := regionID(t.Location()); region != "" {
		b.WriteByte('[')
		b.WriteString(region)
		b.WriteByte(']')
	}
	return b.String()
}

// ParseZoned parses text produced by FormatZoned (and ISO-8601 offset
// date-times in general). Without a region the result carries a fixed zone
// for its offset, or UTC for a zero offset.
func ParseZoned(s string) (time.Time, error) {
	region := ""
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return time.Time{}, fmt.Errorf("unbalanced zone brackets")
		}
		region = s[open+1 : len(s)-1]
		s = s[:open]
	}

	var (
		t   time.Time
		err error
	)
	for _, layout := range zonedLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, err
	}

	if region != "" {
		loc, err := time.LoadLocation(region)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	}

	_, offset := t.Zone()
	if offset == 0 {
		return t.UTC(), nil
	}
	return t.In(time.FixedZone("", offset)), nil
}

// regionID returns the IANA region name ("Area/Location") of loc, or "" for
// UTC, Local and fixed-offset zones.
func regionID(loc *time.Location) string {
	name := loc.String()
	if !strings.Contains(name, "/") {
		return ""
	}
	return name
}

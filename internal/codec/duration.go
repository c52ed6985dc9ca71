package codec

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/datastore/internal/fault"
)

// Duration stores time.Duration as ISO-8601 duration text.
//
// Encoding uses hours, minutes and seconds only ("PT8H6M12.345S", "PT0S");
// negative durations carry the sign on every component ("PT-1M-30S").
// Decoding also accepts a day component, a leading sign and either '.' or ','
// as the fraction separator.
var Duration = Codec[time.Duration]{
	name: "duration",
	encode: func(d time.Duration) driver.Value {
		return FormatDuration(d)
	},
	decode: func(src any) (time.Duration, bool, error) {
		s, err := columnText("duration", src)
		if err != nil {
			return 0, false, err
		}
		d, err := ParseDuration(s)
		if err != nil {
			return 0, false, fault.Codec("duration", "parse %q: %w", s, err)
		}
		return d, true, nil
	},
}

var durationPattern = regexp.MustCompile(
	`(?i)^([-+]?)P(?:([-+]?[0-9]+)D)?(T(?:([-+]?[0-9]+)H)?(?:([-+]?[0-9]+)M)?(?:([-+]?[0-9]+)(?:[.,]([0-9]{0,9}))?S)?)?$`)

var errDurationOverflow = errors.New("duration out of range")

// FormatDuration renders d as ISO-8601 duration text.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	neg := d < 0
	abs := uint64(d)
	if neg {
		abs = uint64(-(d + 1)) + 1
	}
	sign := ""
	if neg {
		sign = "-"
	}

	totalSecs := abs / uint64(time.Second)
	nanos := abs % uint64(time.Second)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours != 0 {
		b.WriteString(sign)
		b.WriteString(strconv.FormatUint(hours, 10))
		b.WriteByte('H')
	}
	if minutes != 0 {
		b.WriteString(sign)
		b.WriteString(strconv.FormatUint(minutes, 10))
		b.WriteByte('M')
	}
	if secs == 0 && nanos == 0 {
		return b.String()
	}
	b.WriteString(sign)
	b.WriteString(strconv.FormatUint(secs, 10))
	if nanos != 0 {
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(fmt.Sprintf("%09d", nanos), "0"))
	}
	b.WriteByte('S')
	return b.String()
}

// ParseDuration parses ISO-8601 duration text of the form
// [-+]P[nD][T[nH][nM][n[.f]S]].
func ParseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("not an ISO-8601 duration")
	}
	days, hours, minutes, seconds, fraction := m[2], m[4], m[5], m[6], m[7]
	if m[3] != "" && hours == "" && minutes == "" && seconds == "" {
		return 0, fmt.Errorf("time designator without components")
	}
	if days == "" && m[3] == "" {
		return 0, fmt.Errorf("no components")
	}

	var total time.Duration
	for _, part := range []struct {
		text string
		unit time.Duration
	}{
		{days, 24 * time.Hour},
		{hours, time.Hour},
		{minutes, time.Minute},
		{seconds, time.Second},
	} {
		v, err := scaled(part.text, part.unit)
		if err != nil {
			return 0, err
		}
		if total, err = addDuration(total, v); err != nil {
			return 0, err
		}
	}

	if fraction != "" {
		nanos, err := strconv.ParseInt((fraction + "000000000")[:9], 10, 64)
		if err != nil {
			return 0, err
		}
		if strings.HasPrefix(seconds, "-") {
			nanos = -nanos
		}
		var addErr error
		if total, addErr = addDuration(total, time.Duration(nanos)); addErr != nil {
			return 0, addErr
		}
	}

	if m[1] == "-" {
		if total == math.MinInt64 {
			return 0, errDurationOverflow
		}
		total = -total
	}
	return total, nil
}

func scaled(text string, unit time.Duration) (time.Duration, error) {
	if text == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, errDurationOverflow
	}
	if n > int64(math.MaxInt64/unit) || n < int64(math.MinInt64/unit) {
		return 0, errDurationOverflow
	}
	return time.Duration(n) * unit, nil
}

func addDuration(a, b time.Duration) (time.Duration, error) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return 0, errDurationOverflow
	}
	return c, nil
}

// Package convert turns loosely typed spreadsheet cells into typed values.
// None of the functions fail: malformed input yields nil (or "now" for dates).
package convert

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/jinzhu/now"
)

// excelUnixEpochDays is the serial number of 1970-01-01 in the 1900 date
// system, including the phantom 1900-02-29.
const excelUnixEpochDays = 25569

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)

	dateParser = &now.Config{
		WeekStartDay: time.Monday,
		TimeLocation: time.Local,
		TimeFormats: append([]string{
			"2006/01/02 15:04:05",
			"2006/01/02 15:04",
			"2006/01/02",
			"01/02/2006 15:04:05",
			"01/02/2006 15:04",
			"01/02/2006",
			"2006-01-02T15:04:05",
			"2006-01-02T15:04",
			time.RFC1123,
			time.RFC1123Z,
		}, now.TimeFormats...),
	}
)

// Float parses v as a float. Thousands separators and whitespace are ignored
// in strings and only the leading numeric literal is used, so "1,234.5 ₮"
// yields 1234.5.
func Float(v any) *float64 {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r == ',' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, x)
		return parseFloatPrefix(cleaned)
	}

	f, ok := number(v)
	if !ok || math.IsNaN(f) {
		return nil
	}
	return &f
}

// Int is Float's integer counterpart. Numbers are floored; strings are parsed
// up to the first non-digit, so "3.9" yields 3.
func Int(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(x, ",", ""))
		lit := intPrefix.FindString(cleaned)
		if lit == "" {
			return nil
		}
		n, err := strconv.Atoi(lit)
		if err != nil {
			return nil
		}
		return &n
	}

	f, ok := number(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	f = math.Floor(f)
	if f >= math.MaxInt || f < math.MinInt {
		return nil
	}
	n := int(f)
	return &n
}

// Date never fails. Empty, malformed or out-of-range values resolve to the
// current time. Numbers are treated as spreadsheet serial dates.
func Date(v any) time.Time {
	switch x := v.(type) {
	case nil:
		return time.Now()
	case time.Time:
		if x.IsZero() {
			return time.Now()
		}
		return x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Now()
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		// ISO date-only values are UTC midnight; other offset-less forms are local.
		if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
			return t
		}
		if t, err := dateParser.Parse(s); err == nil {
			return t
		}
		return time.Now()
	case bool:
		return time.Now()
	}

	serial, ok := number(v)
	if !ok || serial == 0 || math.IsNaN(serial) {
		return time.Now()
	}
	t, ok := fromSerial(serial)
	if !ok {
		return time.Now()
	}
	return t
}

// StringOrNull returns the trimmed string form of v, or nil when there is
// nothing left after trimming.
func StringOrNull(v any) *string {
	var s string
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		s = strconv.FormatBool(x)
	case time.Time:
		s = x.Format(time.RFC3339)
	default:
		f, ok := number(v)
		if !ok {
			return nil
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func fromSerial(serial float64) (time.Time, bool) {
	days := math.Floor(serial) - excelUnixEpochDays
	// ±100,000,000 days is the valid range of an ECMAScript date.
	if math.IsInf(days, 0) || math.Abs(days) > 1e8 {
		return time.Time{}, false
	}
	return time.Unix(int64(days)*86400, 0).UTC(), true
}

func parseFloatPrefix(s string) *float64 {
	lit := floatPrefix.FindString(s)
	if lit == "" {
		return nil
	}
	switch lit {
	case "Infinity", "+Infinity":
		f := math.Inf(1)
		return &f
	case "-Infinity":
		f := math.Inf(-1)
		return &f
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	return &f
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

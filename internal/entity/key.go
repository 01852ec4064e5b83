package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// StampLayout is how timestamps are written to text cells.
const StampLayout = "2006-01-02 15:04:05"

// CanonicalKey renders an identifier cell the same way whether the store returned it as a
// number, a numeric string or a zero-padded string: "00123", 123 and 123.0 all become "123".
func CanonicalKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return canonicalFloat(float64(x))
	case float64:
		return canonicalFloat(x)
	case json.Number:
		return canonicalString(x.String())
	case string:
		return canonicalString(x)
	default:
		return canonicalString(fmt.Sprint(x))
	}
}

func canonicalFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// canonicalString rewrites decimal text the way canonicalFloat renders numbers: no leading
// zeros, no trailing fractional zeros, no plus sign and no negative zero. Anything else is
// only trimmed.
func canonicalString(s string) string {
	s = strings.TrimSpace(s)

	body := s
	negative := false

	switch {
	case strings.HasPrefix(body, "-"):
		negative = true
		body = body[1:]
	case strings.HasPrefix(body, "+"):
		body = body[1:]
	}

	intPart, frac, hasFrac := strings.Cut(body, ".")
	if !isDigits(intPart) || (hasFrac && !isDigits(frac)) {
		return s
	}

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}

	out := intPart
	if frac = strings.TrimRight(frac, "0"); frac != "" {
		out += "." + frac
	}

	if negative && out != "0" {
		out = "-" + out
	}

	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// Text renders any cell value as trimmed display text.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case time.Time:
		return x.Format(StampLayout)
	case *time.Time:
		if x == nil {
			return ""
		}

		return x.Format(StampLayout)
	case float64:
		return canonicalFloat(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// ParseStamp reads a timestamp cell in loc. Text cells use StampLayout or RFC 3339; numeric
// cells are spreadsheet date serials.
func ParseStamp(v any, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}

		return x.In(loc), true
	case *time.Time:
		if x == nil || x.IsZero() {
			return time.Time{}, false
		}

		return x.In(loc), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}

		return fromSerial(f, loc)
	case float64:
		return fromSerial(x, loc)
	case int:
		return fromSerial(float64(x), loc)
	case int64:
		return fromSerial(float64(x), loc)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}

		t, err := time.ParseInLocation(StampLayout, s, loc)
		if err == nil {
			return t, true
		}

		t, err = time.Parse(time.RFC3339, s)
		if err == nil {
			return t.In(loc), true
		}

		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// fromSerial converts a spreadsheet date serial (days since 1899-12-30, the fraction being
// the time of day) into local civil time in loc.
func fromSerial(serial float64, loc *time.Location) (time.Time, bool) {
	if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
		return time.Time{}, false
	}

	days := math.Floor(serial)
	secs := math.Round((serial - days) * 24 * 60 * 60)

	return time.Date(1899, time.December, 30+int(days), 0, 0, int(secs), 0, loc), true
}

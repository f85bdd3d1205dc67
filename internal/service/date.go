package service

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrBadDate means the date part did not match any accepted pattern
	// or names a day that does not exist.
	ErrBadDate = errors.New("invalid date")
	// ErrBadModifier means the "+ N unit" part was malformed.
	ErrBadModifier = errors.New("invalid date modifier")
)

// dayCoefficient maps a shelf-life unit to its length in days.
var dayCoefficient = map[string]int{
	"сут": 1,
	"мес": 30,
	"лет": 365,
}

// ParseExpiry parses a shelf-life expression: a date in one of the
// forms DD, DD.MM, DD.MM.YY or DD.MM.YYYY, where omitted parts default
// to the current month and year, optionally followed by a modifier
// "+ N сут|мес|лет" that extends the date by whole days.
func ParseExpiry(text string, now time.Time) (time.Time, error) {
	parts := make([]string, 0, 2)
	for _, p := range strings.Split(text, "+") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 || len(parts) > 2 {
		return time.Time{}, ErrBadDate
	}

	date, err := parseDate(parts[0], now)
	if err != nil {
		return time.Time{}, err
	}

	if len(parts) == 2 {
		fields := strings.Fields(parts[1])
		if len(fields) != 2 {
			return time.Time{}, ErrBadModifier
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil || count < 0 {
			return time.Time{}, ErrBadModifier
		}
		coefficient, ok := dayCoefficient[fields[1]]
		if !ok {
			return time.Time{}, ErrBadModifier
		}
		date = date.Add(time.Duration(count*coefficient) * 24 * time.Hour)
	}

	return date, nil
}

func parseDate(s string, now time.Time) (time.Time, error) {
	segments := strings.Split(s, ".")
	if len(segments) > 3 {
		return time.Time{}, ErrBadDate
	}

	day, ok := parseSegment(segments[0], 2)
	if !ok {
		return time.Time{}, ErrBadDate
	}

	month := int(now.Month())
	year := now.Year()

	if len(segments) >= 2 {
		if month, ok = parseSegment(segments[1], 2); !ok {
			return time.Time{}, ErrBadDate
		}
	}
	if len(segments) == 3 {
		switch len(segments[2]) {
		case 2:
			yy, ok := parseSegment(segments[2], 2)
			if !ok {
				return time.Time{}, ErrBadDate
			}
			year = 2000 + yy
		case 4:
			if year, ok = parseSegment(segments[2], 4); !ok {
				return time.Time{}, ErrBadDate
			}
		default:
			return time.Time{}, ErrBadDate
		}
	}

	// time.Date normalizes out-of-range components (32.01 becomes
	// 01.02), so round-trip the parts to reject such dates.
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if date.Day() != day || date.Month() != time.Month(month) || date.Year() != year {
		return time.Time{}, ErrBadDate
	}
	return date, nil
}

// parseSegment parses a segment of exactly width digits.
func parseSegment(s string, width int) (int, bool) {
	if len(s) != width {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

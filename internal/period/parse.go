package period

import (
	"strconv"
	"strings"
	"time"
)

// Parse reads the compact textual form of a spec:
//
//	last
//	week:W:YYYY
//	month:M:YYYY
//	quarter:Q:YYYY
//	year:YYYY
//	custom:YYYY-MM-DD:YYYY-MM-DD   (end date inclusive)
func Parse(s string) (Spec, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	kind := Kind(strings.ToLower(parts[0]))
	args := parts[1:]

	switch kind {
	case KindLastComplete:
		if len(args) != 0 {
			return nil, invalid("period", s, "last takes no arguments")
		}
		return LastComplete(), nil
	case KindWeek, KindMonth, KindQuarter:
		if len(args) != 2 {
			return nil, invalid("period", s, "expects <n>:<year>")
		}
		n, err := atoi(string(kind), args[0])
		if err != nil {
			return nil, err
		}
		year, err := atoi("year", args[1])
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindWeek:
			return Week(n, year)
		case KindMonth:
			return Month(n, year)
		default:
			return Quarter(n, year)
		}
	case KindYear:
		if len(args) != 1 {
			return nil, invalid("period", s, "expects year:<year>")
		}
		year, err := atoi("year", args[0])
		if err != nil {
			return nil, err
		}
		return Year(year)
	case KindCustom:
		if len(args) != 2 {
			return nil, invalid("period", s, "expects custom:<start>:<end>")
		}
		start, end, err := ParseInclusive(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return Custom(start, end)
	default:
		return nil, invalid("period", s, "unknown kind")
	}
}

// ParseInclusive parses two YYYY-MM-DD dates where end is the last included
// day, returning the half-open bounds [start, end+1).
func ParseInclusive(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("start", start, "is not a YYYY-MM-DD date")
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, invalid("end", end, "is not a YYYY-MM-DD date")
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, invalid("end", end, "precedes start")
	}
	return s, e.AddDate(0, 0, 1), nil
}

func atoi(field, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid(field, s, "is not an integer")
	}
	return n, nil
}

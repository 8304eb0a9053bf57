// Package formatting renders and parses human-readable byte sizes.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// units are base-1024 multiples indexed by power.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n < 0 {
		return "-" + FormatBytes(-n, precision)
	}

	i := 0
	for v := n; v >= 1024 && i < len(units)-1; v >>= 10 {
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}

	size := float64(n) / float64(int64(1)<<(10*i))
	return strconv.FormatFloat(size, 'f', max(precision, 0), 64) + " " + units[i]
}

// ParseBytes parses sizes such as "20MB", "1.5 GiB", "512k", or a bare
// byte count. Units are base-1024 and case-insensitive; "iB" forms and
// single-letter forms are accepted.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	power, err := unitPower(unit)
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(1024, float64(power))
	if bytes > math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows", s)
	}
	return int64(bytes), nil
}

func unitPower(unit string) (int, error) {
	u := strings.ToUpper(unit)
	switch {
	case u == "" || u == "B":
		return 0, nil
	case strings.HasSuffix(u, "IB"):
		u = strings.TrimSuffix(u, "IB") + "B"
	case len(u) == 1:
		u += "B"
	}

	if i := slices.Index(units, u); i > 0 {
		return i, nil
	}
	return 0, fmt.Errorf("unknown byte size unit %q", unit)
}

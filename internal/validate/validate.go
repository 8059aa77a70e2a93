package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9][0-9 -]{6,19}$`)
)

// Qty parses a form quantity. It must be an integer in 1..max (max <= 0
// means no upper bound).
func Qty(s string, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, false
	}
	if max > 0 && n > max {
		return 0, false
	}
	return n, true
}

// ID validates a simple resource identifier (product/order/location ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Upper bounds for admin-entered amounts. Line totals stay far below int64.
const (
	MaxPrice = 1_000_000_000_000
	MaxStock = 1_000_000_000
)

// Amount parses an integer amount in 0..max.
func Amount(s string, max int64) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 || n > max {
		return 0, false
	}
	return n, true
}

// Checked reports whether a checkbox form value is ticked.
func Checked(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true", "yes", "y":
		return true
	}
	return false
}

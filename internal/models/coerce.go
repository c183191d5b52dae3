package models

import (
	"math"
	"strconv"
	"strings"
)

// CoerceFlag converts a stored cell value into a day flag.
// Stores round-trip booleans as text, so "True", "TRUE", "true" and "1"
// all read as true. Anything unrecognised reads as false.
func CoerceFlag(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "1.0", "yes", "y", "x":
			return true
		}
		return false
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	default:
		return false
	}
}

// CoerceRating parses a stored rating. Blank, malformed and negative values become 0.
func CoerceRating(v any) int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		n = int(x)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.Atoi(s); err == nil {
			n = i
		} else if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			n = int(f)
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// CoerceStatus parses a stored status, defaulting to Active.
func CoerceStatus(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusActive
}

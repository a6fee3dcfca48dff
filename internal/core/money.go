// Package core provides yen parsing and handling utilities.
//
// Ledger amounts are whole yen. Parsing never fails: malformed input
// degrades to zero so a single bad cell cannot break a settlement.
package core

import (
	"strconv"
	"strings"
)

// ParseYen converts a ledger amount cell to a non-negative number of yen.
//
// Thousands separators are removed, then the leading signed integer is
// read (anything after it, such as a decimal part, is ignored) and its
// absolute value returned. A cell without a leading integer yields 0.
//
// Examples:
//
//	ParseYen("3,000")   -> 3000
//	ParseYen("-1,200")  -> 1200
//	ParseYen("980.5")   -> 980
//	ParseYen("¥500")    -> 0
func ParseYen(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseYenInput reads a free-text amount typed by a user: every character
// that is not an ASCII digit is dropped ("12,000円" -> 12000). Empty or
// overflowing input yields 0.
func ParseYenInput(s string) int64 {
	digits := StripNonDigits(s)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// StripNonDigits keeps only the ASCII digits of s.
func StripNonDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// Half returns floor(v/2).
func Half(v int64) int64 {
	return FloorDiv(v, 2)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(v, d int64) int64 {
	q := v / d
	if (v%d != 0) && ((v < 0) != (d < 0)) {
		q--
	}
	return q
}

// FormatYen formats an amount with thousands separators, e.g. "¥43,500".
func FormatYen(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-¥" + b.String()
	}
	return "¥" + b.String()
}

// String implements fmt.Stringer.
func (m Money) String() string {
	return FormatYen(m.Yen)
}

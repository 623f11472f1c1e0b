// Package naturalsort orders filenames the way a human expects: embedded digit
// runs compare as integers, so "chunk_2.wav" precedes "chunk_10.wav".
package naturalsort

import (
	"sort"
	"strings"
)

// Less reports whether a sorts before b in natural order. Filenames are split
// into alternating digit and non-digit runs; digit runs compare numerically,
// non-digit runs compare case-insensitively. A shorter tying prefix sorts first.
func Less(a, b string) bool {
	return compare(a, b) < 0
}

// Sort orders names in place using natural order. The sort is stable so equal
// keys keep their original relative order.
func Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return compare(names[i], names[j]) < 0
	})
}

// Sorted returns a naturally ordered copy, leaving the input untouched.
func Sorted(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	Sort(out)
	return out
}

func compare(a, b string) int {
	for a != "" && b != "" {
		aTok, aDigits, aRest := nextToken(a)
		bTok, bDigits, bRest := nextToken(b)

		var c int
		if aDigits && bDigits {
			c = compareNumeric(aTok, bTok)
		} else {
			c = strings.Compare(strings.ToLower(aTok), strings.ToLower(bTok))
		}
		if c != 0 {
			return c
		}
		a, b = aRest, bRest
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// nextToken splits off the leading run of digits or non-digits.
func nextToken(s string) (token string, digits bool, rest string) {
	digits = isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], digits, s[i:]
}

// compareNumeric compares two digit runs by value without parsing into a fixed
// width integer, so arbitrarily long runs never overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// lengthBounds parses a LENGTH operand "min,max".
// ok is false for operands that are skipped: non-integer bounds, min <= 0 or
// max <= min.
func lengthBounds(value string) (lo, hi int, ok bool) {
	minStr, maxStr, found := strings.Cut(value, ",")
	if !found {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(minStr))
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.Atoi(strings.TrimSpace(maxStr))
	if err != nil {
		return 0, 0, false
	}
	if lo <= 0 || hi <= lo {
		return 0, 0, false
	}
	return lo, hi, true
}

// textLength counts characters with CRLF line endings counted once.
func textLength(s string) int {
	return utf8.RuneCountInString(strings.ReplaceAll(s, "\r\n", "\n"))
}

// checkLength reports whether answer satisfies the operand.
// applied is false when the operand is skipped. An empty answer measures 0.
func checkLength(value, answer string) (lo, hi int, applied, passed bool) {
	lo, hi, ok := lengthBounds(value)
	if !ok {
		return 0, 0, false, true
	}
	n := textLength(answer)
	return lo, hi, true, n >= lo && n <= hi
}

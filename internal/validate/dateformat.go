package validate

import (
	"fmt"
	"strings"
	"time"
)

// defaultDateLayouts parse dates checked without a FORMAT token.
var defaultDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	time.RFC3339,
}

// dateLayout translates a CMS date pattern (dd/MM/yyyy style) to a Go layout.
//
// Letter runs map to layout elements: d dd ddd dddd, M MM MMM MMMM, yy yyyy,
// H HH, h hh, m mm, s ss, t tt. Quoted text ('...') and backslash escapes are
// literal, as is any other character. Unsupported run lengths are an error.
func dateLayout(pattern string) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		r := runes[i]

		switch r {
		case '\'', '"':
			end := i + 1
			for end < len(runes) && runes[end] != r {
				end++
			}
			if end == len(runes) {
				return "", fmt.Errorf("unterminated quote in %q", pattern)
			}
			b.WriteString(string(runes[i+1 : end]))
			i = end + 1
			continue
		case '\\':
			if i+1 < len(runes) {
				b.WriteRune(runes[i+1])
			}
			i += 2
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == r {
			n++
		}

		elem, ok, err := layoutElement(r, n)
		if err != nil {
			return "", fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if !ok {
			b.WriteString(strings.Repeat(string(r), n))
		} else {
			b.WriteString(elem)
		}
		i += n
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("empty pattern")
	}
	return b.String(), nil
}

// layoutElement maps one letter run. ok is false for literal characters.
func layoutElement(r rune, n int) (string, bool, error) {
	var table map[int]string
	switch r {
	case 'd':
		table = map[int]string{1: "2", 2: "02", 3: "Mon", 4: "Monday"}
	case 'M':
		table = map[int]string{1: "1", 2: "01", 3: "Jan", 4: "January"}
	case 'y':
		table = map[int]string{2: "06", 4: "2006"}
	case 'H':
		table = map[int]string{1: "15", 2: "15"}
	case 'h':
		table = map[int]string{1: "3", 2: "03"}
	case 'm':
		table = map[int]string{1: "4", 2: "04"}
	case 's':
		table = map[int]string{1: "5", 2: "05"}
	case 't':
		table = map[int]string{1: "PM", 2: "PM"}
	default:
		return "", false, nil
	}

	elem, ok := table[n]
	if !ok {
		return "", false, fmt.Errorf("unsupported %q run of length %d", r, n)
	}
	return elem, true, nil
}

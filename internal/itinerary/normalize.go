package itinerary

import (
	"math"
	"strconv"
	"strings"
)

// Normalize fixes near-miss JSON syntax in a single pass that tracks string
// boundaries, so string contents are never rewritten (apart from dropping raw
// control characters, which strict JSON forbids inside strings).
//
// Outside strings it:
//   - drops a comma that directly precedes '}' or ']'
//   - drops control characters other than JSON whitespace
//   - rewrites a member value of exactly `number * number` into the rounded product
//   - drops a parenthetical note directly after a numeric member value
//
// The two value rewrites only fire right after a ':' and only when the value is
// immediately followed by ',', '}' or ']'.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			if isControl(c) {
				continue
			}
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '"':
			inString = true
		case c == ',' && closesNext(s, i+1):
			continue
		case c == ':':
			b.WriteByte(c)
			if lit, next, ok := rewriteValue(s, i+1); ok {
				b.WriteString(lit)
				i = next - 1
			}
			continue
		case isControl(c) && !isSpace(c):
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// rewriteValue inspects the member value starting at pos. It returns the
// replacement text and the index just past the consumed input.
func rewriteValue(s string, pos int) (string, int, bool) {
	start := skipSpace(s, pos)
	a, afterA, ok := scanNumber(s, start)
	if !ok {
		return "", 0, false
	}
	lead := s[pos:start]

	i := skipSpace(s, afterA)
	if i >= len(s) {
		return "", 0, false
	}

	switch s[i] {
	case '*':
		j := skipSpace(s, i+1)
		bv, afterB, ok := scanNumber(s, j)
		if !ok || !separatorAt(s, skipSpace(s, afterB)) {
			return "", 0, false
		}
		// Halves round toward +Inf, so -4.5 becomes -4.
		product := math.Floor(a*bv + 0.5)
		if math.IsInf(product, 0) || math.IsNaN(product) {
			return "", 0, false
		}
		return lead + strconv.FormatFloat(product, 'f', -1, 64), afterB, true

	case '(':
		closing := -1
		for j := i + 1; j < len(s); j++ {
			if s[j] == ')' {
				closing = j
				break
			}
			if s[j] == '(' || s[j] == '"' || s[j] == '\n' {
				break
			}
		}
		if closing < 0 || !separatorAt(s, skipSpace(s, closing+1)) {
			return "", 0, false
		}
		return s[pos:afterA], closing + 1, true
	}
	return "", 0, false
}

// scanNumber reads a JSON number literal at pos.
func scanNumber(s string, pos int) (float64, int, bool) {
	i := pos
	if i < len(s) && s[i] == '-' {
		i++
	}
	digits := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digits {
		return 0, 0, false
	}
	if i < len(s) && s[i] == '.' {
		i++
		frac := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == frac {
			return 0, 0, false
		}
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == exp {
			return 0, 0, false
		}
	}

	v, err := strconv.ParseFloat(s[pos:i], 64)
	if err != nil {
		return 0, 0, false
	}
	return v, i, true
}

// closesNext reports whether the next significant byte at or after pos closes
// an object or array.
func closesNext(s string, pos int) bool {
	for i := pos; i < len(s); i++ {
		if isControl(s[i]) || s[i] == ' ' {
			continue
		}
		return s[i] == '}' || s[i] == ']'
	}
	return false
}

func separatorAt(s string, i int) bool {
	return i < len(s) && (s[i] == ',' || s[i] == '}' || s[i] == ']')
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isControl(c byte) bool {
	return c < 0x20 || c == 0x7f
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

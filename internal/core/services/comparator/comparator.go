// Package comparator implements type-aware equality between an actual
// execution output and an authored expected token.
package comparator

import (
	"strconv"
	"strings"

	"gitlab.com/assess-2025.net/internal/domain"
)

// Equal judges one actual output against one expected token. When both sides
// parse as numbers the comparison is numeric, so "4", "4.0" and 4 all agree.
// Otherwise the comparison is trimmed, case-sensitive text. Authored test
// data is trusted; no sanitization happens here. Equal is total and never
// panics for any pair of inputs.
func Equal(actual string, expected domain.Token) bool {
	trimmed := strings.TrimSpace(actual)
	if expected.IsNumber {
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return n == expected.Number
		}
		return false
	}
	return trimmed == strings.TrimSpace(expected.Text)
}

// EqualRaw is Equal over two raw strings, coercing the expected side first.
func EqualRaw(actual, expected string) bool {
	return Equal(actual, domain.NewToken(expected))
}

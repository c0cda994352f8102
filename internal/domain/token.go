package domain

import (
	"strconv"
	"strings"
)

// Token is one test case input or expected-output value. Authored values are
// plain strings; a token that parses as a number is pre-coerced so backends
// and the comparator can treat it numerically.
type Token struct {
	Text     string
	Number   float64
	IsNumber bool
}

// NewToken coerces a raw authored string into a token.
func NewToken(raw string) Token {
	trimmed := strings.TrimSpace(raw)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Token{Text: raw, Number: n, IsNumber: true}
	}
	return Token{Text: raw}
}

// Tokenize coerces a test case's input values.
func Tokenize(raw []string) []Token {
	tokens := make([]Token, 0, len(raw))
	for _, r := range raw {
		tokens = append(tokens, NewToken(r))
	}
	return tokens
}

// Literal renders the token as a source-level literal for harness code:
// numbers bare, text as a quoted string.
func (t Token) Literal() string {
	if t.IsNumber {
		return strconv.FormatFloat(t.Number, 'f', -1, 64)
	}
	return strconv.Quote(t.Text)
}

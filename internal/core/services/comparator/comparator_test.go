package comparator

import (
	"testing"

	"gitlab.com/assess-2025.net/internal/domain"
)

func TestEqual(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		actual   string
		expected string
		want     bool
	}{
		{name: "integer text vs number", actual: "4", expected: "4", want: true},
		{name: "float form vs integer form", actual: "4.0", expected: "4", want: true},
		{name: "integer form vs float form", actual: "4", expected: "4.0", want: true},
		{name: "fractional match", actual: "2.5", expected: "2.50", want: true},
		{name: "numeric mismatch", actual: "4", expected: "5", want: false},
		{name: "text match", actual: "abc", expected: "abc", want: true},
		{name: "text mismatch", actual: "abc", expected: "abd", want: false},
		{name: "case sensitive", actual: "ABC", expected: "abc", want: false},
		{name: "whitespace normalized", actual: "  hello \n", expected: "hello", want: true},
		{name: "text vs number", actual: "abc", expected: "4", want: false},
		{name: "number vs text", actual: "4", expected: "abc", want: false},
		{name: "empty both", actual: "", expected: "", want: true},
		{name: "negative numbers", actual: "-0.5", expected: "-.5", want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EqualRaw(tt.actual, tt.expected); got != tt.want {
				t.Errorf("EqualRaw(%q, %q) = %v, want %v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

func TestEqualExpectedTokenReuse(t *testing.T) {
	t.Parallel()
	tok := domain.NewToken("10")
	if !Equal("10.000", tok) {
		t.Errorf("Equal(10.000, 10) = false, want true")
	}
	if Equal("10x", tok) {
		t.Errorf("Equal(10x, 10) = true, want false")
	}
}

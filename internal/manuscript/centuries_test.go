package manuscript

import (
	"testing"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

func TestParseCenturies(t *testing.T) {
	tests := []struct {
		input string
		want  [2]int
	}{
		{"11th century", [2]int{11, 11}},
		{"11th to 13th century", [2]int{11, 13}},
		{"1st century", [2]int{1, 1}},
		{"  9th   to 10th century ", [2]int{9, 10}},
		{"20th", [2]int{20, 20}},
		{"3rd-4th century", [2]int{3, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCenturies(tt.input)
			if err != nil {
				t.Fatalf("ParseCenturies failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCenturies(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCenturies_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "unknown century", "11th to late century", "13th to 11th century", "0th century"} {
		if _, err := ParseCenturies(in); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("ParseCenturies(%q) = %v, want INVALID_INPUT", in, err)
		}
	}
}

func TestFormatCenturies(t *testing.T) {
	tests := []struct {
		in   [2]int
		want string
	}{
		{[2]int{11, 11}, "11th century"},
		{[2]int{11, 13}, "11th to 13th century"},
		{[2]int{1, 2}, "1st to 2nd century"},
		{[2]int{3, 3}, "3rd century"},
		{[2]int{21, 22}, "21st to 22nd century"},
		{[2]int{12, 12}, "12th century"},
	}

	for _, tt := range tests {
		if got := FormatCenturies(tt.in); got != tt.want {
			t.Errorf("FormatCenturies(%v) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := ParseCenturies(FormatCenturies(tt.in))
		if err != nil || back != tt.in {
			t.Errorf("round trip %v = %v, %v", tt.in, back, err)
		}
	}
}

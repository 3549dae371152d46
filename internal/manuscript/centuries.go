package manuscript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	errs "github.com/ironsheep/glyptodon/internal/errors"
)

// DefaultCenturies is the range offered for a manuscript without a date.
var DefaultCenturies = [2]int{1, 20}

var digitRun = regexp.MustCompile(`[0-9]+`)

// ParseCenturies converts the free-text Centuries value into a range.
//
//	"11th century"         -> [11, 11]
//	"11th to 13th century" -> [11, 13]
//
// The start is the first numeric run of the first word. For texts of three or
// more words the end comes from the third word, otherwise it equals the start.
func ParseCenturies(s string) ([2]int, error) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return [2]int{}, errs.New(errs.ErrCodeInvalidInput, KeyCenturies, "centuries value is empty")
	}

	start, err := centuryNumber(words[0], s)
	if err != nil {
		return [2]int{}, err
	}
	end := start
	if len(words) >= 3 {
		if end, err = centuryNumber(words[2], s); err != nil {
			return [2]int{}, err
		}
	}

	if end < start {
		return [2]int{}, errs.New(errs.ErrCodeInvalidInput, KeyCenturies, "century range %q ends before it starts", s)
	}
	return [2]int{start, end}, nil
}

func centuryNumber(word, whole string) (int, error) {
	digits := digitRun.FindString(word)
	if digits == "" {
		return 0, errs.New(errs.ErrCodeInvalidInput, KeyCenturies, "no century number in %q", whole)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, errs.New(errs.ErrCodeInvalidInput, KeyCenturies, "invalid century number in %q", whole)
	}
	return n, nil
}

// FormatCenturies renders a range in the form ParseCenturies reads.
func FormatCenturies(r [2]int) string {
	if r[0] == r[1] {
		return fmt.Sprintf("%s century", ordinal(r[0]))
	}
	return fmt.Sprintf("%s to %s century", ordinal(r[0]), ordinal(r[1]))
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// Package preprocess normalizes raw input sentences and extracts the numeric
// literals every later stage keys on.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Text is the normalized form of a request sentence.
type Text struct {
	Cleaned    string
	TokenCount int
}

// Message describes the normalization for the run report.
func (t Text) Message() string {
	return fmt.Sprintf("Input tokenized: %d tokens found and normalized", t.TokenCount)
}

// Normalize collapses every whitespace run to a single space and trims the ends.
// It is total and idempotent.
func Normalize(text string) Text {
	fields := strings.Fields(text)
	return Text{
		Cleaned:    strings.Join(fields, " "),
		TokenCount: len(fields),
	}
}

// IsBlank reports whether text has no non-whitespace content.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// GraphemeCount returns the number of user-perceived characters in text.
// Kannada syllables are often several code points, so limits use this.
func GraphemeCount(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// Decimal digit blocks recognised in addition to ASCII, keyed by the code
// point of their zero.
var digitZeros = []rune{
	'0',
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
}

func digitValue(r rune) (int, bool) {
	for _, zero := range digitZeros {
		if r >= zero && r <= zero+9 {
			return int(r - zero), true
		}
	}
	return 0, false
}

// ExtractNumbers returns every maximal run of decimal digits in text, in order
// of appearance, as ASCII digits without leading zeros. Runs are kept at any
// length; callers that do arithmetic on them use math/big.
func ExtractNumbers(text string) []string {
	var (
		nums []string
		run  strings.Builder
		in   bool
	)
	flush := func() {
		if in {
			digits := strings.TrimLeft(run.String(), "0")
			if digits == "" {
				digits = "0"
			}
			nums = append(nums, digits)
		}
		run.Reset()
		in = false
	}
	for _, r := range text {
		d, ok := digitValue(r)
		if !ok {
			flush()
			continue
		}
		in = true
		run.WriteByte(byte('0' + d))
	}
	flush()
	return nums
}

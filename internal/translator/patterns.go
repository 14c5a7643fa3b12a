package translator

import (
	"fmt"
	"strings"

	"github.com/oukeidos/codelex/internal/preprocess"
)

// keywordRule maps a source-language keyword onto its pivot meaning.
type keywordRule struct {
	ID     string
	Source string
	Pivot  string
}

// Keyword tables per source language, scanned in order.
var keywordTables = map[string][]keywordRule{
	"kn": {
		{ID: "print", Source: "ಮುದ್ರಿಸಿ", Pivot: "print"},
		{ID: "numbers", Source: "ಸಂಖ್ಯೆಗಳನ್ನು", Pivot: "numbers"},
		{ID: "from", Source: "ರಿಂದ", Pivot: "from"},
		{ID: "to", Source: "ರವರೆಗೆ", Pivot: "to"},
		{ID: "even", Source: "ಸಮ", Pivot: "even"},
		{ID: "sum", Source: "ಮೊತ್ತ", Pivot: "sum"},
		{ID: "calculate", Source: "ಲೆಕ್ಕ", Pivot: "calculate"},
	},
}

// HasPatterns reports whether a keyword table exists for lang.
func HasPatterns(lang string) bool {
	_, ok := keywordTables[lang]
	return ok
}

// MatchPattern rebuilds a pivot sentence from keywords and numbers when no
// translation provider answered. It returns the pivot text and the IDs of the
// keywords it found. Text it cannot interpret is returned unchanged.
func MatchPattern(text, lang string) (string, []string) {
	var detected []string
	found := make(map[string]bool)
	for _, rule := range keywordTables[lang] {
		if strings.Contains(text, rule.Source) {
			detected = append(detected, rule.ID)
			found[rule.ID] = true
		}
	}

	nums := preprocess.ExtractNumbers(text)
	if !found["print"] {
		return text, detected
	}
	if len(nums) < 2 {
		return "print numbers", detected
	}

	from, to := nums[0], nums[1]
	switch {
	case found["even"]:
		return fmt.Sprintf("print even numbers from %s to %s", from, to), detected
	case found["sum"] || found["calculate"]:
		return fmt.Sprintf("calculate sum of numbers from %s to %s", from, to), detected
	default:
		return fmt.Sprintf("print numbers from %s to %s", from, to), detected
	}
}

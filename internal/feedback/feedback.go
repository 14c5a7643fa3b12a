// Package feedback produces short static review notes for a generated program.
package feedback

import "strings"

const (
	Message = "AI feedback generated"

	LoopWithRange   = "✓ Good use of for loop with range() function"
	Conditional     = "✓ Conditional logic implemented correctly"
	HasFunction     = "✓ Code organized into a function"
	SuggestFunction = "💡 Consider organizing code into functions for better reusability"
	HasOutput       = "✓ Output statements included"
	SuggestComments = "💡 Add comments to explain your code logic"
	Generic         = "Code generated successfully! Review and test the output."
)

// Analyze scans code with fixed substring checks and returns the notes in a
// stable order. It never returns an empty slice. The checks currently read
// code only; pivot is the sentence the program was generated from.
func Analyze(code []string, pivot string) []string {
	joined := strings.Join(code, "\n")
	lines := len(code)

	var notes []string
	if strings.Contains(joined, "for") && strings.Contains(joined, "range") {
		notes = append(notes, LoopWithRange)
	}
	if strings.Contains(joined, "if") {
		notes = append(notes, Conditional)
	}
	if strings.Contains(joined, "def") {
		notes = append(notes, HasFunction)
	} else if lines > 3 {
		notes = append(notes, SuggestFunction)
	}
	if strings.Contains(joined, "print") {
		notes = append(notes, HasOutput)
	}
	if !strings.Contains(joined, "#") && lines > 2 {
		notes = append(notes, SuggestComments)
	}
	if len(notes) == 0 {
		notes = append(notes, Generic)
	}
	return notes
}

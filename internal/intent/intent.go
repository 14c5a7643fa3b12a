// Package intent classifies a pivot-language sentence into one of a fixed set
// of program shapes and extracts the parameters those shapes need.
//
// The same Intent value feeds both the pseudo-code and the Python renderers,
// so the two can never disagree about what was asked for.
package intent

import (
	"regexp"
	"strings"

	"github.com/oukeidos/codelex/internal/preprocess"
)

type Kind string

const (
	KindIterate   Kind = "iterate"
	KindSum       Kind = "sum"
	KindFibonacci Kind = "fibonacci"
	KindFactorial Kind = "factorial"
	KindPrint     Kind = "print"
	KindAssign    Kind = "assign"
	KindUnknown   Kind = "unknown"
)

const (
	DefaultFibonacciCount   = "10"
	DefaultFactorialOperand = "5"
)

// Params holds everything a renderer needs for a kind.
type Params struct {
	// Numbers lists every number in the sentence in order of appearance,
	// as decimal digit strings of any length.
	Numbers []string
	// N is the resolved scalar for Fibonacci (count), Factorial (operand)
	// and Assign (value).
	N          string
	Even       bool
	Odd        bool
	HelloWorld bool
	Variable   string
}

type Intent struct {
	Kind   Kind
	Params Params
}

// Range returns the inclusive bounds of an Iterate or Sum intent.
// ok is false for a generic Sum that carries no numbers.
func (in Intent) Range() (from, to string, ok bool) {
	if len(in.Params.Numbers) < 2 {
		return "", "", false
	}
	return in.Params.Numbers[0], in.Params.Numbers[1], true
}

var (
	sumNouns     = []string{"sum", "total", "amount"}
	sumVerbs     = []string{"calculate", "find", "compute"}
	iterateWords = []string{"loop", "iterate", "repeat", "from", "to", "print numbers", "numbers from"}
	evenWords    = []string{"even", "equal"}
	oddWords     = []string{"odd"}
	printWords   = []string{"print", "display", "show"}
	helloWords   = []string{"hello", "world"}
	assignWords  = []string{"assign", "store", "variable"}
	singleLetter = regexp.MustCompile(`\b([A-Za-z])\b`)
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// Classify applies the rules in fixed precedence; the first match wins.
// It is pure and never fails: anything unrecognised is KindUnknown.
func Classify(pivot string) Intent {
	lower := strings.ToLower(pivot)
	nums := preprocess.ExtractNumbers(pivot)
	params := Params{Numbers: nums}

	if containsAny(lower, sumNouns) && containsAny(lower, sumVerbs) {
		if len(nums) < 2 {
			params.Numbers = nil
		}
		return Intent{Kind: KindSum, Params: params}
	}

	if containsAny(lower, iterateWords) && len(nums) >= 2 {
		if containsAny(lower, evenWords) {
			params.Even = true
		} else if containsAny(lower, oddWords) {
			params.Odd = true
		}
		return Intent{Kind: KindIterate, Params: params}
	}

	if strings.Contains(lower, "fibonacci") {
		params.N = firstOr(nums, DefaultFibonacciCount)
		return Intent{Kind: KindFibonacci, Params: params}
	}

	if strings.Contains(lower, "factorial") {
		params.N = firstOr(nums, DefaultFactorialOperand)
		return Intent{Kind: KindFactorial, Params: params}
	}

	if containsAny(lower, printWords) {
		params.HelloWorld = containsAny(lower, helloWords)
		return Intent{Kind: KindPrint, Params: params}
	}

	if containsAny(lower, assignWords) {
		m := singleLetter.FindStringSubmatch(pivot)
		if m != nil && len(nums) > 0 {
			params.Variable = m[1]
			params.N = nums[0]
			return Intent{Kind: KindAssign, Params: params}
		}
	}

	return Intent{Kind: KindUnknown, Params: Params{Numbers: nums}}
}

func firstOr(nums []string, def string) string {
	if len(nums) > 0 {
		return nums[0]
	}
	return def
}

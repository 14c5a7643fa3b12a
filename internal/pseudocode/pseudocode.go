// Package pseudocode renders an intent as language-neutral structured steps.
package pseudocode

import (
	"fmt"
	"strings"

	"github.com/oukeidos/codelex/internal/intent"
)

const indent = "    "

// Message is reported for every rendering; the stage cannot fail.
const Message = "Structured pseudo-code generated successfully"

// Render returns the pseudo-code lines for in. Nested lines carry four spaces
// per level. Render is total over every kind.
func Render(in intent.Intent) []string {
	p := in.Params
	switch in.Kind {
	case intent.KindIterate:
		from, to, _ := in.Range()
		lines := []string{fmt.Sprintf("FOR i FROM %s TO %s", from, to)}
		switch {
		case p.Even:
			lines = append(lines, indent+"IF i MOD 2 EQUALS 0 THEN", indent+indent+"PRINT i", indent+"END IF")
		case p.Odd:
			lines = append(lines, indent+"IF i MOD 2 NOT EQUALS 0 THEN", indent+indent+"PRINT i", indent+"END IF")
		default:
			lines = append(lines, indent+"PRINT i")
		}
		return append(lines, "END FOR")

	case intent.KindSum:
		from, to, ok := in.Range()
		if !ok {
			return []string{"SET total = 0", indent + "PROCESS input", "PRINT total"}
		}
		return []string{
			"SET sum = 0",
			fmt.Sprintf("FOR i FROM %s TO %s", from, to),
			indent + "SET sum = sum + i",
			"END FOR",
			"PRINT sum",
		}

	case intent.KindFibonacci:
		return []string{
			"SET a = 0, b = 1",
			"PRINT a, b",
			fmt.Sprintf("FOR i FROM 3 TO %s", p.N),
			indent + "SET c = a + b",
			indent + "PRINT c",
			indent + "SET a = b, b = c",
			"END FOR",
		}

	case intent.KindFactorial:
		return []string{
			"SET factorial = 1",
			fmt.Sprintf("FOR i FROM 1 TO %s", p.N),
			indent + "SET factorial = factorial * i",
			"END FOR",
			"PRINT factorial",
		}

	case intent.KindPrint:
		if p.HelloWorld {
			return []string{`PRINT "Hello, World!"`}
		}
		return []string{"PRINT output"}

	case intent.KindAssign:
		return []string{fmt.Sprintf("SET %s = %s", p.Variable, p.N)}
	}

	return []string{"BEGIN", indent + "PROCESS input", indent + "GENERATE output", "END"}
}

// Join renders lines the way they travel on the wire.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

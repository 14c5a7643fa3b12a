// Package codegen turns a classified intent into a Python program, using
// fixed templates for recognised shapes and a learned model for the rest.
package codegen

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/intent"
	"github.com/oukeidos/codelex/internal/logger"
)

// Provenance records which path produced a program.
type Provenance string

const (
	ProvenanceTemplate      Provenance = "template"
	ProvenanceModelFallback Provenance = "modelFallback"
	ProvenancePlaceholder   Provenance = "placeholder"
)

const (
	MessageGenerated = "Python code generated successfully"
	MessageRejected  = "Model output not recognised as code - using placeholder"
	MessageFailed    = "Code generation failed - using placeholder"
)

// Code is the generated program.
type Code struct {
	Lines      []string
	Provenance Provenance
	Message    string
}

// String joins the program lines with newlines.
func (c Code) String() string {
	return strings.Join(c.Lines, "\n")
}

// Model is the learned generator consulted for unrecognised intents.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	placeholderLines = []string{"# Generated code", "print('Result')"}
	pendingLines     = []string{"# Code generation in progress", "print('Result')"}

	// Model output is accepted when any of these appear.
	codeMarkers = []string{"for", "if", "while", "def", "print", "="}
)

// Generator renders programs. The zero value has no model and sends every
// unknown intent to the error placeholder.
type Generator struct {
	model Model
	log   *slog.Logger
}

func NewGenerator(model Model) *Generator {
	return &Generator{model: model, log: logger.Default()}
}

// WithLogger returns a copy of g that logs through l.
func (g *Generator) WithLogger(l *slog.Logger) *Generator {
	cp := *g
	cp.log = l
	return &cp
}

// Generate never fails: template kinds render directly, Unknown goes to the
// model, and model trouble ends in a placeholder.
func (g *Generator) Generate(ctx context.Context, pivot string, in intent.Intent) Code {
	if lines, ok := Template(in); ok {
		return Code{Lines: lines, Provenance: ProvenanceTemplate, Message: MessageGenerated}
	}
	return g.fromModel(ctx, pivot)
}

func (g *Generator) fromModel(ctx context.Context, pivot string) Code {
	log := g.log
	if log == nil {
		log = logger.Default()
	}
	if g.model == nil {
		log.Warn("No code model configured, using placeholder")
		return Code{Lines: pending(), Provenance: ProvenancePlaceholder, Message: MessageFailed}
	}

	out, err := g.model.Generate(ctx, pivot)
	if err != nil {
		kind, _ := apperrors.KindOf(err)
		log.Warn("Code model failed, using placeholder",
			"kind", kind,
			"retryable", apperrors.IsRetryable(err),
			"error", apperrors.PublicMessage(err),
		)
		return Code{Lines: pending(), Provenance: ProvenancePlaceholder, Message: MessageFailed}
	}
	if !looksLikeCode(out) {
		log.Info("Code model output rejected", "chars", len(out))
		return Code{Lines: placeholder(), Provenance: ProvenancePlaceholder, Message: MessageRejected}
	}
	return Code{Lines: strings.Split(out, "\n"), Provenance: ProvenanceModelFallback, Message: MessageGenerated}
}

func looksLikeCode(s string) bool {
	for _, m := range codeMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func placeholder() []string { return append([]string(nil), placeholderLines...) }
func pending() []string     { return append([]string(nil), pendingLines...) }

// Template returns the fixed program for in. ok is false for KindUnknown.
func Template(in intent.Intent) (lines []string, ok bool) {
	p := in.Params
	switch in.Kind {
	case intent.KindIterate:
		from, to, _ := in.Range()
		lines = []string{fmt.Sprintf("for i in range(%s, %s):", from, exclusiveEnd(to))}
		switch {
		case p.Even:
			lines = append(lines, "    if i % 2 == 0:", "        print(i)")
		case p.Odd:
			lines = append(lines, "    if i % 2 != 0:", "        print(i)")
		default:
			lines = append(lines, "    print(i)")
		}
		return lines, true

	case intent.KindSum:
		from, to, bounded := in.Range()
		if !bounded {
			return []string{"total = 0", "# Add your numbers here", "print(total)"}, true
		}
		return []string{
			"sum = 0",
			fmt.Sprintf("for i in range(%s, %s):", from, exclusiveEnd(to)),
			"    sum += i",
			"print(sum)",
		}, true

	case intent.KindFibonacci:
		return []string{
			"a, b = 0, 1",
			"print(a, b)",
			fmt.Sprintf("for i in range(3, %s):", exclusiveEnd(p.N)),
			"    c = a + b",
			"    print(c)",
			"    a, b = b, c",
		}, true

	case intent.KindFactorial:
		return []string{
			"factorial = 1",
			fmt.Sprintf("for i in range(1, %s):", exclusiveEnd(p.N)),
			"    factorial *= i",
			"print(factorial)",
		}, true

	case intent.KindPrint:
		if p.HelloWorld {
			return []string{`print("Hello, World!")`}, true
		}
		return []string{`print("Output")`}, true

	case intent.KindAssign:
		return []string{fmt.Sprintf("%s = %s", p.Variable, p.N)}, true
	}
	return nil, false
}

// exclusiveEnd turns an inclusive decimal bound into range()'s stop value.
// Bounds can exceed any machine integer.
func exclusiveEnd(bound string) string {
	n, ok := new(big.Int).SetString(bound, 10)
	if !ok {
		return bound + " + 1"
	}
	return n.Add(n, big.NewInt(1)).String()
}

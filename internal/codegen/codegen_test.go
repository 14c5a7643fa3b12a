package codegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/intent"
)

type stubModel struct {
	out     string
	err     error
	prompts []string
}

func (s *stubModel) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.out, s.err
}

func TestGenerate_Templates(t *testing.T) {
	tests := []struct {
		name  string
		pivot string
		want  []string
	}{
		{
			name:  "sum 1 to 10",
			pivot: "calculate sum of numbers from 1 to 10",
			want:  []string{"sum = 0", "for i in range(1, 11):", "    sum += i", "print(sum)"},
		},
		{
			name:  "generic sum",
			pivot: "compute the total",
			want:  []string{"total = 0", "# Add your numbers here", "print(total)"},
		},
		{
			name:  "iterate",
			pivot: "print numbers from 1 to 10",
			want:  []string{"for i in range(1, 11):", "    print(i)"},
		},
		{
			name:  "iterate even",
			pivot: "print even numbers from 1 to 20",
			want:  []string{"for i in range(1, 21):", "    if i % 2 == 0:", "        print(i)"},
		},
		{
			name:  "iterate odd",
			pivot: "print odd numbers from 1 to 20",
			want:  []string{"for i in range(1, 21):", "    if i % 2 != 0:", "        print(i)"},
		},
		{
			name:  "fibonacci default",
			pivot: "fibonacci series",
			want: []string{
				"a, b = 0, 1",
				"print(a, b)",
				"for i in range(3, 11):",
				"    c = a + b",
				"    print(c)",
				"    a, b = b, c",
			},
		},
		{
			name:  "factorial default",
			pivot: "factorial",
			want:  []string{"factorial = 1", "for i in range(1, 6):", "    factorial *= i", "print(factorial)"},
		},
		{
			name:  "iterate to max int",
			pivot: "print numbers from 1 to 9223372036854775807",
			want:  []string{"for i in range(1, 9223372036854775808):", "    print(i)"},
		},
		{
			name:  "sum wider than int",
			pivot: "calculate sum of numbers from 1 to 99999999999999999999 and 5",
			want:  []string{"sum = 0", "for i in range(1, 100000000000000000000):", "    sum += i", "print(sum)"},
		},
		{
			name:  "factorial of max int",
			pivot: "factorial of 9223372036854775807",
			want:  []string{"factorial = 1", "for i in range(1, 9223372036854775808):", "    factorial *= i", "print(factorial)"},
		},
		{
			name:  "assign wide literal",
			pivot: "assign x = 123456789012345678901234567890",
			want:  []string{"x = 123456789012345678901234567890"},
		},
		{
			name:  "hello world",
			pivot: "print hello world",
			want:  []string{`print("Hello, World!")`},
		},
		{
			name:  "print",
			pivot: "show something",
			want:  []string{`print("Output")`},
		},
		{
			name:  "assign",
			pivot: "assign x = 5",
			want:  []string{"x = 5"},
		},
	}
	model := &stubModel{out: "should not be used"}
	g := NewGenerator(model)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Generate(context.Background(), tt.pivot, intent.Classify(tt.pivot))
			if diff := cmp.Diff(tt.want, got.Lines); diff != "" {
				t.Fatalf("Generate(%q) mismatch (-want +got):\n%s", tt.pivot, diff)
			}
			if got.Provenance != ProvenanceTemplate || got.Message != MessageGenerated {
				t.Fatalf("unexpected provenance/message: %s / %s", got.Provenance, got.Message)
			}
		})
	}
	if len(model.prompts) != 0 {
		t.Fatalf("model consulted for template intents: %v", model.prompts)
	}
}

func TestGenerate_ModelFallback(t *testing.T) {
	const pivot = "reverse a string"
	tests := []struct {
		name  string
		model *stubModel
		want  Code
	}{
		{
			name:  "accepted",
			model: &stubModel{out: "s = 'abc'\nprint(s[::-1])"},
			want: Code{
				Lines:      []string{"s = 'abc'", "print(s[::-1])"},
				Provenance: ProvenanceModelFallback,
				Message:    MessageGenerated,
			},
		},
		{
			name:  "rejected",
			model: &stubModel{out: "cba"},
			want: Code{
				Lines:      []string{"# Generated code", "print('Result')"},
				Provenance: ProvenancePlaceholder,
				Message:    MessageRejected,
			},
		},
		{
			name:  "error",
			model: &stubModel{err: apperrors.Transient(errors.New("timeout"))},
			want: Code{
				Lines:      []string{"# Code generation in progress", "print('Result')"},
				Provenance: ProvenancePlaceholder,
				Message:    MessageFailed,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGenerator(tt.model).Generate(context.Background(), pivot, intent.Classify(pivot))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
			if len(tt.model.prompts) != 1 || tt.model.prompts[0] != pivot {
				t.Fatalf("expected pivot text as prompt, got %v", tt.model.prompts)
			}
		})
	}
}

func TestGenerate_NilModel(t *testing.T) {
	got := (&Generator{}).Generate(context.Background(), "reverse a string", intent.Intent{Kind: intent.KindUnknown})
	if got.Provenance != ProvenancePlaceholder || got.String() != "# Code generation in progress\nprint('Result')" {
		t.Fatalf("unexpected code %+v", got)
	}
}

func TestPlaceholderNotShared(t *testing.T) {
	first := NewGenerator(&stubModel{out: "zzz"}).Generate(context.Background(), "x", intent.Intent{Kind: intent.KindUnknown})
	first.Lines[0] = "mutated"
	second := NewGenerator(&stubModel{out: "zzz"}).Generate(context.Background(), "x", intent.Intent{Kind: intent.KindUnknown})
	if second.Lines[0] != "# Generated code" {
		t.Fatalf("placeholder lines shared between calls")
	}
}

func TestGenerate_ModelFailureLogsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "transient", err: apperrors.Transient(errors.New("deadline exceeded")), want: true},
		{name: "validation", err: apperrors.Validation(errors.New("blocked")), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			g := NewGenerator(&stubModel{err: tt.err}).WithLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
			got := g.Generate(context.Background(), "reverse a string", intent.Intent{Kind: intent.KindUnknown})
			if got.Message != MessageFailed {
				t.Fatalf("Message = %q", got.Message)
			}
			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log is not one JSON record: %v\n%s", err, buf.String())
			}
			if entry["retryable"] != tt.want {
				t.Fatalf("retryable = %v, want %v", entry["retryable"], tt.want)
			}
		})
	}
}

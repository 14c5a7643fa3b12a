package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/oukeidos/codelex/internal/language"
)

// TextGenerator is a chat model that answers a prompt with plain text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// LLMProvider translates by prompting a general-purpose model.
type LLMProvider struct {
	name string
	gen  TextGenerator
}

// NewLLMProvider wraps gen; name identifies the backend in logs and results.
func NewLLMProvider(name string, gen TextGenerator) *LLMProvider {
	return &LLMProvider{name: name, gen: gen}
}

func (p *LLMProvider) Name() string { return p.name }

func (p *LLMProvider) Translate(ctx context.Context, text, source, target string) (string, error) {
	out, err := p.gen.Generate(ctx, TranslationPrompt(text, source, target))
	if err != nil {
		return "", err
	}
	// Models sometimes echo a label or wrap the answer in quotes.
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "Translation:")
	out = strings.Trim(strings.TrimSpace(out), "\"'")
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
	}
	return strings.TrimSpace(out), nil
}

// TranslationPrompt builds the instruction sent to the model.
func TranslationPrompt(text, source, target string) string {
	srcName, tgtName := source, target
	if l, ok := language.GetLanguage(source); ok {
		srcName = l.Name
	}
	if l, ok := language.GetLanguage(target); ok {
		tgtName = l.Name
	}
	return fmt.Sprintf(`Translate the following %s programming instruction into %s.
Keep every number exactly as written. Reply with the translated sentence only, on one line.

%s`, srcName, tgtName, text)
}

// Package translator turns a source-language sentence into the pivot language,
// falling back to keyword patterns when the provider is unreachable.
package translator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/language"
	"github.com/oukeidos/codelex/internal/logger"
)

const (
	MessageFallback      = "Translation unavailable - using pattern detection"
	MessageAlreadyPivot  = "Input already in English"
	DefaultCallTimeout   = 15 * time.Second
	fallbackProviderName = "patterns"
)

// ErrNoProvider is returned by the "none" provider so every run takes the
// pattern path.
var ErrNoProvider = errors.New("no translation provider configured")

// Provider performs one machine translation call.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Result is the outcome of one translation.
type Result struct {
	PivotText    string
	UsedFallback bool
	Provider     string
	Message      string
	// Detected lists pattern keyword IDs found on the fallback path.
	Detected []string
}

// Translator calls its provider once and never fails.
type Translator struct {
	provider Provider
	timeout  time.Duration
	log      *slog.Logger
}

// New returns a Translator. A nil provider behaves like the "none" provider.
// timeout bounds each provider call; zero means DefaultCallTimeout.
func New(provider Provider, timeout time.Duration) *Translator {
	if provider == nil {
		provider = NoneProvider{}
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Translator{provider: provider, timeout: timeout, log: logger.Default()}
}

// WithLogger returns a copy of t that logs through l.
func (t *Translator) WithLogger(l *slog.Logger) *Translator {
	cp := *t
	cp.log = l
	return &cp
}

// Translate renders text in the pivot language.
func (t *Translator) Translate(ctx context.Context, text, sourceLang string) Result {
	src := strings.ToLower(strings.TrimSpace(sourceLang))
	if src == "" {
		src = language.DefaultSource
	}
	if src == language.PivotCode {
		return Result{PivotText: text, Provider: "none", Message: MessageAlreadyPivot}
	}

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	out, err := t.provider.Translate(callCtx, text, src, language.PivotCode)
	if err == nil {
		out = strings.TrimSpace(out)
		if out == "" {
			err = apperrors.Validation(fmt.Errorf("%s returned empty translation", t.provider.Name()))
		}
	}
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrNoProvider) {
			level = slog.LevelDebug
		}
		kind, _ := apperrors.KindOf(err)
		t.log.Log(ctx, level, "Translation failed, using pattern detection",
			"provider", t.provider.Name(),
			"kind", kind,
			"retryable", apperrors.IsRetryable(err),
			"patterns", HasPatterns(src),
			"error", apperrors.PublicMessage(err),
		)
		pivot, detected := MatchPattern(text, src)
		return Result{
			PivotText:    pivot,
			UsedFallback: true,
			Provider:     fallbackProviderName,
			Message:      MessageFallback,
			Detected:     detected,
		}
	}

	return Result{
		PivotText: out,
		Provider:  t.provider.Name(),
		Message:   fmt.Sprintf("Translated from %s to English", strings.ToUpper(src)),
	}
}

// NoneProvider always fails so the pattern matcher handles every sentence.
type NoneProvider struct{}

func (NoneProvider) Name() string { return "none" }

func (NoneProvider) Translate(context.Context, string, string, string) (string, error) {
	return "", ErrNoProvider
}

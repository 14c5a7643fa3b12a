package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/oukeidos/codelex/internal/language"
	"github.com/oukeidos/codelex/internal/metadata"
	"github.com/oukeidos/codelex/internal/model"
)

// Translation provider names.
const (
	ProviderGoogle = "google"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Providers lists the accepted translation provider names.
var Providers = []string{ProviderGoogle, ProviderGemini, ProviderNone}

// Config holds everything needed to build a Pipeline.
type Config struct {
	// Default language for requests that do not name one.
	SourceLang string

	// Translation
	TranslationProvider string
	TranslateAPIKey     string
	TranslationModel    string // gemini provider only
	TranslateTimeout    time.Duration

	// Code model
	Backend         model.Backend
	ModelPath       string
	BaseCheckpoint  string
	Endpoint        string
	ModelAPIKey     string
	ModelID         string
	GenerateTimeout time.Duration

	// MaxInputGraphemes bounds the request sentence in user-perceived characters.
	MaxInputGraphemes int
}

const (
	DefaultTranslateTimeout  = 15 * time.Second
	DefaultGenerateTimeout   = 60 * time.Second
	MinTimeout               = time.Second
	MaxTimeout               = 5 * time.Minute
	DefaultMaxInputGraphemes = 500
	MaxInputGraphemesLimit   = 5000
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SourceLang:          language.DefaultSource,
		TranslationProvider: ProviderGoogle,
		TranslationModel:    metadata.DefaultGeminiModel,
		TranslateTimeout:    DefaultTranslateTimeout,
		Backend:             model.BackendLocal,
		ModelPath:           metadata.DefaultModelPath,
		BaseCheckpoint:      metadata.DefaultBaseCheckpoint,
		Endpoint:            metadata.DefaultLocalEndpoint,
		GenerateTimeout:     DefaultGenerateTimeout,
		MaxInputGraphemes:   DefaultMaxInputGraphemes,
	}
}

func clampTimeout(name string, v, def time.Duration, notes *[]string) time.Duration {
	switch {
	case v <= 0:
		return def
	case v < MinTimeout:
		*notes = append(*notes, fmt.Sprintf("%s raised from %s to %s (min %s)", name, v, MinTimeout, MinTimeout))
		return MinTimeout
	case v > MaxTimeout:
		*notes = append(*notes, fmt.Sprintf("%s clamped from %s to %s (max %s)", name, v, MaxTimeout, MaxTimeout))
		return MaxTimeout
	}
	return v
}

// Normalize fills defaults, applies safe bounds and returns any adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if c.SourceLang == "" {
		c.SourceLang = language.DefaultSource
	}
	if c.TranslationProvider == "" {
		c.TranslationProvider = ProviderGoogle
	}
	if c.TranslationModel == "" {
		c.TranslationModel = metadata.DefaultGeminiModel
	}
	if c.Backend == "" {
		c.Backend = model.BackendLocal
	}
	c.TranslateTimeout = clampTimeout("translate-timeout", c.TranslateTimeout, DefaultTranslateTimeout, &notes)
	c.GenerateTimeout = clampTimeout("generate-timeout", c.GenerateTimeout, DefaultGenerateTimeout, &notes)
	if c.MaxInputGraphemes <= 0 {
		c.MaxInputGraphemes = DefaultMaxInputGraphemes
	} else if c.MaxInputGraphemes > MaxInputGraphemesLimit {
		notes = append(notes, fmt.Sprintf("max-input clamped from %d to %d (max %d)", c.MaxInputGraphemes, MaxInputGraphemesLimit, MaxInputGraphemesLimit))
		c.MaxInputGraphemes = MaxInputGraphemesLimit
	}
	return c, notes
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if _, ok := language.Resolve(c.SourceLang); !ok {
		return fmt.Errorf("unsupported source language: %s", c.SourceLang)
	}
	if !slices.Contains(Providers, c.TranslationProvider) {
		return fmt.Errorf("unknown translation provider %q (want one of %v)", c.TranslationProvider, Providers)
	}
	if !slices.Contains(model.Backends, c.Backend) {
		return fmt.Errorf("unknown model backend %q (want one of %v)", c.Backend, model.Backends)
	}
	if c.TranslationProvider == ProviderGemini && c.TranslateAPIKey == "" {
		return fmt.Errorf("gemini translation requires an API key")
	}
	if (c.Backend == model.BackendGemini || c.Backend == model.BackendOpenAI) && c.ModelAPIKey == "" {
		return fmt.Errorf("%s backend requires an API key", c.Backend)
	}
	return nil
}

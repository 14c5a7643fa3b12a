package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/oukeidos/codelex/internal/model"
)

func TestConfigNormalize_Timeouts(t *testing.T) {
	tests := []struct {
		name        string
		in          time.Duration
		want        time.Duration
		wantChanged bool
	}{
		{"zero_uses_default", 0, DefaultTranslateTimeout, false},
		{"below_min", 10 * time.Millisecond, MinTimeout, true},
		{"above_max", MaxTimeout + time.Minute, MaxTimeout, true},
		{"within_range", 30 * time.Second, 30 * time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{TranslateTimeout: tt.in}
			got, notes := cfg.Normalize()
			if got.TranslateTimeout != tt.want {
				t.Fatalf("Normalize() translate timeout = %s, want %s", got.TranslateTimeout, tt.want)
			}
			if tt.wantChanged && len(notes) == 0 {
				t.Fatalf("Normalize() expected notes for clamped value")
			}
			if !tt.wantChanged && len(notes) != 0 {
				t.Fatalf("Normalize() unexpected notes: %v", notes)
			}
		})
	}
}

func TestConfigNormalize_Defaults(t *testing.T) {
	got, _ := Config{MaxInputGraphemes: MaxInputGraphemesLimit * 2}.Normalize()
	if got.SourceLang != "kn" || got.TranslationProvider != ProviderGoogle || got.Backend != model.BackendLocal {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.MaxInputGraphemes != MaxInputGraphemesLimit {
		t.Fatalf("MaxInputGraphemes = %d, want %d", got.MaxInputGraphemes, MaxInputGraphemesLimit)
	}
	if got.GenerateTimeout != DefaultGenerateTimeout {
		t.Fatalf("GenerateTimeout = %s", got.GenerateTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	base, _ := DefaultConfig().Normalize()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"language by name", func(c *Config) { c.SourceLang = "Kannada" }, ""},
		{"unknown language", func(c *Config) { c.SourceLang = "xx" }, "unsupported source language"},
		{"unknown provider", func(c *Config) { c.TranslationProvider = "deepl" }, "unknown translation provider"},
		{"unknown backend", func(c *Config) { c.Backend = "tpu" }, "unknown model backend"},
		{"gemini translation without key", func(c *Config) { c.TranslationProvider = ProviderGemini }, "requires an API key"},
		{"openai backend without key", func(c *Config) { c.Backend = model.BackendOpenAI }, "openai backend requires an API key"},
		{"offline backend", func(c *Config) { c.Backend = model.BackendOffline }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuild_OfflineWithoutProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = model.BackendOffline
	cfg.TranslationProvider = ProviderNone

	p, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer p.Close()

	if !p.ModelLoaded() {
		t.Fatal("offline pipeline should report a loaded model")
	}
	res, err := p.Run(context.Background(), Request{SourceText: "ಮುದ್ರಿಸಿ"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Translation.PivotText != "print numbers" {
		t.Fatalf("pivot = %q, want %q", res.Translation.PivotText, "print numbers")
	}
	if got := res.Response().Code; got != `print("Output")` {
		t.Fatalf("code = %q", got)
	}
}

func TestBuild_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "tpu"
	if _, err := Build(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("Build() error = %v", err)
	}
}

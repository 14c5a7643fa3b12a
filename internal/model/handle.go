// Package model owns the learned code generator. A Handle is built once at
// startup and is read-only afterwards, so concurrent runs share it freely.
package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/gemini"
	"github.com/oukeidos/codelex/internal/logger"
	"github.com/oukeidos/codelex/internal/metadata"
	"github.com/oukeidos/codelex/internal/openai"
)

type Backend string

const (
	// BackendLocal talks to an OpenAI-compatible server hosting the checkpoint.
	BackendLocal  Backend = "local"
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
	// BackendOffline loads a handle whose every generation fails, so unknown
	// intents end in the placeholder program.
	BackendOffline Backend = "offline"
)

// Backends lists the accepted backend names.
var Backends = []Backend{BackendLocal, BackendGemini, BackendOpenAI, BackendOffline}

// SystemInstruction is sent to chat-style backends.
const SystemInstruction = "You convert short English programming instructions into Python 3 programs. " +
	"Reply with the program only: no explanations and no Markdown."

// ErrOffline is returned by every generation on an offline handle.
var ErrOffline = errors.New("code model backend is offline")

type Config struct {
	Backend Backend
	// ModelPath is the fine-tuned checkpoint; BaseCheckpoint is used when it
	// does not exist on disk. Both apply to the local backend only.
	ModelPath      string
	BaseCheckpoint string
	Endpoint       string
	APIKey         string
	// ModelID names the hosted model for gemini and openai.
	ModelID string
}

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Handle is the loaded generator.
type Handle struct {
	backend Backend
	id      string
	gen     generator
	closeFn func() error
}

var statPath = os.Stat

// ResolveCheckpoint returns path when it exists on disk and base otherwise.
// fineTuned reports which one was chosen.
func ResolveCheckpoint(path, base string) (checkpoint string, fineTuned bool) {
	if path != "" {
		if _, err := statPath(path); err == nil {
			return path, true
		}
	}
	if base == "" {
		base = metadata.DefaultBaseCheckpoint
	}
	return base, false
}

// Load builds the handle for cfg. It fails only on configuration problems;
// remote endpoints are not probed.
func Load(ctx context.Context, cfg Config) (*Handle, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		checkpoint, fineTuned := ResolveCheckpoint(cfg.ModelPath, cfg.BaseCheckpoint)
		if fineTuned {
			logger.Info("Using fine-tuned checkpoint", "checkpoint", checkpoint)
		} else {
			logger.Warn("Fine-tuned checkpoint not found, using base checkpoint", "path", cfg.ModelPath, "checkpoint", checkpoint)
		}
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = metadata.DefaultLocalEndpoint
		}
		return &Handle{
			backend: BackendLocal,
			id:      checkpoint,
			gen:     openai.NewCompatibleClient(endpoint, cfg.APIKey, checkpoint),
		}, nil

	case BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend requires an API key")
		}
		id := orDefault(cfg.ModelID, metadata.DefaultGeminiModel)
		client, err := gemini.NewClient(ctx, cfg.APIKey, id)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		client.SetSystemInstruction(SystemInstruction)
		return &Handle{backend: BackendGemini, id: id, gen: client, closeFn: client.Close}, nil

	case BackendOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai backend requires an API key")
		}
		id := orDefault(cfg.ModelID, metadata.DefaultOpenAIModel)
		client := openai.NewClient(cfg.APIKey, id)
		client.SetSystemInstruction(SystemInstruction)
		return &Handle{backend: BackendOpenAI, id: id, gen: client}, nil

	case BackendOffline:
		return &Handle{backend: BackendOffline, id: "offline", gen: offlineGenerator{}}, nil
	}
	return nil, fmt.Errorf("unknown model backend %q", cfg.Backend)
}

// NewHandle wraps an existing generator. Tests and embedders use it to
// inject their own model.
func NewHandle(backend Backend, id string, gen generator) *Handle {
	return &Handle{backend: backend, id: id, gen: gen}
}

// Loaded reports whether h can serve generations. It is nil-safe.
func (h *Handle) Loaded() bool {
	return h != nil && h.gen != nil
}

func (h *Handle) Backend() Backend { return h.backend }

// ID names the checkpoint or hosted model behind h.
func (h *Handle) ID() string { return h.id }

// Generate runs the model on prompt and returns decoded source text with any
// Markdown code fence removed.
func (h *Handle) Generate(ctx context.Context, prompt string) (string, error) {
	if !h.Loaded() {
		return "", apperrors.Unavailable(errors.New("model handle not loaded"))
	}
	out, err := h.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return StripFences(out), nil
}

// Usage reports accumulated token usage for backends that track it.
func (h *Handle) Usage() (gemini.UsageMetadata, bool) {
	if !h.Loaded() {
		return gemini.UsageMetadata{}, false
	}
	u, ok := h.gen.(interface{ Usage() gemini.UsageMetadata })
	if !ok {
		return gemini.UsageMetadata{}, false
	}
	return u.Usage(), true
}

// Close releases backend resources.
func (h *Handle) Close() error {
	if h == nil || h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}

// StripFences removes a surrounding ```lang ... ``` block and trims the text.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

type offlineGenerator struct{}

func (offlineGenerator) Generate(context.Context, string) (string, error) {
	return "", apperrors.New(apperrors.KindTransient, "Code model is offline.", ErrOffline)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Package pipeline runs a sentence through every stage, from normalization to
// feedback, and assembles the per-stage report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/codegen"
	"github.com/oukeidos/codelex/internal/feedback"
	"github.com/oukeidos/codelex/internal/gemini"
	"github.com/oukeidos/codelex/internal/intent"
	"github.com/oukeidos/codelex/internal/language"
	"github.com/oukeidos/codelex/internal/logger"
	"github.com/oukeidos/codelex/internal/metadata"
	"github.com/oukeidos/codelex/internal/model"
	"github.com/oukeidos/codelex/internal/preprocess"
	"github.com/oukeidos/codelex/internal/pseudocode"
	"github.com/oukeidos/codelex/internal/translator"
)

// Request is one sentence to convert.
type Request struct {
	SourceText string
	// SourceLang is a language code or name; empty means the configured default.
	SourceLang string
}

// Pipeline is safe for concurrent use. Its translator and model handle are
// fixed at construction.
type Pipeline struct {
	translator      *translator.Translator
	model           *model.Handle
	generateTimeout time.Duration
	defaultLang     string
	maxGraphemes    int

	// gemini clients owned by the pipeline for usage reporting and Close.
	translationClient *gemini.Client
}

// New assembles a pipeline from already-built parts. cfg supplies limits and
// the default language; it is normalized first.
func New(tr *translator.Translator, handle *model.Handle, cfg Config) *Pipeline {
	cfg, _ = cfg.Normalize()
	if tr == nil {
		tr = translator.New(nil, cfg.TranslateTimeout)
	}
	return &Pipeline{
		translator:      tr,
		model:           handle,
		generateTimeout: cfg.GenerateTimeout,
		defaultLang:     cfg.SourceLang,
		maxGraphemes:    cfg.MaxInputGraphemes,
	}
}

// Build validates cfg, loads the model handle and connects the translation
// provider.
func Build(ctx context.Context, cfg Config) (*Pipeline, error) {
	var notes []string
	cfg, notes = cfg.Normalize()
	for _, note := range notes {
		logger.Warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	handle, err := model.Load(ctx, model.Config{
		Backend:        cfg.Backend,
		ModelPath:      cfg.ModelPath,
		BaseCheckpoint: cfg.BaseCheckpoint,
		Endpoint:       cfg.Endpoint,
		APIKey:         cfg.ModelAPIKey,
		ModelID:        cfg.ModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load code model: %w", err)
	}
	logger.Info("Code model ready", "backend", handle.Backend(), "model", handle.ID())

	var (
		provider translator.Provider
		owned    *gemini.Client
	)
	switch cfg.TranslationProvider {
	case ProviderGoogle:
		if cfg.TranslateAPIKey == "" {
			logger.Warn("No translation API key configured, using pattern detection only")
			provider = translator.NoneProvider{}
			break
		}
		gp, err := translator.NewGoogleProvider(ctx, cfg.TranslateAPIKey)
		if err != nil {
			handle.Close()
			return nil, err
		}
		provider = gp
	case ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.TranslateAPIKey, cfg.TranslationModel)
		if err != nil {
			handle.Close()
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		owned = client
		provider = translator.NewLLMProvider(ProviderGemini, client)
	default:
		provider = translator.NoneProvider{}
	}
	logger.Info("Translation provider ready", "provider", provider.Name())

	p := New(translator.New(provider, cfg.TranslateTimeout), handle, cfg)
	p.translationClient = owned
	return p, nil
}

// ModelLoaded reports whether runs can be served.
func (p *Pipeline) ModelLoaded() bool {
	return p != nil && p.model.Loaded()
}

// Model returns the code model handle.
func (p *Pipeline) Model() *model.Handle { return p.model }

// Close releases the model handle and any provider clients.
func (p *Pipeline) Close() error {
	var errs []error
	if p.translationClient != nil {
		errs = append(errs, p.translationClient.Close())
	}
	errs = append(errs, p.model.Close())
	return errors.Join(errs...)
}

// EstimatedCost prices the Gemini tokens used so far, in USD. ok is false when
// no Gemini client is in use.
func (p *Pipeline) EstimatedCost() (cost float64, ok bool) {
	if p.translationClient != nil {
		u := p.translationClient.Usage()
		cost += metadata.EstimateGeminiCost(p.translationClient.ModelID(), u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
		ok = true
	}
	if u, tracked := p.model.Usage(); tracked {
		cost += metadata.EstimateGeminiCost(p.model.ID(), u.PromptTokenCount, u.CandidatesTokenCount, u.TotalTokenCount)
		ok = true
	}
	return cost, ok
}

// Run converts one sentence. It fails only for invalid input or a missing
// model; every stage absorbs its own trouble and reports it as degraded.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if preprocess.IsBlank(req.SourceText) {
		return Result{}, apperrors.Input(errors.New("blank input text"))
	}
	if n := preprocess.GraphemeCount(req.SourceText); n > p.maxGraphemes {
		return Result{}, apperrors.New(apperrors.KindInput,
			fmt.Sprintf("Input text is too long (%d characters, max %d)", n, p.maxGraphemes), nil)
	}
	langInput := req.SourceLang
	if langInput == "" {
		langInput = p.defaultLang
	}
	lang, ok := language.Resolve(langInput)
	if !ok {
		return Result{}, apperrors.New(apperrors.KindInput,
			fmt.Sprintf("Unsupported input language: %s", langInput), nil)
	}
	if !p.ModelLoaded() {
		return Result{}, apperrors.Unavailable(errors.New("code model handle not initialized"))
	}

	res := Result{RunID: uuid.NewString(), Language: lang.Code}
	log := logger.With("run_id", res.RunID)
	start := time.Now()
	log.Info("Run started", "lang", lang.Code, "chars", preprocess.GraphemeCount(req.SourceText))

	// 1. Normalize
	res.Normalized = preprocess.Normalize(req.SourceText)
	res.record(StagePreprocess, res.Normalized.Message(), false)
	log.Debug("Input normalized", "tokens", res.Normalized.TokenCount)

	// 2. Translate
	res.Translation = p.translator.WithLogger(log).Translate(ctx, res.Normalized.Cleaned, lang.Code)
	res.record(StageTranslation, res.Translation.Message, res.Translation.UsedFallback)
	log.Info("Translation finished",
		"provider", res.Translation.Provider,
		"fallback", res.Translation.UsedFallback,
		"patterns", len(res.Translation.Detected),
	)

	// 3. Classify and render pseudo-code
	res.Intent = intent.Classify(res.Translation.PivotText)
	res.PseudoCode = pseudocode.Render(res.Intent)
	res.record(StagePseudoCode, pseudocode.Message, false)
	log.Info("Intent classified", "intent", res.Intent.Kind, "numbers", len(res.Intent.Params.Numbers))

	// 4. Generate code
	gen := codegen.NewGenerator(timedModel{handle: p.model, timeout: p.generateTimeout}).WithLogger(log)
	res.Code = gen.Generate(ctx, res.Translation.PivotText, res.Intent)
	res.record(StageCode, res.Code.Message, res.Code.Provenance == codegen.ProvenancePlaceholder)
	log.Info("Code generated", "provenance", res.Code.Provenance, "code_lines", len(res.Code.Lines))

	// 5. Execution placeholder
	res.Execution = ExecutionPlaceholder
	res.record(StageExecution, ExecutionMessage, false)

	// 6. Feedback
	res.Feedback = feedback.Analyze(res.Code.Lines, res.Translation.PivotText)
	res.record(StageFeedback, feedback.Message, false)

	log.Info("Run finished", "duration", time.Since(start).Round(time.Millisecond), "degraded", res.Degraded())
	return res, nil
}

// timedModel bounds each learned-generator call.
type timedModel struct {
	handle  *model.Handle
	timeout time.Duration
}

func (m timedModel) Generate(ctx context.Context, prompt string) (string, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	return m.handle.Generate(ctx, prompt)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/oukeidos/codelex/internal/auth"
	"github.com/oukeidos/codelex/internal/cleanup"
	"github.com/oukeidos/codelex/internal/config"
	"github.com/oukeidos/codelex/internal/files"
	"github.com/oukeidos/codelex/internal/logger"
	"github.com/oukeidos/codelex/internal/model"
	"github.com/oukeidos/codelex/internal/pipeline"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
)

// runtimeOptions are the flags shared by every command that builds a pipeline.
type runtimeOptions struct {
	configPath       string
	lang             string
	translator       string
	translateModel   string
	backend          string
	modelPath        string
	endpoint         string
	modelID          string
	translateTimeout time.Duration
	generateTimeout  time.Duration
	allowEnv         bool
	envOnly          bool
	logFilePath      string
	debug            bool
}

func addRuntimeFlags(cmd *cobra.Command, opts *runtimeOptions) {
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "kn", "Input language code or name")
	cmd.Flags().StringVar(&opts.translator, "translator", pipeline.ProviderGoogle, "Translation provider (google, gemini, none)")
	cmd.Flags().StringVar(&opts.translateModel, "translate-model", "", "Gemini model used by the gemini translator")
	cmd.Flags().StringVar(&opts.backend, "backend", string(model.BackendLocal), "Code model backend (local, gemini, openai, offline)")
	cmd.Flags().StringVar(&opts.modelPath, "model-path", "", "Fine-tuned checkpoint path (local backend)")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "OpenAI-compatible inference server URL (local backend)")
	cmd.Flags().StringVar(&opts.modelID, "model", "", "Hosted model name (gemini and openai backends)")
	cmd.Flags().DurationVar(&opts.translateTimeout, "translate-timeout", 0, "Timeout for one translation call (default 15s)")
	cmd.Flags().DurationVar(&opts.generateTimeout, "generate-timeout", 0, "Timeout for one code model call (default 1m)")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API keys from environment variables")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
}

// loadRuntime reads the config file, applies changed flags over it, sets up
// logging and resolves the API keys the chosen providers need.
func loadRuntime(cmd *cobra.Command, opts *runtimeOptions) (*config.File, pipeline.Config, error) {
	file, err := config.Load(opts.configPath)
	if err != nil {
		return nil, pipeline.Config{}, err
	}

	if err := initLogging(cmd, opts, file); err != nil {
		return nil, pipeline.Config{}, err
	}
	if opts.configPath != "" {
		logger.Info("Loaded config", "path", opts.configPath)
	}

	cfg := file.Pipeline()
	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.SourceLang = opts.lang
	}
	if flags.Changed("translator") {
		cfg.TranslationProvider = strings.ToLower(opts.translator)
	}
	if flags.Changed("translate-model") {
		cfg.TranslationModel = opts.translateModel
	}
	if flags.Changed("backend") {
		cfg.Backend = model.Backend(strings.ToLower(opts.backend))
	}
	if flags.Changed("model-path") {
		cfg.ModelPath = opts.modelPath
	}
	if flags.Changed("endpoint") {
		cfg.Endpoint = opts.endpoint
	}
	if flags.Changed("model") {
		cfg.ModelID = opts.modelID
	}
	if flags.Changed("translate-timeout") {
		cfg.TranslateTimeout = opts.translateTimeout
	}
	if flags.Changed("generate-timeout") {
		cfg.GenerateTimeout = opts.generateTimeout
	}

	if err := resolveKeys(&cfg, opts); err != nil {
		return nil, pipeline.Config{}, err
	}
	return file, cfg, nil
}

func initLogging(cmd *cobra.Command, opts *runtimeOptions, file *config.File) error {
	level := logger.ParseLevel(file.Logging.Level)
	if opts.debug {
		level = logger.LevelDebug
	}
	path := file.Logging.File
	if cmd.Flags().Changed("log-file") {
		path = opts.logFilePath
	}

	var logFileW io.Writer
	if path != "" {
		if err := files.RejectSymlinkPath(path); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		logFileW = f
	}
	logger.Init(level, logFileW)
	return nil
}

// resolveKeys fills the keys the configured providers need. A Google
// Translate key is optional: without one the pattern matcher is used.
func resolveKeys(cfg *pipeline.Config, opts *runtimeOptions) error {
	switch cfg.TranslationProvider {
	case pipeline.ProviderGoogle:
		if key, source := lookupOptionalKey(auth.ServiceTranslate, opts.allowEnv || opts.envOnly, opts.envOnly); key != "" {
			cfg.TranslateAPIKey = key
			logger.Info("Using API Key", "service", auth.ServiceTranslate, "source", source)
		}
	case pipeline.ProviderGemini:
		key, source, err := resolveAPIKey(auth.ServiceGemini, opts.allowEnv, opts.envOnly)
		if err != nil {
			return err
		}
		cfg.TranslateAPIKey = key
		logger.Info("Using API Key", "service", auth.ServiceGemini, "source", source)
	}

	var service string
	switch cfg.Backend {
	case model.BackendGemini:
		service = auth.ServiceGemini
	case model.BackendOpenAI:
		service = auth.ServiceOpenAI
	default:
		return nil
	}
	if service == auth.ServiceGemini && cfg.TranslateAPIKey != "" && cfg.TranslationProvider == pipeline.ProviderGemini {
		cfg.ModelAPIKey = cfg.TranslateAPIKey
		return nil
	}
	key, source, err := resolveAPIKey(service, opts.allowEnv, opts.envOnly)
	if err != nil {
		return err
	}
	cfg.ModelAPIKey = key
	logger.Info("Using API Key", "service", service, "source", source)
	return nil
}

func lookupOptionalKey(service string, allowEnv, envOnly bool) (string, string) {
	if !envOnly {
		if key, source := getKey(service, false); key != "" {
			return key, source
		}
	}
	if allowEnv {
		if key, ok := getEnvKey(service); ok {
			return key, "Environment Variable"
		}
	}
	return "", ""
}

// resolveAPIKey handles the logic for finding the API key.
func resolveAPIKey(service string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(service); ok {
			return key, "Environment Variable", nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", auth.EnvVar(service))
	}

	if key, source := getKey(service, false); key != "" {
		return key, source, nil
	}

	if allowEnv {
		if key, ok := getEnvKey(service); ok {
			return key, "Environment Variable", nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no %s API key available (non-interactive shell); set keychain or use --allow-env", auth.Label(service))
	}
	key, err := promptForKey(os.Stderr, fmt.Sprintf("%s API Key (press Enter to skip): ", auth.Label(service)))
	if err != nil {
		return "", "", fmt.Errorf("error reading API key: %w", err)
	}
	if strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), "Terminal Prompt", nil
	}

	if allowEnv {
		return "", "", fmt.Errorf("%s API key is required; not found in keychain or environment", auth.Label(service))
	}
	return "", "", fmt.Errorf("%s API key is required; not found in keychain (environment disabled by default; use --allow-env)", auth.Label(service))
}

func printUsageStats(w io.Writer, p *pipeline.Pipeline, duration time.Duration) {
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", duration.Round(time.Millisecond))
	fmt.Fprintf(w, "Model: %s (%s)\n", p.Model().ID(), p.Model().Backend())
	if cost, ok := p.EstimatedCost(); ok {
		fmt.Fprintf(w, "Estimated Cost: $%.5f\n", cost)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

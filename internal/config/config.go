// Package config loads the optional YAML configuration file. API keys are not
// read from it; they come from the keychain or the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oukeidos/codelex/internal/model"
	"github.com/oukeidos/codelex/internal/pipeline"
	"github.com/oukeidos/codelex/internal/server"
	"gopkg.in/yaml.v3"
)

// File is the on-disk configuration.
type File struct {
	Language    string            `yaml:"language"`
	MaxInput    int               `yaml:"max_input"`
	Translation TranslationConfig `yaml:"translation"`
	Model       ModelConfig       `yaml:"model"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type TranslationConfig struct {
	Provider string `yaml:"provider"` // google, gemini, none
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

type ModelConfig struct {
	Backend        string `yaml:"backend"` // local, gemini, openai, offline
	Path           string `yaml:"path"`
	BaseCheckpoint string `yaml:"base_checkpoint"`
	Endpoint       string `yaml:"endpoint"`
	ID             string `yaml:"id"`
	Timeout        string `yaml:"timeout"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes"`
	RequestTimeout string   `yaml:"request_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	p := pipeline.DefaultConfig()
	s := server.DefaultConfig()
	return &File{
		Language: p.SourceLang,
		MaxInput: p.MaxInputGraphemes,
		Translation: TranslationConfig{
			Provider: p.TranslationProvider,
			Model:    p.TranslationModel,
			Timeout:  p.TranslateTimeout.String(),
		},
		Model: ModelConfig{
			Backend:        string(p.Backend),
			Path:           p.ModelPath,
			BaseCheckpoint: p.BaseCheckpoint,
			Endpoint:       p.Endpoint,
			Timeout:        p.GenerateTimeout.String(),
		},
		Server: ServerConfig{
			Host:           s.Host,
			Port:           s.Port,
			AllowedOrigins: s.AllowedOrigins,
			MaxBodyBytes:   s.MaxBodyBytes,
			RequestTimeout: s.RequestTimeout.String(),
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the pipeline does not validate itself.
func (f *File) Validate() error {
	for name, v := range map[string]string{
		"translation.timeout":    f.Translation.Timeout,
		"model.timeout":          f.Model.Timeout,
		"server.request_timeout": f.Server.RequestTimeout,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if f.Server.Port < 0 || f.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", f.Server.Port)
	}
	return nil
}

// Save writes f as YAML.
func (f *File) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// Pipeline converts f into a pipeline configuration without keys.
func (f *File) Pipeline() pipeline.Config {
	translateTimeout, _ := parseDuration(f.Translation.Timeout)
	generateTimeout, _ := parseDuration(f.Model.Timeout)
	return pipeline.Config{
		SourceLang:          f.Language,
		TranslationProvider: f.Translation.Provider,
		TranslationModel:    f.Translation.Model,
		TranslateTimeout:    translateTimeout,
		Backend:             model.Backend(f.Model.Backend),
		ModelPath:           f.Model.Path,
		BaseCheckpoint:      f.Model.BaseCheckpoint,
		Endpoint:            f.Model.Endpoint,
		ModelID:             f.Model.ID,
		GenerateTimeout:     generateTimeout,
		MaxInputGraphemes:   f.MaxInput,
	}
}

// ServerConfig converts f into a server configuration.
func (f *File) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	if f.Server.Host != "" {
		cfg.Host = f.Server.Host
	}
	if f.Server.Port != 0 {
		cfg.Port = f.Server.Port
	}
	if f.Server.AllowedOrigins != nil {
		cfg.AllowedOrigins = f.Server.AllowedOrigins
	}
	if f.Server.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = f.Server.MaxBodyBytes
	}
	if d, _ := parseDuration(f.Server.RequestTimeout); d > 0 {
		cfg.RequestTimeout = d
	}
	return cfg
}

// parseDuration treats an empty string as zero, which callers read as "default".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oukeidos/codelex/internal/config"
)

func TestConfigInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelex.yaml")

	out, err := executeCommand(t, "config", "init", path)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Fatalf("unexpected output: %s", out)
	}

	f, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if f.Language != config.Default().Language {
		t.Fatalf("language = %q, want %q", f.Language, config.Default().Language)
	}
}

func TestConfigInit_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "codelex.yaml")
	if err := os.WriteFile(path, []byte("language: en\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "config", "init", path)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, filepath.Join(dir, "codelex_1.yaml")) {
		t.Fatalf("expected a new file name, got: %s", out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "language: en\n" {
		t.Fatalf("existing config overwritten: %q", data)
	}
}

func TestConfigShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelex.yaml")
	if err := os.WriteFile(path, []byte("model:\n  backend: offline\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "backend: offline") {
		t.Fatalf("expected overridden backend, got: %s", out)
	}
	if !strings.Contains(out, "provider: google") {
		t.Fatalf("expected default provider, got: %s", out)
	}
}

func TestConfigShow_RejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelex.yaml")
	if err := os.WriteFile(path, []byte("colour: blue\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand(t, "config", "show", "--config", path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

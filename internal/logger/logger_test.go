package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPrettyHandler_Structural(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelDebug}
	h := NewPrettyHandler(&buf, opts, false)
	l := slog.New(h)

	t.Run("WithAttrs", func(t *testing.T) {
		buf.Reset()
		l2 := l.With("request_id", "abc-123")
		l2.Info("test message", "user", "alice")

		output := buf.String()
		if !strings.Contains(output, "request_id=") || !strings.Contains(output, "abc-123") {
			t.Errorf("output missing persistent attr: %q", output)
		}
		if !strings.Contains(output, "user=") || !strings.Contains(output, "alice") {
			t.Errorf("output missing record attr: %q", output)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("billing").With("amount", 100)
		l2.Info("payment processing", "currency", "USD")

		output := buf.String()
		if !strings.Contains(output, "billing.amount=") || !strings.Contains(output, "100") {
			t.Errorf("output missing grouped persistent attr: %q", output)
		}
		if !strings.Contains(output, "billing.currency=") || !strings.Contains(output, "USD") {
			t.Errorf("output missing grouped record attr: %q", output)
		}
	})

	t.Run("NestedGroups", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("outer").WithGroup("inner").With("key", "val")
		l2.Info("msg")

		output := buf.String()
		if !strings.Contains(output, "outer.inner.key=") || !strings.Contains(output, "val") {
			t.Errorf("output missing nested grouped attr: %q", output)
		}
	})
}

func TestRedactAttr(t *testing.T) {
	t.Run("KeyBasedRedaction", func(t *testing.T) {
		attr := slog.String("api_key", "sk-1234567890abcdef")
		got := RedactAttr(nil, attr)
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("ValuePatternRedaction", func(t *testing.T) {
		attr := slog.String("message", "bearer sk-1234567890abcdef")
		got := RedactAttr(nil, attr)
		if got.Value.String() != "[REDACTED]" {
			t.Fatalf("expected redaction, got %q", got.Value.String())
		}
	})

	t.Run("UserTextRedaction", func(t *testing.T) {
		for _, key := range []string{"source_text", "pivot_text", "code", "prompt", "inputText"} {
			got := RedactAttr(nil, slog.String(key, "1 ರಿಂದ 10 ರವರೆಗೆ"))
			if got.Value.String() != "[REDACTED]" {
				t.Fatalf("expected %s to be redacted, got %q", key, got.Value.String())
			}
		}
	})

	t.Run("NonSensitive", func(t *testing.T) {
		for _, a := range []slog.Attr{
			slog.String("user", "alice"),
			slog.Int("tokens", 6),
			slog.String("intent", "iterate"),
			slog.Int("code_lines", 3),
		} {
			got := RedactAttr(nil, a)
			if got.Value.String() != a.Value.String() {
				t.Fatalf("unexpected redaction of %s: %q", a.Key, got.Value.String())
			}
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWith_CarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)
	defer Init(LevelInfo, nil)

	With("run_id", "run-42").Info("stage done", "stage", "translation")
	out := buf.String()
	if !strings.Contains(out, `"run_id":"run-42"`) {
		t.Fatalf("expected run_id in JSONL output, got %q", out)
	}
}

func TestPrettyHandler_NoColorWhenNotTTY(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return false }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	Init(LevelInfo, nil)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestPrettyHandler_NoColorWhenLogFileEnabled(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return true }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	var logBuf bytes.Buffer
	Init(LevelInfo, &logBuf)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestPrettyHandler_RunIDPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelInfo}, false))

	l.With("run_id", "0f3c2a9e-1111-2222-3333-444455556666").Info("Run started", "lang", "kn")

	out := buf.String()
	if !strings.Contains(out, " [0f3c2a9e] Run started lang=kn") {
		t.Fatalf("unexpected line: %q", out)
	}
	if strings.Contains(out, "run_id=") {
		t.Fatalf("run_id should not repeat as a field: %q", out)
	}
}

func TestPrettyHandler_QuotesStringsWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: LevelInfo}, false))

	l.Info("Pipeline unavailable", "error", "model not loaded", "empty", "")

	out := buf.String()
	if !strings.Contains(out, `error="model not loaded"`) || !strings.Contains(out, `empty=""`) {
		t.Fatalf("unexpected line: %q", out)
	}
}

type lineCounter struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineCounter) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(p))
	return len(p), nil
}

func TestPrettyHandler_OneWritePerRecord(t *testing.T) {
	w := &lineCounter{}
	l := slog.New(NewPrettyHandler(w, &slog.HandlerOptions{Level: LevelInfo}, false))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("Request", "n", i, "path", "/api/process")
		}(i)
	}
	wg.Wait()

	if len(w.lines) != 20 {
		t.Fatalf("got %d writes, want 20", len(w.lines))
	}
	for _, line := range w.lines {
		if strings.Count(line, "\n") != 1 || !strings.HasSuffix(line, "\n") {
			t.Fatalf("write is not a single line: %q", line)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiHandler_KeepsWritingAfterSinkFailure(t *testing.T) {
	var good bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelInfo}
	m := &multiHandler{handlers: []slog.Handler{
		slog.NewJSONHandler(failingWriter{}, opts),
		NewPrettyHandler(&good, opts, false),
	}}

	r := slog.NewRecord(time.Now(), LevelInfo, "Run finished", 0)
	if err := m.Handle(context.Background(), r); err == nil {
		t.Fatalf("expected sink error")
	}
	if !strings.Contains(good.String(), "Run finished") {
		t.Fatalf("second sink skipped: %q", good.String())
	}
}

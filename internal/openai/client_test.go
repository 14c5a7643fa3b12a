package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oukeidos/codelex/internal/apperrors"
)

func TestClient_Generate_Errors(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		responseBody   string
		expectedErrMsg string
		expectedKind   apperrors.Kind
	}{
		{
			name:           "429 Too Many Requests",
			status:         http.StatusTooManyRequests,
			responseBody:   `{"error": {"message": "Rate limit reached: SECRET_SENTENCE", "type": "rate_limit_error", "code": "rate_limit_exceeded"}}`,
			expectedErrMsg: "OpenAI rate limit exceeded (429)",
			expectedKind:   apperrors.KindRateLimit,
		},
		{
			name:           "401 Unauthorized",
			status:         http.StatusUnauthorized,
			responseBody:   `{"error": {"message": "Invalid API Key: SECRET_SENTENCE", "type": "auth_error"}}`,
			expectedErrMsg: "OpenAI authentication/authorization failed (401)",
			expectedKind:   apperrors.KindAuth,
		},
		{
			name:           "404 model",
			status:         http.StatusNotFound,
			responseBody:   `{"error": {"message": "SECRET_SENTENCE", "code": "model_not_found"}}`,
			expectedErrMsg: "The model does not exist",
			expectedKind:   apperrors.KindBadRequest,
		},
		{
			name:           "500 Internal Server Error",
			status:         http.StatusInternalServerError,
			responseBody:   "server down SECRET_SENTENCE",
			expectedErrMsg: "OpenAI server error (500)",
			expectedKind:   apperrors.KindTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.responseBody)
			}))
			defer server.Close()

			client := NewClient("test-key", "test-model")
			client.baseURL = server.URL

			_, err := client.Generate(context.Background(), "print hello")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.expectedErrMsg) {
				t.Errorf("Expected error message to contain %q, got %q", tt.expectedErrMsg, err.Error())
			}
			if strings.Contains(err.Error(), "SECRET_SENTENCE") {
				t.Errorf("Expected error message to redact sensitive content, got %q", err.Error())
			}
			if kind, _ := apperrors.KindOf(err); kind != tt.expectedKind {
				t.Errorf("kind = %q, want %q", kind, tt.expectedKind)
			}
		})
	}
}

func TestClient_Generate_Responses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req RequestData
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "gpt-test" || req.Instructions != "Reply with Python only." || len(req.Input) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		fmt.Fprint(w, `{"id":"resp_1","status":"completed","output":[
			{"type":"reasoning"},
			{"type":"message","role":"assistant","content":[{"type":"output_text","text":"print('hi')"}]}
		],"usage":{"total_tokens":12}}`)
	}))
	defer server.Close()

	client := NewClient("test-key", "gpt-test")
	client.baseURL = server.URL
	client.SetSystemInstruction("Reply with Python only.")

	got, err := client.Generate(context.Background(), "say hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "print('hi')" {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestClient_Generate_EmptyOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"resp_2","status":"incomplete","output":[]}`)
	}))
	defer server.Close()

	client := NewClient("k", "m")
	client.baseURL = server.URL
	_, err := client.Generate(context.Background(), "x")
	if !apperrors.Is(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCompatibleClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected authorization header")
		}
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "./kannada_python_t5_model" || req.Prompt != "reverse a string" {
			t.Errorf("unexpected request %+v", req)
		}
		fmt.Fprint(w, `{"id":"cmpl-1","choices":[{"text":"s = input()\nprint(s[::-1])","finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	client := NewCompatibleClient(server.URL+"/v1/", "", "./kannada_python_t5_model")
	got, err := client.Generate(context.Background(), "reverse a string")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "s = input()\nprint(s[::-1])" {
		t.Fatalf("Generate() = %q", got)
	}
}

func TestCompatibleClient_Unreachable(t *testing.T) {
	client := NewCompatibleClient("http://127.0.0.1:1/v1", "", "m")
	_, err := client.Generate(context.Background(), "x")
	if !apperrors.Is(err, apperrors.KindTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Inference server request failed") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/language"
	"github.com/oukeidos/codelex/internal/pipeline"
)

// Processor runs sentences through the pipeline.
type Processor interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
	ModelLoaded() bool
}

// ProcessRequest is the body of POST /api/process.
type ProcessRequest struct {
	InputText     string `json:"inputText"`
	InputLanguage string `json:"inputLanguage"`
}

// HealthResponse is returned by / and /health.
type HealthResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ModelLoaded bool   `json:"model_loaded"`
}

// LanguagesResponse is returned by /api/languages.
type LanguagesResponse struct {
	Languages []language.Language `json:"languages"`
}

// ErrorResponse carries a failed request's public message.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// Handler routes the API.
type Handler struct {
	proc           Processor
	allowedOrigins []string
	maxBodyBytes   int64
	requestTimeout time.Duration
	log            *slog.Logger
}

func NewHandler(proc Processor, cfg Config, log *slog.Logger) *Handler {
	return &Handler{
		proc:           proc,
		allowedOrigins: cfg.AllowedOrigins,
		maxBodyBytes:   cfg.MaxBodyBytes,
		requestTimeout: cfg.RequestTimeout,
		log:            log,
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch path {
	case "":
		h.handleRoot(w, r)
	case "/health":
		h.handleHealth(w, r)
	case "/api/process":
		h.handleProcess(w, r)
	case "/api/languages":
		h.handleLanguages(w, r)
	default:
		writeError(w, http.StatusNotFound, "not_found", "Not Found")
	}
}

func (h *Handler) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" || !slices.Contains(h.allowedOrigins, origin) {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Add("Vary", "Origin")
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Message:     "Codelex API is running",
		ModelLoaded: h.proc.ModelLoaded(),
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	resp := HealthResponse{Status: "healthy", Message: "All systems operational", ModelLoaded: true}
	if !h.proc.ModelLoaded() {
		resp = HealthResponse{Status: "unhealthy", Message: "Model not loaded"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLanguages(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, LanguagesResponse{Languages: language.SourceLanguages()})
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if !h.proc.ModelLoaded() {
		writeError(w, http.StatusServiceUnavailable, string(apperrors.KindUnavailable), "Model service not available")
		return
	}

	var req ProcessRequest
	if err := readJSON(w, r, h.maxBodyBytes, &req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "Invalid JSON body")
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	res, err := h.proc.Run(ctx, pipeline.Request{SourceText: req.InputText, SourceLang: req.InputLanguage})
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.log.Error("Processing failed", "error", err)
			writeError(w, status, "internal_error", "Processing failed: "+apperrors.PublicMessage(err))
			return
		}
		kind, _ := apperrors.KindOf(err)
		writeError(w, status, string(kind), apperrors.PublicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, res.Response())
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	return false
}

func readJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := io.Reader(r.Body)
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	return json.NewDecoder(body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail, Code: code})
}

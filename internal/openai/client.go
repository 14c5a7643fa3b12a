package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/httpclient"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// API selects the endpoint family a Client talks to.
type API string

const (
	// APIResponses is the hosted OpenAI Responses API.
	APIResponses API = "responses"
	// APICompletions is the plain /completions endpoint exposed by
	// OpenAI-compatible inference servers hosting a local checkpoint.
	APICompletions API = "completions"
)

// RequestData represents the request body for the Responses API.
type RequestData struct {
	Model           string      `json:"model"`
	Instructions    string      `json:"instructions,omitempty"`
	Input           []InputItem `json:"input"`
	MaxOutputTokens int         `json:"max_output_tokens,omitempty"`
}

type InputItem struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ResponseData represents the subset of the Responses API body we read.
type ResponseData struct {
	ID                string             `json:"id"`
	Status            string             `json:"status"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Output            []OutputItem       `json:"output"`
	Usage             Usage              `json:"usage"`
}

type IncompleteDetails struct {
	Reason string `json:"reason"`
}

type OutputItem struct {
	Type    string            `json:"type"`
	Role    string            `json:"role,omitempty"`
	Content []ResponseContent `json:"content,omitempty"`
}

type ResponseContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type errorEnvelope struct {
	Error errorDetails `json:"error"`
}

type errorDetails struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"`
}

func (e errorDetails) codeString() string {
	if e.Code == nil {
		return ""
	}
	return fmt.Sprint(e.Code)
}

type Client struct {
	apiKey       string
	model        string
	baseURL      string
	api          API
	label        string
	instructions string
	maxTokens    int
}

// NewClient returns a client for the hosted Responses API.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:    apiKey,
		model:     model,
		baseURL:   DefaultBaseURL,
		api:       APIResponses,
		label:     "OpenAI",
		maxTokens: 512,
	}
}

// NewCompatibleClient returns a client for an OpenAI-compatible server at
// baseURL (for example http://localhost:8000/v1). apiKey may be empty.
func NewCompatibleClient(baseURL, apiKey, model string) *Client {
	return &Client{
		apiKey:    apiKey,
		model:     model,
		baseURL:   strings.TrimRight(baseURL, "/"),
		api:       APICompletions,
		label:     "Inference server",
		maxTokens: 256,
	}
}

// GetModelID returns the configured model identifier.
func (c *Client) GetModelID() string {
	return c.model
}

// SetSystemInstruction sets instructions sent with every Responses API call.
// Completions servers have no system role, so it is prepended to the prompt.
func (c *Client) SetSystemInstruction(prompt string) {
	c.instructions = prompt
}

// Generate sends prompt and returns the model's text output.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.api == APICompletions {
		return c.complete(ctx, prompt)
	}
	resp, err := c.Respond(ctx, RequestData{
		Instructions: c.instructions,
		Input:        []InputItem{{Type: "message", Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	text := resp.OutputText()
	if text == "" {
		return "", apperrors.New(apperrors.KindValidation, c.label+" response contained no text.", nil)
	}
	return text, nil
}

// Respond calls the Responses API.
func (c *Client) Respond(ctx context.Context, req RequestData) (*ResponseData, error) {
	req.Model = c.model
	if req.MaxOutputTokens == 0 {
		req.MaxOutputTokens = c.maxTokens
	}

	body, err := c.post(ctx, "/responses", req)
	if err != nil {
		return nil, err
	}
	var result ResponseData
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.New(
			apperrors.KindValidation,
			c.label+" response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	slog.Debug("OpenAI API Response", "usage_total", result.Usage.TotalTokens, "response_id", result.ID)
	return &result, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.instructions != "" {
		prompt = c.instructions + "\n\n" + prompt
	}
	body, err := c.post(ctx, "/completions", completionRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", err
	}
	var result completionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.New(
			apperrors.KindValidation,
			c.label+" response format was invalid.",
			fmt.Errorf("failed to decode response: %w", err),
		)
	}
	if len(result.Choices) == 0 {
		return "", apperrors.New(apperrors.KindValidation, c.label+" response contained no choices.", nil)
	}
	slog.Debug("Completion response", "response_id", result.ID, "finish_reason", result.Choices[0].FinishReason)
	return result.Choices[0].Text, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	body, resp, err := httpclient.PostJSON(ctx, httpclient.GetDefaultClient(), c.baseURL+path, headers, payload)
	if err != nil {
		return nil, apperrors.New(
			apperrors.KindTransient,
			c.label+" request failed due to a temporary network/runtime error.",
			fmt.Errorf("request failed: %w", err),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyOpenAIError(c.label, resp.StatusCode, resp.Status, parseErrorDetails(body))
	}
	return body, nil
}

// OutputText concatenates every output_text part of message items.
func (r *ResponseData) OutputText() string {
	var b strings.Builder
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				b.WriteString(part.Text)
			}
		}
	}
	return b.String()
}

func parseErrorDetails(body []byte) errorDetails {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorDetails{}
	}
	return envelope.Error
}

func classifyOpenAIError(label string, statusCode int, status string, details errorDetails) error {
	code := details.codeString()
	cause := fmt.Errorf("status=%s type=%s code=%s message=%s", status, details.Type, code, details.Message)

	switch statusCode {
	case http.StatusTooManyRequests:
		return apperrors.New(
			apperrors.KindRateLimit,
			fmt.Sprintf("%s rate limit exceeded (429): please try again later.", label),
			cause,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.New(
			apperrors.KindAuth,
			fmt.Sprintf("%s authentication/authorization failed (%d): please verify your API key and permissions.", label, statusCode),
			cause,
		)
	case http.StatusNotFound:
		if isModelNotFound(details) {
			return apperrors.New(
				apperrors.KindBadRequest,
				"The model does not exist or you do not have access to it.",
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("%s resource not found (404).", label),
			cause,
		)
	default:
		if statusCode >= 500 {
			return apperrors.New(
				apperrors.KindTransient,
				fmt.Sprintf("%s server error (%d): please try again later.", label, statusCode),
				cause,
			)
		}
		return apperrors.New(
			apperrors.KindBadRequest,
			fmt.Sprintf("%s API error (%d): %s", label, statusCode, status),
			cause,
		)
	}
}

func isModelNotFound(details errorDetails) bool {
	needle := strings.ToLower(details.codeString() + " " + details.Type + " " + details.Message)
	if strings.Contains(needle, "model_not_found") {
		return true
	}
	return strings.Contains(needle, "does not exist or you do not have access to it")
}

package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/codelex/internal/apperrors"
	"github.com/oukeidos/codelex/internal/httpclient"
	"google.golang.org/api/option"
)

// Client is a plain-text Gemini client shared by the translation provider and
// the code model backend.
type Client struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	modelID string

	mu    sync.Mutex
	usage UsageMetadata
}

// UsageMetadata holds cumulative token usage.
type UsageMetadata struct {
	PromptTokenCount     int
	CandidatesTokenCount int
	TotalTokenCount      int
}

// Generator is the surface used by callers; MockClient implements it too.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	SetSystemInstruction(prompt string)
}

var _ Generator = (*Client)(nil)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	// option.WithHTTPClient would bypass the library's API key header
	// injection, so deadlines are enforced through the context instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "text/plain"
	model.SetTemperature(0)

	return &Client{
		client:  client,
		model:   model,
		modelID: modelName,
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ModelID returns the configured model identifier.
func (c *Client) ModelID() string {
	return c.modelID
}

// SetSystemInstruction sets the system prompt for the model.
func (c *Client) SetSystemInstruction(prompt string) {
	c.model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt)},
	}
}

// Generate sends prompt and returns the concatenated text of the first
// candidate that has any.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, httpclient.DefaultTimeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperrors.FromGoogleAPI("Gemini", err)
	}
	text, err := extractResponseText(resp)
	if err != nil {
		return "", apperrors.Validation(err)
	}
	if resp.UsageMetadata != nil {
		c.mu.Lock()
		c.usage.PromptTokenCount += int(resp.UsageMetadata.PromptTokenCount)
		c.usage.CandidatesTokenCount += int(resp.UsageMetadata.CandidatesTokenCount)
		c.usage.TotalTokenCount += int(resp.UsageMetadata.TotalTokenCount)
		c.mu.Unlock()
	}
	return strings.TrimSpace(text), nil
}

// Usage returns token usage accumulated since the client was created.
func (c *Client) Usage() UsageMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}

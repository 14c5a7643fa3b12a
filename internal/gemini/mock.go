package gemini

import (
	"context"
	"sync"
)

// MockClient stands in for Client in tests. It returns Response and Error
// on every call and adds UsagePerCall to its running usage.
type MockClient struct {
	Response     string
	Error        error
	UsagePerCall UsageMetadata

	mu                    sync.Mutex
	calls                 int
	usage                 UsageMetadata
	LastPrompt            string
	LastSystemInstruction string
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.LastPrompt = prompt
	m.usage.PromptTokenCount += m.UsagePerCall.PromptTokenCount
	m.usage.CandidatesTokenCount += m.UsagePerCall.CandidatesTokenCount
	m.usage.TotalTokenCount += m.UsagePerCall.TotalTokenCount
	return m.Response, m.Error
}

func (m *MockClient) SetSystemInstruction(prompt string) {
	m.LastSystemInstruction = prompt
}

// Calls reports how many times Generate ran.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClient) Usage() UsageMetadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

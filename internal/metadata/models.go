package metadata

const (
	// DefaultModelPath is where the fine-tuned checkpoint is expected.
	DefaultModelPath = "./kannada_python_t5_model"
	// DefaultBaseCheckpoint is served when no fine-tuned checkpoint exists.
	DefaultBaseCheckpoint = "Salesforce/codet5-small"
	// DefaultLocalEndpoint is the OpenAI-compatible server hosting the checkpoint.
	DefaultLocalEndpoint = "http://localhost:8000/v1"

	DefaultGeminiModel = "gemini-3-flash-preview"
	DefaultOpenAIModel = "gpt-5.2"
)

type GeminiModel struct {
	ID                      string
	Label                   string
	InputPerMillion         float64
	OutputPerMillion        float64
	ReasoningBilledAsOutput bool
}

var GeminiModels = []GeminiModel{
	{
		ID:                      "gemini-3-flash-preview",
		Label:                   "Gemini 3 Flash (preview)",
		InputPerMillion:         0.50,
		OutputPerMillion:        3.00,
		ReasoningBilledAsOutput: true,
	},
	{
		ID:                      "gemini-3-pro-preview",
		Label:                   "Gemini 3 Pro (preview)",
		InputPerMillion:         2.00,
		OutputPerMillion:        12.00,
		ReasoningBilledAsOutput: true,
	},
}

const (
	DefaultGeminiInputPerMillion  = 2.00
	DefaultGeminiOutputPerMillion = 12.00
)

func GeminiModelIDs() []string {
	ids := make([]string, 0, len(GeminiModels))
	for _, m := range GeminiModels {
		ids = append(ids, m.ID)
	}
	return ids
}

func GeminiPricing(modelID string) (GeminiModel, bool) {
	for _, m := range GeminiModels {
		if m.ID == modelID {
			return m, true
		}
	}
	return GeminiModel{
		ID:                      "default",
		Label:                   "Default Gemini",
		InputPerMillion:         DefaultGeminiInputPerMillion,
		OutputPerMillion:        DefaultGeminiOutputPerMillion,
		ReasoningBilledAsOutput: true,
	}, false
}

// EstimateGeminiCost prices one run's token usage. Reasoning tokens are the
// part of total not accounted for by prompt and candidates.
func EstimateGeminiCost(modelID string, prompt, candidates, total int) float64 {
	reasoning := total - (prompt + candidates)
	if reasoning < 0 {
		reasoning = 0
	}
	pricing, _ := GeminiPricing(modelID)
	output := candidates
	if pricing.ReasoningBilledAsOutput {
		output += reasoning
	}
	return float64(prompt)/1_000_000*pricing.InputPerMillion + float64(output)/1_000_000*pricing.OutputPerMillion
}

package factory

import (
	"fmt"
	"time"

	"notes-intelligence-be/pkg/llm"
	"notes-intelligence-be/pkg/llm/huggingface"
	"notes-intelligence-be/pkg/llm/ollama"
	"notes-intelligence-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured backend and wraps it with the
// per-call timeout guard.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	var p llm.LLMProvider
	switch providerType {
	case "ollama":
		p = ollama.NewOllamaProvider(baseURL, modelName)
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		p = openai.NewOpenAIProvider(apiKey, baseURL, modelName)
	case "huggingface":
		p = huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	return llm.WithGuard(providerType, p, timeout), nil
}

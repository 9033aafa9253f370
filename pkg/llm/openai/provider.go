package openai

import (
	"context"
	"fmt"

	"notes-intelligence-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider serves OpenAI and any OpenAI-compatible endpoint.
type OpenAIProvider struct {
	client *goopenai.Client
	model  string
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIProvider{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := &llm.Options{Model: p.model, Temperature: 0.7}
	for _, o := range options {
		o(opts)
	}

	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, m := range history {
		role := m.Role
		if role == "model" {
			role = goopenai.ChatMessageRoleAssistant
		}
		messages[i] = goopenai.ChatCompletionMessage{Role: role, Content: m.Content}
	}

	req := goopenai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    messages,
		Temperature: float32(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		req.MaxCompletionTokens = opts.MaxTokens
	}
	if opts.JSON {
		req.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai api call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: goopenai.ChatMessageRoleUser, Content: prompt}}, options...)
}

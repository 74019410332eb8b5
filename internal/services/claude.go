package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// claudeService is the validation-model client.
type claudeService struct {
	client    anthropic.Client
	modelName string
	maxTokens int64
}

func NewClaudeService(apiKey, modelName string) (TextGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	if modelName == "" {
		modelName = "claude-sonnet-4-20250514"
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &claudeService{
		client:    client,
		modelName: modelName,
		maxTokens: 4096,
	}, nil
}

// Model implements TextGenerator.
func (s *claudeService) Model() string {
	return s.modelName
}

// Generate implements TextGenerator.
func (s *claudeService) Generate(ctx context.Context, prompt string, temperature float32) (string, TokenUsage, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.modelName),
		MaxTokens: s.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if temperature > 0 {
		params.Temperature = anthropic.Float(float64(temperature))
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", TokenUsage{}, fmt.Errorf("Claude API call failed: %w", err)
	}

	usage := TokenUsage{
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
	}

	text := textFromBlocks(resp.Content)
	if text == "" {
		return "", usage, fmt.Errorf("no response generated from Claude API")
	}

	return text, usage, nil
}

// textFromBlocks concatenates the text content blocks of a response,
// skipping tool-use and thinking blocks.
func textFromBlocks(blocks []anthropic.ContentBlockUnion) string {
	var response strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}
	return response.String()
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentboard/recruiting-api/internal/models"
)

type scriptedGenerator struct {
	name      string
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string, temperature float32) (string, TokenUsage, error) {
	i := g.calls
	g.calls++
	g.prompts = append(g.prompts, prompt)

	usage := TokenUsage{PromptTokens: 10, CompletionTokens: 5}
	if i < len(g.errs) && g.errs[i] != nil {
		return "", usage, g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], usage, nil
	}
	return "", usage, errors.New("no scripted response")
}

func (g *scriptedGenerator) Model() string { return g.name }

func jobDoc() *models.JobDocument {
	return &models.JobDocument{
		JobID:       "job-1",
		RawText:     "Senior Go Engineer at Acme, Berlin",
		ContentHash: "hash-1",
	}
}

func TestExtractorProcessTwoStagePipeline(t *testing.T) {
	extraction := &scriptedGenerator{
		name: "gemini-test",
		responses: []string{
			"```json\n{\"company\": \"Acme\", \"position\": \"Go Engineer\", \"location\": \"Berlin\"}\n```",
		},
	}
	validation := &scriptedGenerator{
		name: "claude-test",
		responses: []string{
			`{"fields": {"company": "Acme", "position": "Senior Go Engineer", "location": "Berlin"}, "changes": {"position_changes": "added seniority from the document"}}`,
		},
	}

	extractor := NewExtractor(extraction, validation, RetryPolicy{MaxAttempts: 1})
	record, err := extractor.Process(context.Background(), jobDoc())
	require.NoError(t, err)

	// Validator output replaces the extraction output.
	assert.Equal(t, "Senior Go Engineer", record.ExtractedFields["position"])
	assert.Equal(t, "Acme", record.ExtractedFields["company"])
	assert.Equal(t, "added seniority from the document", record.ChangedFields["position_changes"])

	assert.Equal(t, "hash-1", record.ContentHash)
	assert.Equal(t, "gemini-test", record.ExtractionModel)
	assert.Equal(t, "claude-test", record.ValidationModel)

	// Usage is summed across both stages.
	assert.Equal(t, 20, record.PromptTokens)
	assert.Equal(t, 10, record.CompletionTokens)
	assert.Equal(t, 30, record.TotalTokens())

	assert.Equal(t, 1, extraction.calls)
	assert.Equal(t, 1, validation.calls)

	// The validation prompt carries the extracted fields and the source text.
	require.Len(t, validation.prompts, 1)
	assert.Contains(t, validation.prompts[0], "Go Engineer")
	assert.Contains(t, validation.prompts[0], "Senior Go Engineer at Acme")
}

func TestExtractorProcessKeepsFieldsWhenValidatorReturnsNone(t *testing.T) {
	extraction := &scriptedGenerator{
		name:      "gemini-test",
		responses: []string{`{"company": "Acme", "position": "Engineer"}`},
	}
	validation := &scriptedGenerator{
		name:      "claude-test",
		responses: []string{`{"fields": {}, "changes": {}}`},
	}

	extractor := NewExtractor(extraction, validation, RetryPolicy{MaxAttempts: 1})
	record, err := extractor.Process(context.Background(), jobDoc())
	require.NoError(t, err)

	assert.Equal(t, "Acme", record.ExtractedFields["company"])
	assert.Equal(t, "Engineer", record.ExtractedFields["position"])
}

func TestExtractorProcessRejectsSchemaViolations(t *testing.T) {
	// Missing the required position field.
	extraction := &scriptedGenerator{
		name:      "gemini-test",
		responses: []string{`{"company": "Acme"}`},
	}
	validation := &scriptedGenerator{name: "claude-test"}

	extractor := NewExtractor(extraction, validation, RetryPolicy{MaxAttempts: 1})
	_, err := extractor.Process(context.Background(), jobDoc())
	require.Error(t, err)
	assert.Zero(t, validation.calls)
}

func TestExtractorProcessExtractionFailureNotRetriedByDefault(t *testing.T) {
	extraction := &scriptedGenerator{
		name: "gemini-test",
		errs: []error{errors.New("rate limited")},
	}
	validation := &scriptedGenerator{name: "claude-test"}

	extractor := NewExtractor(extraction, validation, RetryPolicy{MaxAttempts: 1})
	_, err := extractor.Process(context.Background(), jobDoc())
	require.Error(t, err)
	assert.Equal(t, 1, extraction.calls)
	assert.Zero(t, validation.calls)
}

func TestGenerateWithRetrySumsUsageAcrossAttempts(t *testing.T) {
	gen := &scriptedGenerator{
		name:      "gemini-test",
		errs:      []error{errors.New("transient"), nil},
		responses: []string{"", `{"ok": true}`},
	}

	result, usage, err := GenerateWithRetry(context.Background(), gen, "prompt", 0, RetryPolicy{MaxAttempts: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, result)
	assert.Equal(t, 2, gen.calls)

	// Failed attempts still consumed tokens.
	assert.Equal(t, 20, usage.PromptTokens)
	assert.Equal(t, 10, usage.CompletionTokens)
}

func TestExtractJSONStripsMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "fenced object",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around object",
			input:    "Here is the result: {\"a\": 1} as requested.",
			expected: `{"a": 1}`,
		},
		{
			name:     "bare array",
			input:    `[1, 2, 3]`,
			expected: `[1, 2, 3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}

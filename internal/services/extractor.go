package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"talentboard/recruiting-api/internal/models"
)

// Extractor runs the two-stage extraction/validation pipeline over one job
// document and produces the record stored in the extraction cache.
type Extractor interface {
	Process(ctx context.Context, doc *models.JobDocument) (*models.ExtractionRecord, error)
}

type extractorService struct {
	extractionModel TextGenerator
	validationModel TextGenerator
	promptBuilder   *PromptBuilder
	retry           RetryPolicy
}

func NewExtractor(extractionModel, validationModel TextGenerator, retry RetryPolicy) Extractor {
	return &extractorService{
		extractionModel: extractionModel,
		validationModel: validationModel,
		promptBuilder:   NewPromptBuilder(),
		retry:           retry,
	}
}

type validationResponse struct {
	Fields  map[string]interface{} `json:"fields"`
	Changes map[string]interface{} `json:"changes"`
}

// Process implements Extractor.
func (e *extractorService) Process(ctx context.Context, doc *models.JobDocument) (*models.ExtractionRecord, error) {
	var usage TokenUsage

	// Step 1: extraction
	log.Printf("🤖 Extracting fields for job %s with %s...\n", doc.JobID, e.extractionModel.Model())
	prompt := e.promptBuilder.BuildExtractionPrompt(doc.RawText)

	response, u, err := GenerateWithRetry(ctx, e.extractionModel, prompt, 0.2, e.retry)
	usage.Add(u)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var fields map[string]interface{}
	if err := parseJSONResponse(response, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	if err := ValidateJobFields(fields); err != nil {
		return nil, err
	}

	// Step 2: validation pass with the second model
	log.Printf("🤖 Validating fields for job %s with %s...\n", doc.JobID, e.validationModel.Model())
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extracted fields: %w", err)
	}

	validationPrompt := e.promptBuilder.BuildValidationPrompt(string(fieldsJSON), doc.RawText)

	validationText, u, err := GenerateWithRetry(ctx, e.validationModel, validationPrompt, 0, e.retry)
	usage.Add(u)
	if err != nil {
		return nil, fmt.Errorf("validation call failed: %w", err)
	}

	var validated validationResponse
	if err := parseJSONResponse(validationText, &validated); err != nil {
		return nil, fmt.Errorf("failed to parse validation response: %w", err)
	}

	if len(validated.Fields) > 0 {
		if err := ValidateJobFields(validated.Fields); err != nil {
			return nil, fmt.Errorf("validator returned malformed fields: %w", err)
		}
		fields = validated.Fields
	}

	return &models.ExtractionRecord{
		ID:               uuid.New(),
		ContentHash:      doc.ContentHash,
		ExtractedFields:  datatypes.JSONMap(fields),
		ChangedFields:    datatypes.JSONMap(validated.Changes),
		ExtractionModel:  e.extractionModel.Model(),
		ValidationModel:  e.validationModel.Model(),
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		CreatedAt:        time.Now(),
	}, nil
}

func parseJSONResponse(response string, target interface{}) error {
	// Try to extract JSON from response (LLM might wrap it in markdown)
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	// Determine if we have an object or array
	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}

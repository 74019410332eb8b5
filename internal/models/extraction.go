package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractionRecord is the durable, content-addressed result of one
// extraction+validation pipeline invocation. Append-only: the first record
// stored for a content hash wins.
type ExtractionRecord struct {
	ID               uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ContentHash      string            `gorm:"type:text;uniqueIndex;not null" json:"content_hash"`
	ExtractedFields  datatypes.JSONMap `gorm:"type:jsonb" json:"extracted_fields"`
	ChangedFields    datatypes.JSONMap `gorm:"type:jsonb" json:"changed_fields"`
	ExtractionModel  string            `gorm:"type:text" json:"extraction_model"`
	ValidationModel  string            `gorm:"type:text" json:"validation_model"`
	PromptTokens     int               `gorm:"not null;default:0" json:"prompt_tokens"`
	CompletionTokens int               `gorm:"not null;default:0" json:"completion_tokens"`
	CreatedAt        time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ExtractionRecord) TableName() string {
	return "extraction_records"
}

func (r *ExtractionRecord) TotalTokens() int {
	return r.PromptTokens + r.CompletionTokens
}

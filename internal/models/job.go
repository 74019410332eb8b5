package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MTBRow is one entry of the Master Tracking Board spreadsheet.
type MTBRow struct {
	JobID             string `json:"job_id"`
	Company           string `json:"company"`
	Position          string `json:"position"`
	Location          string `json:"location"`
	SalaryRange       string `json:"salary_range"`
	DescriptionFileID string `json:"description_file_id"`
}

// JobDocument is the downloaded description of one tracking-board entry.
// Immutable once fetched; ContentHash is the sha256 of the normalized text.
type JobDocument struct {
	JobID       string
	SourceName  string
	RawText     string
	ContentHash string
}

type OptimizedJobRecord struct {
	ID              uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID           string            `gorm:"type:text;uniqueIndex;not null" json:"job_id"`
	Company         string            `gorm:"type:text" json:"company"`
	Position        string            `gorm:"type:text" json:"position"`
	Location        string            `gorm:"type:text" json:"location"`
	SalaryRange     string            `gorm:"type:text" json:"salary_range"`
	ContentHash     string            `gorm:"type:text;index" json:"content_hash"`
	ExtractedFields datatypes.JSONMap `gorm:"type:jsonb" json:"extracted_fields"`
	ExtractionModel string            `gorm:"type:text" json:"extraction_model"`
	ValidationModel string            `gorm:"type:text" json:"validation_model"`
	FromCache       bool              `gorm:"not null;default:false" json:"from_cache"`
	CreatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (OptimizedJobRecord) TableName() string {
	return "job_records"
}

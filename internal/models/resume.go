package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Resume struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	CandidateName    string    `gorm:"type:text" json:"candidate_name"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	ContentHash      string    `gorm:"type:text;index" json:"content_hash"`
	RawText          string    `gorm:"type:text" json:"-"`
	CreatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

type SavedSearch struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Query     string            `gorm:"type:text;not null" json:"query"`
	Filters   datatypes.JSONMap `gorm:"type:jsonb" json:"filters"`
	CreatedAt time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (SavedSearch) TableName() string {
	return "saved_searches"
}

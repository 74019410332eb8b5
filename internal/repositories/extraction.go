package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"talentboard/recruiting-api/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ExtractionRepository interface {
	Create(record *models.ExtractionRecord) error
	FindByContentHash(hash string) (*models.ExtractionRecord, error)
}

type extractionRepository struct {
	db *gorm.DB
}

func NewExtractionRepository(db *gorm.DB) ExtractionRepository {
	return &extractionRepository{db: db}
}

// Create implements ExtractionRepository.
func (r *extractionRepository) Create(record *models.ExtractionRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create extraction record: %w", err)
	}
	return nil
}

// FindByContentHash implements ExtractionRepository.
func (r *extractionRepository) FindByContentHash(hash string) (*models.ExtractionRecord, error) {
	var record models.ExtractionRecord
	if err := r.db.Where("content_hash = ?", hash).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find extraction record: %w", err)
	}
	return &record, nil
}

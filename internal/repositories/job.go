package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talentboard/recruiting-api/internal/models"
)

type JobRecordRepository interface {
	Upsert(record *models.OptimizedJobRecord) error
	FindByJobID(jobID string) (*models.OptimizedJobRecord, error)
	List(limit, offset int) ([]models.OptimizedJobRecord, error)
}

type jobRecordRepository struct {
	db *gorm.DB
}

func NewJobRecordRepository(db *gorm.DB) JobRecordRepository {
	return &jobRecordRepository{db: db}
}

// Upsert implements JobRecordRepository. Records are keyed by job_id;
// reprocessing a job overwrites the previous row (latest wins).
func (r *jobRecordRepository) Upsert(record *models.OptimizedJobRecord) error {
	record.UpdatedAt = time.Now()

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"company", "position", "location", "salary_range",
			"content_hash", "extracted_fields", "extraction_model",
			"validation_model", "from_cache", "updated_at",
		}),
	}).Create(record).Error

	if err != nil {
		return fmt.Errorf("failed to upsert job record: %w", err)
	}
	return nil
}

// FindByJobID implements JobRecordRepository.
func (r *jobRecordRepository) FindByJobID(jobID string) (*models.OptimizedJobRecord, error) {
	var record models.OptimizedJobRecord
	if err := r.db.Where("job_id = ?", jobID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find job record: %w", err)
	}
	return &record, nil
}

// List implements JobRecordRepository.
func (r *jobRecordRepository) List(limit, offset int) ([]models.OptimizedJobRecord, error) {
	var records []models.OptimizedJobRecord
	err := r.db.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list job records: %w", err)
	}
	return records, nil
}

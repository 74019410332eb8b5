package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"talentboard/recruiting-api/internal/models"
)

type SavedSearchRepository interface {
	Create(search *models.SavedSearch) error
	List() ([]models.SavedSearch, error)
	Delete(id uuid.UUID) error
}

type savedSearchRepository struct {
	db *gorm.DB
}

func NewSavedSearchRepository(db *gorm.DB) SavedSearchRepository {
	return &savedSearchRepository{db: db}
}

// Create implements SavedSearchRepository.
func (r *savedSearchRepository) Create(search *models.SavedSearch) error {
	if err := r.db.Create(search).Error; err != nil {
		return fmt.Errorf("failed to create saved search: %w", err)
	}
	return nil
}

// List implements SavedSearchRepository.
func (r *savedSearchRepository) List() ([]models.SavedSearch, error) {
	var searches []models.SavedSearch
	if err := r.db.Order("created_at DESC").Find(&searches).Error; err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	return searches, nil
}

// Delete implements SavedSearchRepository.
func (r *savedSearchRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.SavedSearch{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete saved search: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("saved search not found")
	}
	return nil
}

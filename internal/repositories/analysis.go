package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cv-checker/internal/models"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Create(record *models.AnalysisRecord) error
	FindByUser(userID string, limit int) ([]models.AnalysisRecord, error)
	CountByUser(userID string) (int64, error)
	DeleteForUser(id uuid.UUID, userID string) error
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create implements AnalysisRepository.
func (r *analysisRepository) Create(record *models.AnalysisRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}
	return nil
}

// FindByUser implements AnalysisRepository.
func (r *analysisRepository) FindByUser(userID string, limit int) ([]models.AnalysisRecord, error) {
	var records []models.AnalysisRecord
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	return records, nil
}

// CountByUser implements AnalysisRepository.
func (r *analysisRepository) CountByUser(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.AnalysisRecord{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count analyses: %w", err)
	}
	return count, nil
}

// DeleteForUser implements AnalysisRepository. The user id scopes the delete
// so one user cannot remove another user's record.
func (r *analysisRepository) DeleteForUser(id uuid.UUID, userID string) error {
	result := r.db.
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.AnalysisRecord{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete analysis: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAnalysisNotFound
	}
	return nil
}

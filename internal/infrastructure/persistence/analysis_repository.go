package persistence

import (
	"context"
	"errors"

	"github.com/brandlens/backend/internal/domain/brand"
	"github.com/brandlens/backend/internal/domain/shared"
	"github.com/brandlens/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAnalysisRepository implements AnalysisRepository using GORM
type GormAnalysisRepository struct {
	db *gorm.DB
}

// NewGormAnalysisRepository creates a new GormAnalysisRepository
func NewGormAnalysisRepository(db *gorm.DB) *GormAnalysisRepository {
	return &GormAnalysisRepository{db: db}
}

// Save persists a new analysis
func (r *GormAnalysisRepository) Save(ctx context.Context, analysis *brand.Analysis) error {
	model, err := models.AnalysisModelFromDomain(analysis)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(model).Error
}

// Update updates an existing analysis
func (r *GormAnalysisRepository) Update(ctx context.Context, analysis *brand.Analysis) error {
	model, err := models.AnalysisModelFromDomain(analysis)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds an analysis by ID
func (r *GormAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*brand.Analysis, error) {
	var model models.AnalysisModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindByUser returns a page of the user's analyses, newest first, plus the
// total count
func (r *GormAnalysisRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*brand.Analysis, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.AnalysisModel{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AnalysisModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	analyses := make([]*brand.Analysis, 0, len(rows))
	for i := range rows {
		analysis, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, total, nil
}

// Ensure GormAnalysisRepository implements AnalysisRepository
var _ brand.AnalysisRepository = (*GormAnalysisRepository)(nil)

// Package postgres implements the application store over gorm/Postgres.
package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/storage"
)

// Store persists job applications in the job_applications table.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ storage.ApplicationStore = (*Store)(nil)

func (s *Store) Create(ctx context.Context, app *models.JobApplication) error {
	return s.db.WithContext(ctx).Create(app).Error
}

func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, filter storage.ListFilter) ([]models.JobApplication, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("company ILIKE ? OR role ILIKE ?", pattern, pattern)
	}

	var apps []models.JobApplication
	if err := q.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *Store) GetByUser(ctx context.Context, id uint, userID uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) Update(ctx context.Context, app *models.JobApplication) error {
	// Save writes every column, so cleared (nil) optional fields become
	// NULL instead of being skipped the way Updates would.
	return s.db.WithContext(ctx).Save(app).Error
}

func (s *Store) DeleteByUser(ctx context.Context, id uint, userID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.JobApplication{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/cloudapp/webapp/models"
	"gorm.io/gorm"
)

type HealthCheckRepository struct {
	db *gorm.DB
}

func NewHealthCheckRepository(db *gorm.DB) *HealthCheckRepository {
	return &HealthCheckRepository{db: db}
}

// Create inserts a new probe row stamped with the current time.
func (r *HealthCheckRepository) Create(ctx context.Context) (*models.HealthCheck, error) {
	record := &models.HealthCheck{}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("insert health check: %w", err)
	}
	return record, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudapp/webapp/models"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.FileMetadata) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("insert file metadata %s: %w", file.ID, err)
	}
	return nil
}

func (r *FileRepository) FindByID(ctx context.Context, id string) (*models.FileMetadata, error) {
	var file models.FileMetadata
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find file metadata %s: %w", id, err)
	}
	return &file, nil
}

// Delete removes the row for id. A concurrent delete that already removed it yields ErrNotFound.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.FileMetadata{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete file metadata %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Package repository maps health-check and file-metadata records onto their MySQL tables.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("record not found")

// Repository groups the per-table repositories sharing one connection pool.
type Repository struct {
	HealthChecks *HealthCheckRepository
	Files        *FileRepository
}

func New(db *gorm.DB) *Repository {
	return &Repository{
		HealthChecks: NewHealthCheckRepository(db),
		Files:        NewFileRepository(db),
	}
}

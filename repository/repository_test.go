package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudapp/webapp/models"
	"github.com/cloudapp/webapp/testutil"
)

func TestHealthCheckRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := New(db)
	start := time.Now()

	rec, err := repo.HealthChecks.Create(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.Timestamp.Before(start))

	second, err := repo.HealthChecks.Create(context.Background())
	require.NoError(t, err)
	assert.Greater(t, second.ID, rec.ID)

	var count int64
	require.NoError(t, db.Model(&models.HealthCheck{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestHealthCheckRepository_ClosedDB(t *testing.T) {
	db := testutil.NewTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = NewHealthCheckRepository(db).Create(context.Background())
	require.Error(t, err)
}

func newFile(id string) *models.FileMetadata {
	return &models.FileMetadata{
		ID:         id,
		FileName:   "report.pdf",
		StorageKey: "bucket/default/" + id + "/report.pdf",
		PublicURL:  "https://bucket.example/" + id,
	}
}

func TestFileRepository_CreateFindDelete(t *testing.T) {
	repo := NewFileRepository(testutil.NewTestDB(t))
	ctx := context.Background()
	id := uuid.NewString()

	require.NoError(t, repo.Create(ctx, newFile(id)))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.FileName)
	assert.Equal(t, "bucket/default/"+id+"/report.pdf", got.StorageKey)
	assert.False(t, got.CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
}

func TestFileRepository_FindMissing(t *testing.T) {
	repo := NewFileRepository(testutil.NewTestDB(t))

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepository_StorageKeyUnique(t *testing.T) {
	repo := NewFileRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	first := newFile(uuid.NewString())
	require.NoError(t, repo.Create(ctx, first))

	dup := newFile(uuid.NewString())
	dup.StorageKey = first.StorageKey
	require.Error(t, repo.Create(ctx, dup))
}

package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudapp/webapp/models"
	"github.com/cloudapp/webapp/repository"
	"github.com/cloudapp/webapp/storage"
	"github.com/cloudapp/webapp/utils"
)

// UploadField is the multipart field holding the file content.
const UploadField = "file"

// FileResponse is the JSON shape returned by upload and lookup.
type FileResponse struct {
	FileName   string `json:"file_name"`
	ID         string `json:"id"`
	URL        string `json:"url"`
	UploadDate string `json:"upload_date"`
}

func newFileResponse(f *models.FileMetadata) FileResponse {
	return FileResponse{
		FileName:   f.FileName,
		ID:         f.ID,
		URL:        f.PublicURL,
		UploadDate: f.CreatedAt.UTC().Format("2006-01-02"),
	}
}

// FileController stores blobs in the bucket and tracks them in file_metadata.
type FileController struct {
	files       *repository.FileRepository
	store       storage.Storage
	bucket      string
	userSegment string
	metrics     *utils.Metrics
	logger      *zap.Logger
}

// NewFileController creates a new FileController instance.
func NewFileController(files *repository.FileRepository, store storage.Storage, bucket, userSegment string, metrics *utils.Metrics, logger *zap.Logger) *FileController {
	return &FileController{
		files:       files,
		store:       store,
		bucket:      bucket,
		userSegment: userSegment,
		metrics:     metrics,
		logger:      logger,
	}
}

// Upload writes the blob first and the metadata row second. A failed row insert leaves the
// blob orphaned; no cleanup is attempted. Once the blob is written the row insert no longer
// follows the client's cancellation.
func (f *FileController) Upload(ctx *gin.Context) error {
	header, err := ctx.FormFile(UploadField)
	if err != nil {
		return &HTTPError{Status: http.StatusBadRequest, Message: "file is required", Err: err}
	}
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	id := uuid.NewString()
	name := utils.SanitizeFileName(header.Filename)
	key := storage.ObjectKey(f.bucket, f.userSegment, id, name)
	reqCtx := ctx.Request.Context()

	contentType, err := utils.SafeContentType(src)
	if err != nil {
		return fmt.Errorf("detect content type: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}

	start := time.Now()
	err = f.store.Upload(reqCtx, key, src, header.Size, contentType)
	f.metrics.ObserveStorage(reqCtx, "upload", start)
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	record := &models.FileMetadata{
		ID:         id,
		FileName:   name,
		StorageKey: key,
		PublicURL:  f.store.PublicURL(key),
	}
	commitCtx := context.WithoutCancel(reqCtx)
	start = time.Now()
	err = f.files.Create(commitCtx, record)
	f.metrics.ObserveDB(commitCtx, "file_metadata.insert", start)
	if err != nil {
		return err
	}

	f.logger.Info("file uploaded",
		zap.String("outcome", "success"),
		zap.String("file_id", id),
		zap.String("storage_key", key),
		zap.Int64("size", header.Size),
	)
	ctx.JSON(http.StatusCreated, newFileResponse(record))
	return nil
}

// Get returns the metadata of one file.
func (f *FileController) Get(ctx *gin.Context) error {
	record, err := f.find(ctx)
	if err != nil {
		return err
	}

	f.logger.Info("file fetched", zap.String("outcome", "success"), zap.String("file_id", record.ID))
	ctx.JSON(http.StatusOK, newFileResponse(record))
	return nil
}

// Delete removes the blob, then the row. Either step failing yields 500 without compensation.
// The row delete runs even if the client went away after the blob was removed.
func (f *FileController) Delete(ctx *gin.Context) error {
	record, err := f.find(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request.Context()

	start := time.Now()
	err = f.store.Delete(reqCtx, record.StorageKey)
	f.metrics.ObserveStorage(reqCtx, "delete", start)
	if err != nil {
		return fmt.Errorf("delete %s: %w", record.StorageKey, err)
	}

	commitCtx := context.WithoutCancel(reqCtx)
	start = time.Now()
	err = f.files.Delete(commitCtx, record.ID)
	f.metrics.ObserveDB(commitCtx, "file_metadata.delete", start)
	if err != nil {
		return err
	}

	f.logger.Info("file deleted",
		zap.String("outcome", "success"),
		zap.String("file_id", record.ID),
		zap.String("storage_key", record.StorageKey),
	)
	utils.Empty(ctx, http.StatusNoContent)
	return nil
}

func (f *FileController) find(ctx *gin.Context) (*models.FileMetadata, error) {
	reqCtx := ctx.Request.Context()
	start := time.Now()
	record, err := f.files.FindByID(reqCtx, ctx.Param("file_id"))
	f.metrics.ObserveDB(reqCtx, "file_metadata.select", start)
	return record, err
}

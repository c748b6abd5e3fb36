// Package service provides business-logic for the app
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/mwlogger"
	"github.com/photoblog/photoflow/internal/repository"
	"github.com/photoblog/photoflow/internal/storage"
)

// ObjectStorage - контракт для работы с хранилищем
type ObjectStorage interface {
	Put(ctx context.Context, bucket, key string, size int64, contentType string, r io.Reader) error
	Delete(ctx context.Context, bucket, key string) error
	Head(ctx context.Context, bucket, key string) error
	Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

// TaskPublisher - контракт для работы с очередью задач
type TaskPublisher interface {
	Send(ctx context.Context, task *model.RetryTask, delay time.Duration) error
}

type ImageService struct {
	images  repository.ImageRepo
	shares  repository.ShareRepo
	storage ObjectStorage
	tasks   TaskPublisher
	buckets storage.Buckets
}

func NewImageService(images repository.ImageRepo, shares repository.ShareRepo, strg ObjectStorage, tasks TaskPublisher, buckets storage.Buckets) *ImageService {
	return &ImageService{
		images:  images,
		shares:  shares,
		storage: strg,
		tasks:   tasks,
		buckets: buckets,
	}
}

// CreateUpload stages the raw bytes, creates the pending record and kicks
// off processing with attempt 1
func (c ImageService) CreateUpload(ctx context.Context, data *model.UploadData) (*model.ImageRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := validateUploadData(data); err != nil {
		return nil, err
	}

	imageID := uuid.New().String() + "_" + trimExt(data.FileName)
	key := data.Owner + "/" + imageID + model.GetImageFileExt[data.ContentType]

	// кладем сырой файл в staging
	if err := c.storage.Put(ctx, c.buckets.Staging, key, data.Size, data.ContentType, data.Body); err != nil {
		logger.Error().Err(err).Msg("Failed to save staged image in Storage")
		return nil, model.ErrCommon500
	}

	meta := model.MetaMap{"original_filename": data.FileName}
	if data.BlogID != "" {
		// привязка к блог-пространству, по ней же считается photo_count
		meta["blog_space_id"] = data.BlogID
	}

	now := time.Now().UTC()
	rec := &model.ImageRecord{
		UserID:      data.Owner,
		ImageID:     imageID,
		Status:      model.StatusProcessing,
		S3Key:       key,
		ContentType: data.ContentType,
		Size:        data.Size,
		Deletion:    model.DeletionNone,
		Metadata:    meta,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	if err := c.images.Create(ctx, rec); err != nil {
		logger.Error().Err(err).Msg("Failed to create image record in DB")
		return nil, model.ErrCommon500
	}

	// ставим задачу на обработку
	task := &model.RetryTask{Bucket: c.buckets.Staging, Key: key, Attempt: 1}
	if err := c.tasks.Send(ctx, task, 0); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish task for image %q", key))
		return nil, model.ErrCommon500
	}

	return rec, nil
}

// GetImage returns one record with a fresh owner-scoped access link;
// optionally mints a guest share in the same call
func (c ImageService) GetImage(ctx context.Context, owner, imageID string, generateShare bool) (*model.ImageRecord, *model.ShareRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	rec, err := c.getRecord(ctx, owner, imageID)
	if err != nil {
		return nil, nil, err
	}

	// владельцу - суточная ссылка, гостю по шаре - трехчасовая
	presigned, err := c.storage.Presign(ctx, c.buckets.Processed, rec.S3Key, model.OwnerViewTTL)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to presign image %q", rec.S3Key))
		return nil, nil, model.ErrCommon500
	}
	rec.PresignedURL = presigned

	var share *model.ShareRecord
	if generateShare {
		share, err = c.IssueShare(ctx, owner, imageID)
		if err != nil {
			return nil, nil, err
		}
	}

	return rec, share, nil
}

// GetList returns the owner's records; objects missing from durable storage
// are flagged instead of failing the whole listing
func (c ImageService) GetList(ctx context.Context, owner string, req *model.ListRequest) ([]model.ImageRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	validateQueryParams(req)

	res, err := c.images.GetList(ctx, owner, req)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch images list from DB")
		return nil, model.ErrCommon500
	}

	for i := range res {
		rec := &res[i]
		if rec.Status != model.StatusReady {
			continue
		}
		if err := c.storage.Head(ctx, c.buckets.Processed, rec.S3Key); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Processed object %q is missing", rec.S3Key))
			rec.Status = model.StatusNotFound
			continue
		}
		presigned, err := c.storage.Presign(ctx, c.buckets.Processed, rec.S3Key, model.OwnerViewTTL)
		if err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to presign image %q", rec.S3Key))
			continue
		}
		rec.PresignedURL = presigned
	}

	return res, nil
}

func (c ImageService) getRecord(ctx context.Context, owner, imageID string) (*model.ImageRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	rec, err := c.images.Get(ctx, owner, imageID)
	if err != nil {
		if errors.Is(err, model.ErrImageNotFound) {
			return nil, model.ErrImageNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch image %q from DB", imageID))
		return nil, model.ErrCommon500
	}
	return rec, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/mwlogger"
)

// IssueShare mints an independent guest token for an image. Several live
// tokens per image are fine, each one is revoked on its own.
func (c ImageService) IssueShare(ctx context.Context, owner, imageID string) (*model.ShareRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	rec, err := c.getRecord(ctx, owner, imageID)
	if err != nil {
		return nil, err
	}
	if rec.Deletion != model.DeletionNone {
		return nil, model.ErrShareUnavailable
	}
	if rec.Status != model.StatusReady {
		return nil, model.ErrImageNotReady
	}

	guestURL, err := c.storage.Presign(ctx, c.buckets.Processed, rec.S3Key, model.ShareTTL)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to presign guest URL for %q", rec.S3Key))
		return nil, model.ErrCommon500
	}

	now := time.Now().UTC()

	// снапшот метаданных на момент выдачи
	meta := model.MetaMap{
		"shared_by": owner,
		"shared_at": now.Format(time.RFC3339),
	}
	for k, v := range rec.Metadata {
		meta[k] = v
	}

	share := &model.ShareRecord{
		Token:     uuid.New().String(),
		UserID:    owner,
		ImageID:   imageID,
		GuestURL:  guestURL,
		Deletion:  model.DeletionNone,
		Metadata:  meta,
		CreatedAt: now,
		ExpiresAt: now.Add(model.ShareTTL),
	}

	if err := c.shares.Create(ctx, share); err != nil {
		logger.Error().Err(err).Msg("Failed to create share record in DB")
		return nil, model.ErrCommon500
	}

	return share, nil
}

// ResolveShare fetches the record behind a guest token. Expired tokens and
// tokens of deleted images look exactly like missing ones.
func (c ImageService) ResolveShare(ctx context.Context, token string) (*model.ShareRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	share, err := c.shares.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrShareNotFound) {
			return nil, model.ErrShareNotFound
		}
		logger.Error().Err(err).Msg("Failed to fetch share record from DB")
		return nil, model.ErrCommon500
	}

	if !share.Usable(time.Now().UTC()) {
		return nil, model.ErrShareNotFound
	}

	return share, nil
}

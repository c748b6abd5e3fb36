package service

import (
	"context"
	"fmt"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/mwlogger"
)

// SetDeletionMode applies a soft or hard delete to the image record and then
// mirrors the same transition onto every share referencing it. The two steps
// are not atomic: the record goes first, share mirroring is best-effort and
// converges on re-invocation.
func (c ImageService) SetDeletionMode(ctx context.Context, owner, imageID string, mode model.DeletionMode) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if mode != model.DeletionSoft && mode != model.DeletionHard {
		return model.ErrInvalidDeletion
	}

	rec, err := c.getRecord(ctx, owner, imageID)
	if err != nil {
		return err
	}

	switch mode {
	case model.DeletionSoft:
		// запись остается, объект в хранилище не трогаем
		if err := c.images.SetDeletionMode(ctx, owner, imageID, model.DeletionSoft); err != nil {
			logger.Error().Err(err).Msg("Failed to soft-delete image record in DB")
			return model.ErrCommon500
		}

	case model.DeletionHard:
		// жесткое удаление необратимо: ни записи, ни объекта
		if err := c.images.Delete(ctx, owner, imageID); err != nil {
			logger.Error().Err(err).Msg("Failed to delete image record from DB")
			return model.ErrCommon500
		}
		if err := c.storage.Delete(ctx, c.buckets.Processed, rec.S3Key); err != nil {
			logger.Error().Err(err).Msg("Failed to delete processed object from Storage")
			return model.ErrCommon500
		}
	}

	c.mirrorShares(ctx, owner, imageID, mode)
	return nil
}

// Restore reverses a soft delete; any other current mode is an illegal
// transition (hard deletion leaves nothing to restore)
func (c ImageService) Restore(ctx context.Context, owner, imageID string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	rec, err := c.getRecord(ctx, owner, imageID)
	if err != nil {
		return err
	}

	if rec.Deletion != model.DeletionSoft {
		return fmt.Errorf("%w: cannot restore image with deletion mode %q", model.ErrInvalidTransition, rec.Deletion)
	}

	if err := c.images.SetDeletionMode(ctx, owner, imageID, model.DeletionNone); err != nil {
		logger.Error().Err(err).Msg("Failed to restore image record in DB")
		return model.ErrCommon500
	}

	c.mirrorShares(ctx, owner, imageID, model.DeletionNone)
	return nil
}

// mirrorShares повторяет переход deletion mode на всех ссылках изображения.
// Ошибки только логируются: каждый шаг переустанавливает одно и то же
// целевое состояние, поэтому повторный вызов операции дозеркалит остаток.
func (c ImageService) mirrorShares(ctx context.Context, owner, imageID string, mode model.DeletionMode) {
	logger := mwlogger.LoggerFromContext(ctx)

	shares, err := c.shares.ListByImage(ctx, owner, imageID)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to list shares for image %q", imageID))
		return
	}

	for _, s := range shares {
		var opErr error
		if mode == model.DeletionHard {
			opErr = c.shares.Delete(ctx, s.Token)
		} else {
			opErr = c.shares.SetDeletionMode(ctx, s.Token, mode)
		}
		if opErr != nil {
			logger.Error().Err(opErr).Msg(fmt.Sprintf("Failed to mirror deletion mode %q onto share %q", mode, s.Token))
		}
	}
}

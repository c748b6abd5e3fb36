// Package orchestrator drives one staged upload through
// fetch -> watermark -> commit -> cleanup with bounded retry escalation
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/photoblog/photoflow/internal/imageproc"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/notify"
)

// Image ids containing the marker always fail before the transform and go
// through the regular failure path - lets smoke checks exercise retries
const forcedFailMarker = "black"

var errForcedFailure = errors.New("simulated processing failure")

// ObjectStorage - контракт для работы с хранилищем
type ObjectStorage interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
	Put(ctx context.Context, bucket, key string, size int64, contentType string, r io.Reader) error
	Delete(ctx context.Context, bucket, key string) error
}

// RecordStore - контракт для коммита записей об изображениях
type RecordStore interface {
	Upsert(ctx context.Context, rec *model.ImageRecord) error
	UpdateStatus(ctx context.Context, userID, imageID string, newStat model.Status) error
}

// TaskPublisher - контракт для постановки ретраев в очередь
type TaskPublisher interface {
	Send(ctx context.Context, task *model.RetryTask, delay time.Duration) error
}

// IdentityResolver - контракт справочника отображаемых имен
type IdentityResolver interface {
	DisplayName(ctx context.Context, owner string) (string, error)
}

// Outcome - результат одной попытки обработки
type Outcome struct {
	Status   model.Status
	Retrying bool
	Attempt  int
	Cause    error
}

type Orchestrator struct {
	storage         ObjectStorage
	records         RecordStore
	tasks           TaskPublisher
	notifier        notify.Publisher
	identity        IdentityResolver
	processedBucket string
	publicURLBase   string
	faces           imageproc.FaceSource
}

func New(strg ObjectStorage, records RecordStore, tasks TaskPublisher, notifier notify.Publisher, identity IdentityResolver, processedBucket, publicURLBase string) *Orchestrator {
	return &Orchestrator{
		storage:         strg,
		records:         records,
		tasks:           tasks,
		notifier:        notifier,
		identity:        identity,
		processedBucket: processedBucket,
		publicURLBase:   publicURLBase,
		faces:           imageproc.DefaultFaces(),
	}
}

// Process runs a single attempt for one staged object. Everything up to a
// successful commit is caught once and converted into the retry-or-finalize
// decision; the returned error is non-nil only when the failure handoff
// itself could not be completed (the message should then be redelivered).
func (o *Orchestrator) Process(ctx context.Context, task *model.RetryTask) (*Outcome, error) {
	key, owner, imageID, err := splitKey(task.Key)
	if err != nil {
		// битый ключ не починится повтором - завершаем без ретрая
		log.Printf("Dropping task with malformed key %q: %v", task.Key, err)
		return &Outcome{Status: model.StatusFailed, Attempt: task.Attempt, Cause: err}, nil
	}

	// Имя владельца нужно и для водяного знака, и для текста уведомлений -
	// резолвим один раз и передаем дальше явно
	displayName := owner
	if name, err := o.identity.DisplayName(ctx, owner); err == nil && name != "" {
		displayName = name
	}

	if runErr := o.run(ctx, task, key, owner, imageID, displayName); runErr != nil {
		log.Printf("Processing attempt %d for %q failed: %v", task.Attempt, task.Key, runErr)
		return o.fail(ctx, task, owner, imageID, displayName, runErr)
	}

	return &Outcome{Status: model.StatusReady, Attempt: task.Attempt}, nil
}

func (o *Orchestrator) run(ctx context.Context, task *model.RetryTask, key, owner, imageID, displayName string) error {
	// достать из staging исходник
	staged, cType, err := o.storage.Get(ctx, task.Bucket, key)
	if err != nil {
		return fmt.Errorf("fetch staged object: %w", err)
	}
	defer closeFileFlow(staged)

	if strings.Contains(imageID, forcedFailMarker) {
		return errForcedFailure
	}

	result, size, err := imageproc.Watermark(staged, imageproc.Options{
		Label: displayName,
		Faces: o.faces,
	})
	if err != nil {
		return fmt.Errorf("watermark image: %w", err)
	}

	// кладем результат в долговременный бакет под тем же ключом -
	// повторная доставка просто перезапишет его
	if err := o.storage.Put(ctx, o.processedBucket, key, size, cType, result); err != nil {
		return fmt.Errorf("put processed object: %w", err)
	}

	now := time.Now().UTC()
	rec := &model.ImageRecord{
		UserID:      owner,
		ImageID:     imageID,
		Status:      model.StatusReady,
		S3Key:       key,
		URL:         o.publicURLBase + "/" + key,
		ContentType: cType,
		Size:        size,
		Attempts:    task.Attempt,
		Deletion:    model.DeletionNone,
		Metadata:    model.MetaMap{},
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
	if err := o.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("commit image record: %w", err)
	}

	// staged-копия больше не нужна
	if err := o.storage.Delete(ctx, task.Bucket, key); err != nil {
		return fmt.Errorf("delete staged object: %w", err)
	}

	log.Printf("Image %q processed and committed on attempt %d", key, task.Attempt)
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, task *model.RetryTask, owner, imageID, displayName string, cause error) (*Outcome, error) {
	if task.Attempt < model.MaxAttempts {
		next := &model.RetryTask{
			Bucket:    task.Bucket,
			Key:       task.Key,
			Attempt:   task.Attempt + 1,
			LastError: cause.Error(),
		}
		if err := o.tasks.Send(ctx, next, model.RetryDelay); err != nil {
			return nil, fmt.Errorf("schedule retry for %q: %w", task.Key, err)
		}

		if err := o.notifier.Publish(ctx, notify.RetryScheduled(displayName, owner, task.Key, task.Attempt)); err != nil {
			log.Printf("Failed to publish retry notification for %q: %v", task.Key, err)
		}

		return &Outcome{Status: model.StatusProcessing, Retrying: true, Attempt: task.Attempt, Cause: cause}, nil
	}

	// попытки кончились - помечаем запись и сообщаем владельцу
	if err := o.records.UpdateStatus(ctx, owner, imageID, model.StatusFailed); err != nil && !errors.Is(err, model.ErrImageNotFound) {
		log.Printf("Failed to mark image %q as failed: %v", task.Key, err)
	}

	if err := o.notifier.Publish(ctx, notify.FinalFailure(displayName, owner, task.Key, task.Attempt)); err != nil {
		log.Printf("Failed to publish final-failure notification for %q: %v", task.Key, err)
	}

	return &Outcome{Status: model.StatusFailed, Retrying: false, Attempt: task.Attempt, Cause: cause}, nil
}

// splitKey разбирает storage key вида `owner/imageID_suffix.ext`
func splitKey(raw string) (key, owner, imageID string, err error) {
	key, err = url.PathUnescape(raw)
	if err != nil {
		return raw, "", "", fmt.Errorf("%w: %v", model.ErrIncorrectKey, err)
	}

	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return key, "", "", fmt.Errorf("%w: %q", model.ErrIncorrectKey, key)
	}

	owner = parts[0]
	imageID = strings.TrimSuffix(parts[1], path.Ext(parts[1]))
	return key, owner, imageID, nil
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}

	if err := res.Close(); err != nil {
		log.Println("Orchestrator failed to close fileflow:", err)
	}
}

package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/notify"
)

// MOCK STORAGE

type mockStorage struct {
	getFn    func(ctx context.Context, bucket, key string) (io.ReadCloser, string, error)
	putFn    func(ctx context.Context, bucket, key string, size int64, ct string, r io.Reader) error
	deleteFn func(ctx context.Context, bucket, key string) error
}

func (m *mockStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	return m.getFn(ctx, bucket, key)
}

func (m *mockStorage) Put(ctx context.Context, bucket, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, bucket, key, size, ct, r)
}

func (m *mockStorage) Delete(ctx context.Context, bucket, key string) error {
	return m.deleteFn(ctx, bucket, key)
}

// MOCK RECORD STORE

type mockRecords struct {
	upsertFn       func(ctx context.Context, rec *model.ImageRecord) error
	updateStatusFn func(ctx context.Context, userID, imageID string, st model.Status) error
}

func (m *mockRecords) Upsert(ctx context.Context, rec *model.ImageRecord) error {
	return m.upsertFn(ctx, rec)
}

func (m *mockRecords) UpdateStatus(ctx context.Context, userID, imageID string, st model.Status) error {
	return m.updateStatusFn(ctx, userID, imageID, st)
}

// MOCK TASK PUBLISHER

type mockTasks struct {
	sendFn func(ctx context.Context, task *model.RetryTask, delay time.Duration) error
}

func (m *mockTasks) Send(ctx context.Context, task *model.RetryTask, delay time.Duration) error {
	return m.sendFn(ctx, task, delay)
}

// MOCK NOTIFIER

type mockNotifier struct {
	publishFn func(ctx context.Context, msg *notify.Message) error
}

func (m *mockNotifier) Publish(ctx context.Context, msg *notify.Message) error {
	return m.publishFn(ctx, msg)
}

// MOCK IDENTITY

type mockIdentity struct {
	displayNameFn func(ctx context.Context, owner string) (string, error)
}

func (m *mockIdentity) DisplayName(ctx context.Context, owner string) (string, error) {
	if m.displayNameFn == nil {
		return owner, nil
	}
	return m.displayNameFn(ctx, owner)
}

package service

import (
	"context"
	"io"
	"time"

	"github.com/photoblog/photoflow/internal/model"
)

// MOCK IMAGE REPOSITORY

type mockImages struct {
	createFn          func(ctx context.Context, rec *model.ImageRecord) error
	upsertFn          func(ctx context.Context, rec *model.ImageRecord) error
	getFn             func(ctx context.Context, userID, imageID string) (*model.ImageRecord, error)
	getListFn         func(ctx context.Context, userID string, req *model.ListRequest) ([]model.ImageRecord, error)
	deleteFn          func(ctx context.Context, userID, imageID string) error
	setDeletionModeFn func(ctx context.Context, userID, imageID string, mode model.DeletionMode) error
	updateStatusFn    func(ctx context.Context, userID, imageID string, st model.Status) error
}

func (m *mockImages) Create(ctx context.Context, rec *model.ImageRecord) error {
	return m.createFn(ctx, rec)
}

func (m *mockImages) Upsert(ctx context.Context, rec *model.ImageRecord) error {
	return m.upsertFn(ctx, rec)
}

func (m *mockImages) Get(ctx context.Context, userID, imageID string) (*model.ImageRecord, error) {
	return m.getFn(ctx, userID, imageID)
}

func (m *mockImages) GetList(ctx context.Context, userID string, req *model.ListRequest) ([]model.ImageRecord, error) {
	return m.getListFn(ctx, userID, req)
}

func (m *mockImages) Delete(ctx context.Context, userID, imageID string) error {
	return m.deleteFn(ctx, userID, imageID)
}

func (m *mockImages) SetDeletionMode(ctx context.Context, userID, imageID string, mode model.DeletionMode) error {
	return m.setDeletionModeFn(ctx, userID, imageID, mode)
}

func (m *mockImages) UpdateStatus(ctx context.Context, userID, imageID string, st model.Status) error {
	return m.updateStatusFn(ctx, userID, imageID, st)
}

// MOCK SHARE REPOSITORY

type mockShares struct {
	createFn          func(ctx context.Context, s *model.ShareRecord) error
	getByTokenFn      func(ctx context.Context, token string) (*model.ShareRecord, error)
	listByImageFn     func(ctx context.Context, userID, imageID string) ([]model.ShareRecord, error)
	setDeletionModeFn func(ctx context.Context, token string, mode model.DeletionMode) error
	deleteFn          func(ctx context.Context, token string) error
}

func (m *mockShares) Create(ctx context.Context, s *model.ShareRecord) error {
	return m.createFn(ctx, s)
}

func (m *mockShares) GetByToken(ctx context.Context, token string) (*model.ShareRecord, error) {
	return m.getByTokenFn(ctx, token)
}

func (m *mockShares) ListByImage(ctx context.Context, userID, imageID string) ([]model.ShareRecord, error) {
	return m.listByImageFn(ctx, userID, imageID)
}

func (m *mockShares) SetDeletionMode(ctx context.Context, token string, mode model.DeletionMode) error {
	return m.setDeletionModeFn(ctx, token, mode)
}

func (m *mockShares) Delete(ctx context.Context, token string) error {
	return m.deleteFn(ctx, token)
}

// MOCK BLOG REPOSITORY

type mockBlogs struct {
	createFn  func(ctx context.Context, b *model.BlogRecord) error
	getFn     func(ctx context.Context, userID, blogID string) (*model.BlogRecord, error)
	getListFn func(ctx context.Context, userID string) ([]model.BlogRecord, error)
	updateFn  func(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error)
	deleteFn  func(ctx context.Context, userID, blogID string) error
}

func (m *mockBlogs) Create(ctx context.Context, b *model.BlogRecord) error {
	return m.createFn(ctx, b)
}

func (m *mockBlogs) Get(ctx context.Context, userID, blogID string) (*model.BlogRecord, error) {
	return m.getFn(ctx, userID, blogID)
}

func (m *mockBlogs) GetList(ctx context.Context, userID string) ([]model.BlogRecord, error) {
	return m.getListFn(ctx, userID)
}

func (m *mockBlogs) Update(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
	return m.updateFn(ctx, userID, blogID, upd)
}

func (m *mockBlogs) Delete(ctx context.Context, userID, blogID string) error {
	return m.deleteFn(ctx, userID, blogID)
}

// MOCK STORAGE

type mockObjects struct {
	putFn     func(ctx context.Context, bucket, key string, size int64, ct string, r io.Reader) error
	deleteFn  func(ctx context.Context, bucket, key string) error
	headFn    func(ctx context.Context, bucket, key string) error
	presignFn func(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

func (m *mockObjects) Put(ctx context.Context, bucket, key string, size int64, ct string, r io.Reader) error {
	if m.putFn == nil {
		return nil
	}
	return m.putFn(ctx, bucket, key, size, ct, r)
}

func (m *mockObjects) Delete(ctx context.Context, bucket, key string) error {
	return m.deleteFn(ctx, bucket, key)
}

func (m *mockObjects) Head(ctx context.Context, bucket, key string) error {
	if m.headFn == nil {
		return nil
	}
	return m.headFn(ctx, bucket, key)
}

func (m *mockObjects) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if m.presignFn == nil {
		return "https://storage.local/" + bucket + "/" + key, nil
	}
	return m.presignFn(ctx, bucket, key, ttl)
}

// MOCK TASK PUBLISHER

type mockTasks struct {
	sendFn func(ctx context.Context, task *model.RetryTask, delay time.Duration) error
}

func (m *mockTasks) Send(ctx context.Context, task *model.RetryTask, delay time.Duration) error {
	return m.sendFn(ctx, task, delay)
}

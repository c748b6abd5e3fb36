package transport

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/photoblog/photoflow/internal/model"
)

type mockImageService struct {
	createUploadFn    func(ctx context.Context, data *model.UploadData) (*model.ImageRecord, error)
	getImageFn        func(ctx context.Context, owner, imageID string, generateShare bool) (*model.ImageRecord, *model.ShareRecord, error)
	getListFn         func(ctx context.Context, owner string, req *model.ListRequest) ([]model.ImageRecord, error)
	setDeletionModeFn func(ctx context.Context, owner, imageID string, mode model.DeletionMode) error
	restoreFn         func(ctx context.Context, owner, imageID string) error
	resolveShareFn    func(ctx context.Context, token string) (*model.ShareRecord, error)
}

func (m *mockImageService) CreateUpload(ctx context.Context, data *model.UploadData) (*model.ImageRecord, error) {
	return m.createUploadFn(ctx, data)
}

func (m *mockImageService) GetImage(ctx context.Context, owner, imageID string, generateShare bool) (*model.ImageRecord, *model.ShareRecord, error) {
	return m.getImageFn(ctx, owner, imageID, generateShare)
}

func (m *mockImageService) GetList(ctx context.Context, owner string, req *model.ListRequest) ([]model.ImageRecord, error) {
	return m.getListFn(ctx, owner, req)
}

func (m *mockImageService) SetDeletionMode(ctx context.Context, owner, imageID string, mode model.DeletionMode) error {
	return m.setDeletionModeFn(ctx, owner, imageID, mode)
}

func (m *mockImageService) Restore(ctx context.Context, owner, imageID string) error {
	return m.restoreFn(ctx, owner, imageID)
}

func (m *mockImageService) ResolveShare(ctx context.Context, token string) (*model.ShareRecord, error) {
	return m.resolveShareFn(ctx, token)
}

type mockBlogService struct {
	createBlogFn func(ctx context.Context, owner, title, description string) (*model.BlogRecord, error)
	getBlogsFn   func(ctx context.Context, owner string) ([]model.BlogRecord, error)
	getBlogFn    func(ctx context.Context, owner, blogID string) (*model.BlogRecord, error)
	updateBlogFn func(ctx context.Context, owner, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error)
	deleteBlogFn func(ctx context.Context, owner, blogID string) error
}

func (m *mockBlogService) CreateBlog(ctx context.Context, owner, title, description string) (*model.BlogRecord, error) {
	return m.createBlogFn(ctx, owner, title, description)
}

func (m *mockBlogService) GetBlogs(ctx context.Context, owner string) ([]model.BlogRecord, error) {
	return m.getBlogsFn(ctx, owner)
}

func (m *mockBlogService) GetBlog(ctx context.Context, owner, blogID string) (*model.BlogRecord, error) {
	return m.getBlogFn(ctx, owner, blogID)
}

func (m *mockBlogService) UpdateBlog(ctx context.Context, owner, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
	return m.updateBlogFn(ctx, owner, blogID, upd)
}

func (m *mockBlogService) DeleteBlog(ctx context.Context, owner, blogID string) error {
	return m.deleteBlogFn(ctx, owner, blogID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/mwlogger"
	"github.com/photoblog/photoflow/internal/repository"
)

// BlogService обслуживает блог-пространства владельца; картинки крепятся к
// блогу при загрузке через metadata["blog_space_id"]
type BlogService struct {
	blogs repository.BlogRepo
}

func NewBlogService(blogs repository.BlogRepo) *BlogService {
	return &BlogService{blogs: blogs}
}

func (c BlogService) CreateBlog(ctx context.Context, owner, title, description string) (*model.BlogRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return nil, model.ErrEmptyTitle
	}

	now := time.Now().UTC()
	blog := &model.BlogRecord{
		UserID:      owner,
		BlogID:      uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	if err := c.blogs.Create(ctx, blog); err != nil {
		logger.Error().Err(err).Msg("Failed to create blog record in DB")
		return nil, model.ErrCommon500
	}

	return blog, nil
}

func (c BlogService) GetBlogs(ctx context.Context, owner string) ([]model.BlogRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	blogs, err := c.blogs.GetList(ctx, owner)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch blogs list from DB")
		return nil, model.ErrCommon500
	}
	return blogs, nil
}

func (c BlogService) GetBlog(ctx context.Context, owner, blogID string) (*model.BlogRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	blog, err := c.blogs.Get(ctx, owner, blogID)
	if err != nil {
		if errors.Is(err, model.ErrBlogNotFound) {
			return nil, model.ErrBlogNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to fetch blog %q from DB", blogID))
		return nil, model.ErrCommon500
	}
	return blog, nil
}

// UpdateBlog применяет частичное обновление; nil-поля не трогаются
func (c BlogService) UpdateBlog(ctx context.Context, owner, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if upd == nil || (upd.Title == nil && upd.Description == nil) {
		return c.GetBlog(ctx, owner, blogID)
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, model.ErrEmptyTitle
	}

	blog, err := c.blogs.Update(ctx, owner, blogID, upd)
	if err != nil {
		if errors.Is(err, model.ErrBlogNotFound) {
			return nil, model.ErrBlogNotFound
		}
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to update blog %q in DB", blogID))
		return nil, model.ErrCommon500
	}
	return blog, nil
}

func (c BlogService) DeleteBlog(ctx context.Context, owner, blogID string) error {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := c.blogs.Delete(ctx, owner, blogID); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to delete blog %q from DB", blogID))
		return model.ErrCommon500
	}
	return nil
}

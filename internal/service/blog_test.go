package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/stretchr/testify/require"
)

func testBlog() *model.BlogRecord {
	now := time.Now().UTC()
	return &model.BlogRecord{
		UserID:      testOwner,
		BlogID:      "11111111-2222-3333-4444-555555555555",
		Title:       "Travel",
		Description: "Trips and hikes",
		PhotoCount:  3,
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}
}

// CREATE BLOG - SUCCESS

func TestBlogService_CreateBlog_OK(t *testing.T) {
	var created *model.BlogRecord
	blogs := &mockBlogs{
		createFn: func(ctx context.Context, b *model.BlogRecord) error {
			created = b
			return nil
		},
	}
	svc := NewBlogService(blogs)

	blog, err := svc.CreateBlog(context.Background(), testOwner, "Travel", "Trips and hikes")
	require.NoError(t, err)
	require.NotNil(t, created)

	require.Equal(t, testOwner, blog.UserID)
	require.Equal(t, "Travel", blog.Title)
	require.Equal(t, "Trips and hikes", blog.Description)
	require.NoError(t, uuid.Validate(blog.BlogID))
	require.NotNil(t, blog.CreatedAt)
	require.WithinDuration(t, time.Now().UTC(), *blog.CreatedAt, time.Minute)
}

// CREATE BLOG - VALIDATION

func TestBlogService_CreateBlog_EmptyTitle(t *testing.T) {
	blogs := &mockBlogs{
		createFn: func(ctx context.Context, b *model.BlogRecord) error {
			t.Fatal("blog with empty title must not reach the repository")
			return nil
		},
	}
	svc := NewBlogService(blogs)

	_, err := svc.CreateBlog(context.Background(), testOwner, "   ", "desc")
	require.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestBlogService_CreateBlog_RepoError(t *testing.T) {
	blogs := &mockBlogs{
		createFn: func(ctx context.Context, b *model.BlogRecord) error {
			return errors.New("db down")
		},
	}
	svc := NewBlogService(blogs)

	_, err := svc.CreateBlog(context.Background(), testOwner, "Travel", "")
	require.ErrorIs(t, err, model.ErrCommon500)
}

// GET BLOGS

func TestBlogService_GetBlogs_OK(t *testing.T) {
	blogs := &mockBlogs{
		getListFn: func(ctx context.Context, userID string) ([]model.BlogRecord, error) {
			require.Equal(t, testOwner, userID)
			return []model.BlogRecord{*testBlog()}, nil
		},
	}
	svc := NewBlogService(blogs)

	list, err := svc.GetBlogs(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 3, list[0].PhotoCount)
}

func TestBlogService_GetBlog_NotFound(t *testing.T) {
	blogs := &mockBlogs{
		getFn: func(ctx context.Context, userID, blogID string) (*model.BlogRecord, error) {
			return nil, model.ErrBlogNotFound
		},
	}
	svc := NewBlogService(blogs)

	_, err := svc.GetBlog(context.Background(), testOwner, "missing")
	require.ErrorIs(t, err, model.ErrBlogNotFound)
}

// UPDATE BLOG

func TestBlogService_UpdateBlog(t *testing.T) {
	newTitle := "Hiking"
	blank := "  "

	tests := []struct {
		name    string
		upd     *model.BlogUpdate
		wantErr error
	}{
		{
			name: "title updated",
			upd:  &model.BlogUpdate{Title: &newTitle},
		},
		{
			name:    "blank title rejected",
			upd:     &model.BlogUpdate{Title: &blank},
			wantErr: model.ErrEmptyTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blogs := &mockBlogs{
				updateFn: func(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
					require.Equal(t, tt.upd, upd)
					blog := testBlog()
					blog.Title = *upd.Title
					return blog, nil
				},
			}
			svc := NewBlogService(blogs)

			blog, err := svc.UpdateBlog(context.Background(), testOwner, "blog-1", tt.upd)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, newTitle, blog.Title)
		})
	}
}

// пустое обновление работает как чтение, репозиторий Update не трогается
func TestBlogService_UpdateBlog_NoFields(t *testing.T) {
	blogs := &mockBlogs{
		getFn: func(ctx context.Context, userID, blogID string) (*model.BlogRecord, error) {
			return testBlog(), nil
		},
		updateFn: func(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
			t.Fatal("empty update must not hit the repository Update")
			return nil, nil
		},
	}
	svc := NewBlogService(blogs)

	blog, err := svc.UpdateBlog(context.Background(), testOwner, "blog-1", &model.BlogUpdate{})
	require.NoError(t, err)
	require.Equal(t, "Travel", blog.Title)
}

func TestBlogService_UpdateBlog_NotFound(t *testing.T) {
	newTitle := "Hiking"
	blogs := &mockBlogs{
		updateFn: func(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
			return nil, model.ErrBlogNotFound
		},
	}
	svc := NewBlogService(blogs)

	_, err := svc.UpdateBlog(context.Background(), testOwner, "missing", &model.BlogUpdate{Title: &newTitle})
	require.ErrorIs(t, err, model.ErrBlogNotFound)
}

// DELETE BLOG

func TestBlogService_DeleteBlog_OK(t *testing.T) {
	var deleted string
	blogs := &mockBlogs{
		deleteFn: func(ctx context.Context, userID, blogID string) error {
			require.Equal(t, testOwner, userID)
			deleted = blogID
			return nil
		},
	}
	svc := NewBlogService(blogs)

	require.NoError(t, svc.DeleteBlog(context.Background(), testOwner, "blog-1"))
	require.Equal(t, "blog-1", deleted)
}

package transport

import (
	"context"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type BlogHandler struct {
	service BlogService
}

type BlogService interface {
	CreateBlog(ctx context.Context, owner, title, description string) (*model.BlogRecord, error)
	GetBlogs(ctx context.Context, owner string) ([]model.BlogRecord, error)
	GetBlog(ctx context.Context, owner, blogID string) (*model.BlogRecord, error)
	UpdateBlog(ctx context.Context, owner, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error)
	DeleteBlog(ctx context.Context, owner, blogID string) error
}

func NewBlogHandler(svc BlogService) *BlogHandler {
	return &BlogHandler{
		service: svc,
	}
}

type blogBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h BlogHandler) Create(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}

	var body blogBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse request body"})
		return
	}

	blog, err := h.service.CreateBlog(ctx.Request.Context(), owner, body.Title, body.Description)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, blog)
}

func (h BlogHandler) GetAll(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}

	blogs, err := h.service.GetBlogs(ctx.Request.Context(), owner)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]any{"blogs": blogs, "count": len(blogs)})
}

func (h BlogHandler) Get(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	blogID := ctx.Param("blog_id")

	blog, err := h.service.GetBlog(ctx.Request.Context(), owner, blogID)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, blog)
}

func (h BlogHandler) Update(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	blogID := ctx.Param("blog_id")

	var upd model.BlogUpdate
	if err := ctx.ShouldBindJSON(&upd); err != nil {
		ctx.JSON(400, map[string]string{"error": "failed to parse request body"})
		return
	}

	blog, err := h.service.UpdateBlog(ctx.Request.Context(), owner, blogID, &upd)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, blog)
}

func (h BlogHandler) Delete(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	blogID := ctx.Param("blog_id")

	if err := h.service.DeleteBlog(ctx.Request.Context(), owner, blogID); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.Status(204)
}

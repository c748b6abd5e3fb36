// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type ImageHandler struct {
	service ImageService
}

type ImageService interface {
	CreateUpload(ctx context.Context, data *model.UploadData) (*model.ImageRecord, error)
	GetImage(ctx context.Context, owner, imageID string, generateShare bool) (*model.ImageRecord, *model.ShareRecord, error)
	GetList(ctx context.Context, owner string, req *model.ListRequest) ([]model.ImageRecord, error)
	SetDeletionMode(ctx context.Context, owner, imageID string, mode model.DeletionMode) error
	Restore(ctx context.Context, owner, imageID string) error
	ResolveShare(ctx context.Context, token string) (*model.ShareRecord, error)
}

func NewImageHandler(svc ImageService) *ImageHandler {
	return &ImageHandler{
		service: svc,
	}
}

func (h ImageHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// Upload принимает multipart-файл и запускает асинхронную обработку
func (h ImageHandler) Upload(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}

	imageFile, imageHeader, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(400, map[string]string{"error": "image is required"})
		return
	}
	defer closeFileFlow(imageFile)

	data := model.UploadData{
		Owner:       owner,
		FileName:    imageHeader.Filename,
		ContentType: imageHeader.Header.Get("Content-Type"),
		Size:        imageHeader.Size,
		BlogID:      ctx.Query("blog_space_id"),
		Body:        imageFile,
	}

	rec, err := h.service.CreateUpload(ctx.Request.Context(), &data)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(201, rec)
}

func (h ImageHandler) GetAllImages(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}

	var req model.ListRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(errorCodeDefiner(model.ErrIncorrectQuery), map[string]string{"error": model.ErrIncorrectQuery.Error()})
		return
	}

	res, err := h.service.GetList(ctx.Request.Context(), owner, &req)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]any{"images": res, "count": len(res)})
}

func (h ImageHandler) GetImage(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	imageID := ctx.Param("id")
	generateShare := ctx.Query("generate_share") == "true"

	rec, share, err := h.service.GetImage(ctx.Request.Context(), owner, imageID, generateShare)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	resp := map[string]any{"image": rec}
	if share != nil {
		resp["shareInfo"] = share
	}
	ctx.JSON(200, resp)
}

func (h ImageHandler) Delete(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	imageID := ctx.Param("id")
	mode := model.DeletionMode(ctx.Query("deletion_type"))

	if err := h.service.SetDeletionMode(ctx.Request.Context(), owner, imageID, mode); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]string{
		"message": "Successfully deleted " + imageID + " - using " + string(mode) + " deletion",
	})
}

func (h ImageHandler) Restore(ctx *ginext.Context) {
	owner, ok := ownerIdentity(ctx)
	if !ok {
		return
	}
	imageID := ctx.Param("id")

	if err := h.service.Restore(ctx.Request.Context(), owner, imageID); err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]string{"message": "Successfully restored image - " + imageID})
}

// SharedView - гостевой доступ по токену, без владельческой идентичности
func (h ImageHandler) SharedView(ctx *ginext.Context) {
	token := ctx.Param("share_token")

	share, err := h.service.ResolveShare(ctx.Request.Context(), token)
	if err != nil {
		ctx.JSON(errorCodeDefiner(err), map[string]string{"error": err.Error()})
		return
	}

	ctx.JSON(200, map[string]any{"data": share})
}

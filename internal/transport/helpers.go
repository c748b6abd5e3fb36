package transport

import (
	"errors"
	"io"
	"log"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/ginext"
)

// Идентичность владельца уже разрезолвлена шлюзом до нас
const ownerHeader = "X-User-Email"

func ownerIdentity(ctx *ginext.Context) (string, bool) {
	owner := ctx.GetHeader(ownerHeader)
	if owner == "" {
		ctx.JSON(401, map[string]string{"error": "caller identity is missing"})
		return "", false
	}
	return owner, true
}

func errorCodeDefiner(err error) int {
	switch {
	case errors.Is(err, model.ErrCommon500):
		return 500
	case errors.Is(err, model.ErrImageNotFound),
		errors.Is(err, model.ErrShareNotFound),
		errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrBlogNotFound),
		errors.Is(err, model.ErrImageNotReady):
		return 404
	case errors.Is(err, model.ErrUndecodableImage):
		return 422
	case errors.Is(err, model.ErrIncorrectQuery),
		errors.Is(err, model.ErrIncorrectKey),
		errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrInvalidDeletion),
		errors.Is(err, model.ErrShareUnavailable),
		errors.Is(err, model.ErrEmptySource),
		errors.Is(err, model.ErrEmptyTitle),
		errors.Is(err, model.ErrUnsupportedFormat):
		return 400
	default:
		return 500
	}
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Handler failed to close fileflow:", err)
	}
}

package service

import (
	"path"
	"strings"

	"github.com/photoblog/photoflow/internal/model"
)

func validateQueryParams(req *model.ListRequest) {
	// Обрабатываем пустые значения, присваиваем дефолты если надо
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 30
	}
	if req.Sort == "" {
		req.Sort = model.ByCreated
	}
	if req.Order == "" {
		req.Order = model.OrderDESC
	}

	// Валидируем непустое поле типа сортировки
	req.Sort = strings.ToLower(req.Sort)
	req.Sort = strings.TrimSpace(req.Sort)
	switch {
	case strings.Contains(req.Sort, model.ByImageID):
		req.Sort = "image_id"
	case strings.Contains(req.Sort, model.ByCreated):
		req.Sort = "created_at"
	default:
		req.Sort = "created_at" // по дефолту ставим сортировку по времени создания
	}

	// Валадируем непустой порядок
	req.Order = strings.ToLower(req.Order)
	req.Order = strings.TrimSpace(req.Order)
	switch {
	case strings.Contains(req.Order, model.OrderASC):
		req.Order = "ASC"
	case strings.Contains(req.Order, model.OrderDESC):
		req.Order = "DESC"
	default:
		req.Order = "DESC" // по дефолту ставим сортировку "новое-выше"
	}
}

func validateUploadData(data *model.UploadData) error {
	if data == nil || data.Body == nil || data.Size <= 0 {
		return model.ErrEmptySource
	}
	if data.Owner == "" || data.FileName == "" {
		return model.ErrEmptySource
	}
	if !model.InImageTypeMap[data.ContentType] {
		return model.ErrUnsupportedFormat
	}
	return nil
}

func trimExt(fileName string) string {
	return strings.TrimSuffix(fileName, path.Ext(fileName))
}

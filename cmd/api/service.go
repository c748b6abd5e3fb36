package main

import (
	"context"

	"github.com/photoblog/photoflow/internal/model"
)

type ImageAPIService interface {
	CreateUpload(ctx context.Context, data *model.UploadData) (*model.ImageRecord, error)
	GetImage(ctx context.Context, owner, imageID string, generateShare bool) (*model.ImageRecord, *model.ShareRecord, error)
	GetList(ctx context.Context, owner string, req *model.ListRequest) ([]model.ImageRecord, error)
	SetDeletionMode(ctx context.Context, owner, imageID string, mode model.DeletionMode) error
	Restore(ctx context.Context, owner, imageID string) error
	ResolveShare(ctx context.Context, token string) (*model.ShareRecord, error)
}

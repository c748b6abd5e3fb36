// Package pgstore implements the record stores on top of Postgres
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type ImageStore struct {
	DB *dbpg.DB
}

func (p ImageStore) Create(ctx context.Context, rec *model.ImageRecord) error {
	query := `INSERT INTO images (user_id, image_id, status, s3_key, url, content_type, size, attempts, likes, deletion_mode, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	return p.DB.QueryRowContext(ctx, query,
		rec.UserID, rec.ImageID, rec.Status, rec.S3Key, rec.URL,
		rec.ContentType, rec.Size, rec.Attempts, rec.Likes,
		rec.Deletion, rec.Metadata, rec.CreatedAt, rec.CreatedAt).Err()
}

// Upsert - коммит оркестратора: повторная доставка перезаписывает ту же
// запись по ключу (user_id, image_id), дублей не бывает
func (p ImageStore) Upsert(ctx context.Context, rec *model.ImageRecord) error {
	query := `INSERT INTO images (user_id, image_id, status, s3_key, url, content_type, size, attempts, likes, deletion_mode, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (user_id, image_id) DO UPDATE SET
		status = EXCLUDED.status,
		s3_key = EXCLUDED.s3_key,
		url = EXCLUDED.url,
		content_type = EXCLUDED.content_type,
		size = EXCLUDED.size,
		attempts = GREATEST(images.attempts, EXCLUDED.attempts),
		deletion_mode = EXCLUDED.deletion_mode,
		metadata = images.metadata || EXCLUDED.metadata,
		updated_at = EXCLUDED.updated_at`
	return p.DB.QueryRowContext(ctx, query,
		rec.UserID, rec.ImageID, rec.Status, rec.S3Key, rec.URL,
		rec.ContentType, rec.Size, rec.Attempts, rec.Likes,
		rec.Deletion, rec.Metadata, rec.CreatedAt, rec.UpdatedAt).Err()
}

func (p ImageStore) Get(ctx context.Context, userID, imageID string) (*model.ImageRecord, error) {
	query := `SELECT user_id, image_id, status, s3_key, url, content_type, size, attempts, likes, deletion_mode, metadata, created_at, updated_at
	FROM images
	WHERE user_id = $1 AND image_id = $2`
	var rec model.ImageRecord

	err := p.DB.QueryRowContext(ctx, query, userID, imageID).Scan(
		&rec.UserID,
		&rec.ImageID,
		&rec.Status,
		&rec.S3Key,
		&rec.URL,
		&rec.ContentType,
		&rec.Size,
		&rec.Attempts,
		&rec.Likes,
		&rec.Deletion,
		&rec.Metadata,
		&rec.CreatedAt,
		&rec.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrImageNotFound
		default:
			return nil, err // 500
		}
	}
	return &rec, nil
}

func (p ImageStore) GetList(ctx context.Context, userID string, req *model.ListRequest) ([]model.ImageRecord, error) {
	query := fmt.Sprintf(`SELECT user_id, image_id, status, s3_key, url, content_type, size, attempts, likes, deletion_mode, metadata, created_at, updated_at
	FROM images
	WHERE user_id = $1
	ORDER BY %s %s
	LIMIT $2
	OFFSET $3`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, userID, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	records := make([]model.ImageRecord, 0, req.Limit)
	for rows.Next() {
		var rec model.ImageRecord
		if err := rows.Scan(&rec.UserID,
			&rec.ImageID,
			&rec.Status,
			&rec.S3Key,
			&rec.URL,
			&rec.ContentType,
			&rec.Size,
			&rec.Attempts,
			&rec.Likes,
			&rec.Deletion,
			&rec.Metadata,
			&rec.CreatedAt,
			&rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return records, nil
}

func (p ImageStore) Delete(ctx context.Context, userID, imageID string) error {
	query := `DELETE FROM images
	WHERE user_id = $1 AND image_id = $2`

	row := p.DB.QueryRowContext(ctx, query, userID, imageID)
	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

func (p ImageStore) SetDeletionMode(ctx context.Context, userID, imageID string, mode model.DeletionMode) error {
	query := `UPDATE images SET deletion_mode = $1, updated_at = now() WHERE user_id = $2 AND image_id = $3`
	row := p.DB.QueryRowContext(ctx, query, mode, userID, imageID)

	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

func (p ImageStore) UpdateStatus(ctx context.Context, userID, imageID string, newStat model.Status) error {
	query := `UPDATE images SET status = $1, updated_at = now() WHERE user_id = $2 AND image_id = $3`
	row := p.DB.QueryRowContext(ctx, query, newStat, userID, imageID)

	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrImageNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

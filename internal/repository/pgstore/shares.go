package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type ShareStore struct {
	DB *dbpg.DB
}

func (p ShareStore) Create(ctx context.Context, s *model.ShareRecord) error {
	query := `INSERT INTO shares (share_token, user_id, image_id, guest_url, deletion_mode, metadata, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	return p.DB.QueryRowContext(ctx, query,
		s.Token, s.UserID, s.ImageID, s.GuestURL,
		s.Deletion, s.Metadata, s.CreatedAt, s.ExpiresAt).Err()
}

func (p ShareStore) GetByToken(ctx context.Context, token string) (*model.ShareRecord, error) {
	query := `SELECT share_token, user_id, image_id, guest_url, deletion_mode, metadata, created_at, expires_at
	FROM shares
	WHERE share_token = $1`
	var s model.ShareRecord

	err := p.DB.QueryRowContext(ctx, query, token).Scan(
		&s.Token,
		&s.UserID,
		&s.ImageID,
		&s.GuestURL,
		&s.Deletion,
		&s.Metadata,
		&s.CreatedAt,
		&s.ExpiresAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrShareNotFound
		default:
			return nil, err // 500
		}
	}
	return &s, nil
}

// ListByImage находит все ссылки на изображение через индекс (user_id, image_id)
func (p ShareStore) ListByImage(ctx context.Context, userID, imageID string) ([]model.ShareRecord, error) {
	query := `SELECT share_token, user_id, image_id, guest_url, deletion_mode, metadata, created_at, expires_at
	FROM shares
	WHERE user_id = $1 AND image_id = $2`

	rows, err := p.DB.QueryContext(ctx, query, userID, imageID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	shares := make([]model.ShareRecord, 0)
	for rows.Next() {
		var s model.ShareRecord
		if err := rows.Scan(&s.Token,
			&s.UserID,
			&s.ImageID,
			&s.GuestURL,
			&s.Deletion,
			&s.Metadata,
			&s.CreatedAt,
			&s.ExpiresAt); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return shares, nil
}

func (p ShareStore) SetDeletionMode(ctx context.Context, token string, mode model.DeletionMode) error {
	query := `UPDATE shares SET deletion_mode = $1 WHERE share_token = $2`
	row := p.DB.QueryRowContext(ctx, query, mode, token)

	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrShareNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

func (p ShareStore) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM shares
	WHERE share_token = $1`

	row := p.DB.QueryRowContext(ctx, query, token)
	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrShareNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

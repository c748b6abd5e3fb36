package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/wb-go/wbf/dbpg"
)

type BlogStore struct {
	DB *dbpg.DB
}

// photo_count не хранится, а считается по картинкам, привязанным к блогу
// через metadata->>'blog_space_id'
const blogColumns = `user_id, blog_id, title, description,
	(SELECT count(*) FROM images i
		WHERE i.user_id = blogs.user_id AND i.metadata->>'blog_space_id' = blogs.blog_id) AS photo_count,
	created_at, updated_at`

func (p BlogStore) Create(ctx context.Context, b *model.BlogRecord) error {
	query := `INSERT INTO blogs (user_id, blog_id, title, description, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)`
	return p.DB.QueryRowContext(ctx, query,
		b.UserID, b.BlogID, b.Title, b.Description, b.CreatedAt, b.CreatedAt).Err()
}

func (p BlogStore) Get(ctx context.Context, userID, blogID string) (*model.BlogRecord, error) {
	query := `SELECT ` + blogColumns + `
	FROM blogs
	WHERE user_id = $1 AND blog_id = $2`
	var b model.BlogRecord

	err := p.DB.QueryRowContext(ctx, query, userID, blogID).Scan(
		&b.UserID,
		&b.BlogID,
		&b.Title,
		&b.Description,
		&b.PhotoCount,
		&b.CreatedAt,
		&b.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrBlogNotFound
		default:
			return nil, err // 500
		}
	}
	return &b, nil
}

func (p BlogStore) GetList(ctx context.Context, userID string) ([]model.BlogRecord, error) {
	query := `SELECT ` + blogColumns + `
	FROM blogs
	WHERE user_id = $1
	ORDER BY created_at DESC`

	rows, err := p.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	blogs := make([]model.BlogRecord, 0)
	for rows.Next() {
		var b model.BlogRecord
		if err := rows.Scan(&b.UserID,
			&b.BlogID,
			&b.Title,
			&b.Description,
			&b.PhotoCount,
			&b.CreatedAt,
			&b.UpdatedAt); err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return blogs, nil
}

// Update применяет только непустые поля и возвращает итоговую запись
func (p BlogStore) Update(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error) {
	query := `UPDATE blogs SET
		title = COALESCE($1, title),
		description = COALESCE($2, description),
		updated_at = now()
	WHERE user_id = $3 AND blog_id = $4
	RETURNING user_id, blog_id, title, description, created_at, updated_at`
	var b model.BlogRecord

	err := p.DB.QueryRowContext(ctx, query, upd.Title, upd.Description, userID, blogID).Scan(
		&b.UserID,
		&b.BlogID,
		&b.Title,
		&b.Description,
		&b.CreatedAt,
		&b.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrBlogNotFound
		default:
			return nil, err // 500
		}
	}
	return &b, nil
}

func (p BlogStore) Delete(ctx context.Context, userID, blogID string) error {
	query := `DELETE FROM blogs
	WHERE user_id = $1 AND blog_id = $2`

	row := p.DB.QueryRowContext(ctx, query, userID, blogID)
	if row.Err() != nil {
		switch {
		case errors.Is(row.Err(), sql.ErrNoRows):
			return model.ErrBlogNotFound // 404
		default:
			return row.Err() // 500
		}
	}
	return nil
}

// Package model provides data-structs for internal app-usage
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

type (
	Status       string
	DeletionMode string
)

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
	StatusNotFound   Status = "not_found"
)

var StatusMap = map[Status]bool{
	StatusProcessing: true,
	StatusReady:      true,
	StatusFailed:     true,
	StatusNotFound:   true,
}

const (
	DeletionNone DeletionMode = "none"
	DeletionSoft DeletionMode = "soft"
	DeletionHard DeletionMode = "hard"
)

var DeletionModeMap = map[DeletionMode]bool{
	DeletionNone: true,
	DeletionSoft: true,
	DeletionHard: true,
}

// MaxAttempts - ceiling for processing tries of one staged object
const MaxAttempts = 3

// RetryDelay - cooldown before a requeued task becomes deliverable again
const RetryDelay = 60 * time.Second

const (
	ShareTTL     = 3 * time.Hour  // guest share window
	OwnerViewTTL = 24 * time.Hour // authenticated-owner access window
)

//---------------------

// ImageRecord - one record per (owner, image id); commits are keyed upserts,
// so redelivered tasks overwrite instead of duplicating
type ImageRecord struct {
	UserID      string       `json:"user_id"`
	ImageID     string       `json:"image_id"`
	Status      Status       `json:"status"`
	S3Key       string       `json:"s3_key"`
	URL         string       `json:"url,omitempty"`
	ContentType string       `json:"content_type,omitempty"`
	Size        int64        `json:"size,omitempty"`
	Attempts    int          `json:"attempts"`
	Likes       int          `json:"likes"`
	Deletion    DeletionMode `json:"deletion_mode"`
	Metadata    MetaMap      `json:"metadata,omitempty"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`

	PresignedURL string `json:"presigned_url,omitempty"`
}

// ShareRecord - one record per issued guest token, back-referencing its
// ImageRecord by (user id, image id)
type ShareRecord struct {
	Token     string       `json:"share_token"`
	UserID    string       `json:"user_id"`
	ImageID   string       `json:"image_id"`
	GuestURL  string       `json:"guest_url,omitempty"`
	Deletion  DeletionMode `json:"deletion_mode"`
	Metadata  MetaMap      `json:"metadata,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Usable reports whether the token still grants guest access
func (s *ShareRecord) Usable(now time.Time) bool {
	return s.Deletion == DeletionNone && now.Before(s.ExpiresAt)
}

// BlogRecord - одно блог-пространство владельца; картинки ссылаются на него
// через metadata["blog_space_id"], photo_count считается по этой связи
type BlogRecord struct {
	UserID      string     `json:"user_id"`
	BlogID      string     `json:"blog_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	PhotoCount  int        `json:"photoCount"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// BlogUpdate - частичное обновление: nil-поле не трогаем
type BlogUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// RetryTask - the unit of work delivered to the orchestrator; lives only in the queue
type RetryTask struct {
	Bucket    string    `json:"bucket"`
	Key       string    `json:"key"`
	Attempt   int       `json:"attempt"`
	LastError string    `json:"error,omitempty"`
	NotBefore time.Time `json:"not_before"`
}

// UploadData - raw intake passed from transport to the upload flow
type UploadData struct {
	Owner       string
	FileName    string
	ContentType string
	Size        int64
	BlogID      string // опционально: блог-пространство, к которому крепится картинка
	Body        io.Reader
}

//-------------------

type ListRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Sort  string `form:"sort"`
	Order string `form:"order"`
}

const (
	ByImageID = "image"
	ByCreated = "created"
	OrderASC  = "ascend"
	OrderDESC = "descend"
)

// ------------------

var (
	ErrCommon500         error = errors.New("something went wrong. Try again later")    // 500
	ErrIncorrectQuery    error = errors.New("incorrect query parameters")               // 400
	ErrIncorrectKey      error = errors.New("incorrect storage key")                    // 400
	ErrImageNotFound     error = errors.New("specified image doesn't exist")            // 404
	ErrShareNotFound     error = errors.New("shared link not found or has expired")     // 404
	ErrUserNotFound      error = errors.New("specified user doesn't exist")             // 404
	ErrInvalidTransition error = errors.New("deletion state doesn't allow this change") // 400
	ErrInvalidDeletion   error = errors.New("deletion type must be 'soft' or 'hard'")   // 400
	ErrShareUnavailable  error = errors.New("image is deleted and cannot be shared")    // 400
	ErrEmptySource       error = errors.New("empty/incorrect source image provided")    // 400
	ErrUnsupportedFormat error = errors.New("unsupported image format")                 // 400
	ErrUndecodableImage  error = errors.New("image cannot be decoded")                  // 422
	ErrImageNotReady     error = errors.New("requested image is not processed yet")     // 404
	ErrBlogNotFound      error = errors.New("specified blog doesn't exist")             // 404
	ErrEmptyTitle        error = errors.New("blog title is required")                   // 400
)

//--------------------

const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	GIF  = "image/gif"
)

var GetImageFileExt = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
}

var InImageTypeMap = map[string]bool{
	JPEG: true,
	PNG:  true,
	GIF:  true,
}

//--------------------

// MetaMap - arbitrary string metadata persisted as JSONB
type MetaMap map[string]string

func (m *MetaMap) Scan(value any) error {
	if value == nil {
		*m = MetaMap{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("invalid type for MetaMap")
	}

	if err := json.Unmarshal(b, m); err != nil {
		return fmt.Errorf("failed to unmarshal JSONB to MetaMap: %w", err)
	}
	return nil
}

func (m MetaMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte(`{}`), nil
	}
	res, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal MetaMap to JSONB: %w", err)
	}

	return res, nil
}

package pgstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/dbpg"
)

func newImageStoreWithMock(t *testing.T) (ImageStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return ImageStore{DB: &dbpg.DB{Master: db}}, mock
}

func newShareStoreWithMock(t *testing.T) (ShareStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return ShareStore{DB: &dbpg.DB{Master: db}}, mock
}

var imageColumns = []string{
	"user_id", "image_id", "status", "s3_key", "url", "content_type",
	"size", "attempts", "likes", "deletion_mode", "metadata",
	"created_at", "updated_at",
}

var shareColumns = []string{
	"share_token", "user_id", "image_id", "guest_url",
	"deletion_mode", "metadata", "created_at", "expires_at",
}

// CREATE - SUCCESS
func TestImageStore_Create_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	ctime := time.Now()
	rec := &model.ImageRecord{
		UserID:    "alice@example.com",
		ImageID:   "id1_cat",
		Status:    model.StatusProcessing,
		S3Key:     "alice@example.com/id1_cat.png",
		Deletion:  model.DeletionNone,
		Metadata:  model.MetaMap{"original_filename": "cat.png"},
		CreatedAt: &ctime,
	}

	mock.ExpectQuery(`INSERT INTO images`).
		WithArgs(
			rec.UserID,
			rec.ImageID,
			rec.Status,
			rec.S3Key,
			rec.URL,
			rec.ContentType,
			rec.Size,
			rec.Attempts,
			rec.Likes,
			rec.Deletion,
			rec.Metadata,
			rec.CreatedAt,
			rec.CreatedAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Create(context.Background(), rec)
	require.NoError(t, err)
}

// UPSERT - SUCCESS (same key just overwrites)
func TestImageStore_Upsert_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	now := time.Now()
	rec := &model.ImageRecord{
		UserID:    "alice@example.com",
		ImageID:   "id1_cat",
		Status:    model.StatusReady,
		S3Key:     "alice@example.com/id1_cat.png",
		Attempts:  2,
		Deletion:  model.DeletionNone,
		Metadata:  model.MetaMap{},
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	mock.ExpectQuery(`ON CONFLICT \(user_id, image_id\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Upsert(context.Background(), rec)
	require.NoError(t, err)
}

// UPSERT - METADATA MERGE
// повторная загрузка не должна стирать ключи, записанные при upload
func TestImageStore_Upsert_MergesMetadata(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	now := time.Now()
	rec := &model.ImageRecord{
		UserID:    "alice@example.com",
		ImageID:   "id1_cat",
		Status:    model.StatusReady,
		S3Key:     "alice@example.com/id1_cat.png",
		Attempts:  1,
		Deletion:  model.DeletionNone,
		Metadata:  model.MetaMap{},
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	mock.ExpectQuery(`metadata = images\.metadata \|\| EXCLUDED\.metadata`).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Upsert(context.Background(), rec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// GET - SUCCESS
func TestImageStore_Get_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	rows := sqlmock.NewRows(imageColumns).AddRow(
		"alice@example.com", "id1_cat", model.StatusReady,
		"alice@example.com/id1_cat.png", "", model.PNG,
		1024, 1, 0, model.DeletionNone, []byte(`{"original_filename":"cat.png"}`),
		time.Now(), time.Now(),
	)

	mock.ExpectQuery(`SELECT user_id, image_id`).
		WithArgs("alice@example.com", "id1_cat").
		WillReturnRows(rows)

	rec, err := store.Get(context.Background(), "alice@example.com", "id1_cat")
	require.NoError(t, err)
	require.Equal(t, model.StatusReady, rec.Status)
	require.Equal(t, "cat.png", rec.Metadata["original_filename"])
}

// GET - NOT FOUND
func TestImageStore_Get_NotFound(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	mock.ExpectQuery(`SELECT user_id, image_id`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "alice@example.com", "nope")
	require.ErrorIs(t, err, model.ErrImageNotFound)
}

// GETLIST - SUCCESS
func TestImageStore_GetList_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	req := &model.ListRequest{
		Page:  1,
		Limit: 2,
		Sort:  "created_at",
		Order: "DESC",
	}

	rows := sqlmock.NewRows(imageColumns).
		AddRow("alice@example.com", "id1_cat", model.StatusReady,
			"alice@example.com/id1_cat.png", "", model.PNG,
			1024, 1, 0, model.DeletionNone, []byte(`{}`), time.Now(), time.Now()).
		AddRow("alice@example.com", "id2_dog", model.StatusProcessing,
			"alice@example.com/id2_dog.jpg", "", model.JPEG,
			2048, 1, 0, model.DeletionNone, []byte(`{}`), time.Now(), time.Now())

	mock.ExpectQuery(`SELECT user_id, image_id`).
		WithArgs("alice@example.com", 2, 0).
		WillReturnRows(rows)

	res, err := store.GetList(context.Background(), "alice@example.com", req)
	require.NoError(t, err)
	require.Len(t, res, 2)
}

// SET DELETION MODE - SUCCESS
func TestImageStore_SetDeletionMode_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	mock.ExpectQuery(`UPDATE images SET deletion_mode`).
		WithArgs(model.DeletionSoft, "alice@example.com", "id1_cat").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.SetDeletionMode(context.Background(), "alice@example.com", "id1_cat", model.DeletionSoft)
	require.NoError(t, err)
}

// UPDATE STATUS - SUCCESS
func TestImageStore_UpdateStatus_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	mock.ExpectQuery(`UPDATE images SET status`).
		WithArgs(model.StatusFailed, "alice@example.com", "id1_cat").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.UpdateStatus(context.Background(), "alice@example.com", "id1_cat", model.StatusFailed)
	require.NoError(t, err)
}

// DELETE - SUCCESS
func TestImageStore_Delete_OK(t *testing.T) {
	store, mock := newImageStoreWithMock(t)

	mock.ExpectQuery(`DELETE FROM images`).
		WithArgs("alice@example.com", "id1_cat").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Delete(context.Background(), "alice@example.com", "id1_cat")
	require.NoError(t, err)
}

// SHARES: CREATE - SUCCESS
func TestShareStore_Create_OK(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	now := time.Now()
	s := &model.ShareRecord{
		Token:     "token1",
		UserID:    "alice@example.com",
		ImageID:   "id1_cat",
		GuestURL:  "https://storage.local/guest",
		Deletion:  model.DeletionNone,
		Metadata:  model.MetaMap{"shared_by": "alice@example.com"},
		CreatedAt: now,
		ExpiresAt: now.Add(model.ShareTTL),
	}

	mock.ExpectQuery(`INSERT INTO shares`).
		WithArgs(s.Token, s.UserID, s.ImageID, s.GuestURL, s.Deletion, s.Metadata, s.CreatedAt, s.ExpiresAt).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Create(context.Background(), s)
	require.NoError(t, err)
}

// SHARES: GET BY TOKEN - SUCCESS
func TestShareStore_GetByToken_OK(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(shareColumns).AddRow(
		"token1", "alice@example.com", "id1_cat", "https://storage.local/guest",
		model.DeletionNone, []byte(`{}`), now, now.Add(model.ShareTTL),
	)

	mock.ExpectQuery(`SELECT share_token`).
		WithArgs("token1").
		WillReturnRows(rows)

	s, err := store.GetByToken(context.Background(), "token1")
	require.NoError(t, err)
	require.Equal(t, "id1_cat", s.ImageID)
}

// SHARES: GET BY TOKEN - NOT FOUND
func TestShareStore_GetByToken_NotFound(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	mock.ExpectQuery(`SELECT share_token`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetByToken(context.Background(), "nope")
	require.ErrorIs(t, err, model.ErrShareNotFound)
}

// SHARES: LIST BY IMAGE - SUCCESS
func TestShareStore_ListByImage_OK(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(shareColumns).
		AddRow("token1", "alice@example.com", "id1_cat", "url1",
			model.DeletionNone, []byte(`{}`), now, now.Add(model.ShareTTL)).
		AddRow("token2", "alice@example.com", "id1_cat", "url2",
			model.DeletionSoft, []byte(`{}`), now, now.Add(model.ShareTTL))

	mock.ExpectQuery(`FROM shares`).
		WithArgs("alice@example.com", "id1_cat").
		WillReturnRows(rows)

	res, err := store.ListByImage(context.Background(), "alice@example.com", "id1_cat")
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Equal(t, model.DeletionSoft, res[1].Deletion)
}

// SHARES: SET DELETION MODE - SUCCESS
func TestShareStore_SetDeletionMode_OK(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	mock.ExpectQuery(`UPDATE shares SET deletion_mode`).
		WithArgs(model.DeletionHard, "token1").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.SetDeletionMode(context.Background(), "token1", model.DeletionHard)
	require.NoError(t, err)
}

// SHARES: DELETE - SUCCESS
func TestShareStore_Delete_OK(t *testing.T) {
	store, mock := newShareStoreWithMock(t)

	mock.ExpectQuery(`DELETE FROM shares`).
		WithArgs("token1").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Delete(context.Background(), "token1")
	require.NoError(t, err)
}

// USERS: DISPLAY NAME
func TestUserStore_DisplayName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	store := UserStore{DB: &dbpg.DB{Master: db}}

	mock.ExpectQuery(`SELECT display_name FROM users`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Alice Smith"))

	name, err := store.DisplayName(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice Smith", name)

	mock.ExpectQuery(`SELECT display_name FROM users`).
		WillReturnError(sql.ErrNoRows)

	_, err = store.DisplayName(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

var blogColumnNames = []string{
	"user_id", "blog_id", "title", "description",
	"photo_count", "created_at", "updated_at",
}

func newBlogStoreWithMock(t *testing.T) (BlogStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return BlogStore{DB: &dbpg.DB{Master: db}}, mock
}

// BLOGS: CREATE - SUCCESS
func TestBlogStore_Create_OK(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	now := time.Now()
	blog := &model.BlogRecord{
		UserID:      "alice@example.com",
		BlogID:      "blog-1",
		Title:       "Travel",
		Description: "Trips and hikes",
		CreatedAt:   &now,
		UpdatedAt:   &now,
	}

	mock.ExpectQuery(`INSERT INTO blogs`).
		WithArgs(blog.UserID, blog.BlogID, blog.Title, blog.Description, blog.CreatedAt, blog.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Create(context.Background(), blog)
	require.NoError(t, err)
}

// BLOGS: GET - SUCCESS
// photo_count считается подзапросом по картинкам с metadata->>'blog_space_id'
func TestBlogStore_Get_OK(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	rows := sqlmock.NewRows(blogColumnNames).AddRow(
		"alice@example.com", "blog-1", "Travel", "Trips and hikes",
		3, time.Now(), time.Now(),
	)

	mock.ExpectQuery(`metadata->>'blog_space_id' = blogs\.blog_id`).
		WithArgs("alice@example.com", "blog-1").
		WillReturnRows(rows)

	blog, err := store.Get(context.Background(), "alice@example.com", "blog-1")
	require.NoError(t, err)
	require.Equal(t, "Travel", blog.Title)
	require.Equal(t, 3, blog.PhotoCount)
}

// BLOGS: GET - NOT FOUND
func TestBlogStore_Get_NotFound(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	mock.ExpectQuery(`FROM blogs`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "alice@example.com", "missing")
	require.ErrorIs(t, err, model.ErrBlogNotFound)
}

// BLOGS: GET LIST - SUCCESS
func TestBlogStore_GetList_OK(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	rows := sqlmock.NewRows(blogColumnNames).
		AddRow("alice@example.com", "blog-1", "Travel", "", 3, time.Now(), time.Now()).
		AddRow("alice@example.com", "blog-2", "Food", "", 0, time.Now(), time.Now())

	mock.ExpectQuery(`FROM blogs`).
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	blogs, err := store.GetList(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	require.Equal(t, 3, blogs[0].PhotoCount)
	require.Equal(t, 0, blogs[1].PhotoCount)
}

// BLOGS: UPDATE - SUCCESS
func TestBlogStore_Update_OK(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	newTitle := "Hiking"
	rows := sqlmock.NewRows([]string{
		"user_id", "blog_id", "title", "description", "created_at", "updated_at",
	}).AddRow("alice@example.com", "blog-1", newTitle, "Trips and hikes", time.Now(), time.Now())

	mock.ExpectQuery(`UPDATE blogs SET`).
		WithArgs(newTitle, nil, "alice@example.com", "blog-1").
		WillReturnRows(rows)

	blog, err := store.Update(context.Background(), "alice@example.com", "blog-1",
		&model.BlogUpdate{Title: &newTitle})
	require.NoError(t, err)
	require.Equal(t, newTitle, blog.Title)
}

// BLOGS: UPDATE - NOT FOUND
func TestBlogStore_Update_NotFound(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	newTitle := "Hiking"
	mock.ExpectQuery(`UPDATE blogs SET`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Update(context.Background(), "alice@example.com", "missing",
		&model.BlogUpdate{Title: &newTitle})
	require.ErrorIs(t, err, model.ErrBlogNotFound)
}

// BLOGS: DELETE - SUCCESS
func TestBlogStore_Delete_OK(t *testing.T) {
	store, mock := newBlogStoreWithMock(t)

	mock.ExpectQuery(`DELETE FROM blogs`).
		WithArgs("alice@example.com", "blog-1").
		WillReturnRows(sqlmock.NewRows([]string{}))

	err := store.Delete(context.Background(), "alice@example.com", "blog-1")
	require.NoError(t, err)
}

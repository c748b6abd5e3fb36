// Package miniostorage provides structure to work with minio-storage
package miniostorage

import (
	"context"
	"errors"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/config"
)

// MinioObjectStorage обслуживает оба бакета приложения:
// staging (сырые загрузки) и processed (обработанные изображения)
type MinioObjectStorage struct {
	client *minio.Client
}

func NewMinioClient(cfg *config.Config, buckets ...string) (*MinioObjectStorage, error) {
	user := cfg.GetString("MINIO_USER")
	pass := cfg.GetString("MINIO_PASS")
	addr := cfg.GetString("MINIO_CONTAINER_NAME")

	// подключаемся к минио - создаем клиента
	strg, err := minio.New(addr+":9000", &minio.Options{
		Creds:  credentials.NewStaticV4(user, pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	// создаем бакеты если их нет
	for _, bucket := range buckets {
		if err := ensureBucket(context.Background(), strg, bucket); err != nil {
			log.Println("Failed to create bucket in MinIO:", err)
			return nil, err
		}
	}

	return &MinioObjectStorage{client: strg}, nil
}

func (s *MinioObjectStorage) Put(ctx context.Context, bucket, key string, size int64, contentType string, r io.Reader) error {
	if r == nil {
		return errors.New("nil reader passed to storage.Put")
	}

	if _, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return err
	}

	return nil
}

func (s *MinioObjectStorage) Delete(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinioObjectStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, string, error) {
	res, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}

	resStat, err := res.Stat()
	if err != nil {
		return nil, "", err
	}

	return res, resStat.ContentType, nil
}

// Head проверяет существование объекта без скачивания
func (s *MinioObjectStorage) Head(ctx context.Context, bucket, key string) error {
	_, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	return err
}

// Presign выдает временную ссылку на скачивание объекта
func (s *MinioObjectStorage) Presign(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, key, ttl, url.Values{})
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

package storage

import (
	"log"
	"time"

	"github.com/photoblog/photoflow/internal/storage/miniostorage"
	"github.com/wb-go/wbf/config"
)

// Buckets - имена бакетов приложения из конфига
type Buckets struct {
	Staging   string
	Processed string
}

func BucketsFromConfig(cfg *config.Config) Buckets {
	b := Buckets{
		Staging:   cfg.GetString("STAGING_BUCKET"),
		Processed: cfg.GetString("PROCESSED_BUCKET"),
	}

	if b.Staging == "" {
		b.Staging = "staging"
		log.Printf("Staging bucket name is empty. Using default value %q...", b.Staging)
	}
	if b.Processed == "" {
		b.Processed = "processed"
		log.Printf("Processed bucket name is empty. Using default value %q...", b.Processed)
	}

	return b
}

func NewObjectStorage(cfg *config.Config, buckets Buckets, delay time.Duration) *miniostorage.MinioObjectStorage {
	success := false
	var client *miniostorage.MinioObjectStorage
	var err error

	for !success {
		log.Println("Connecting to IMG-storage...")
		client, err = miniostorage.NewMinioClient(cfg, buckets.Staging, buckets.Processed)
		if err != nil {
			log.Printf("Failed to init connection to IMG-storage: %v\nNext retry in %v...", err, delay)
			time.Sleep(delay)
			continue
		}
		log.Println("Successfully connected IMG-storage!")
		success = true
	}

	return client
}

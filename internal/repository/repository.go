// Package repository provides methods to work with DB
package repository

import (
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/repository/pgstore"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
)

type ImageRepo interface {
	Create(ctx context.Context, rec *model.ImageRecord) error
	Upsert(ctx context.Context, rec *model.ImageRecord) error
	Get(ctx context.Context, userID, imageID string) (*model.ImageRecord, error)
	GetList(ctx context.Context, userID string, req *model.ListRequest) ([]model.ImageRecord, error)
	Delete(ctx context.Context, userID, imageID string) error
	SetDeletionMode(ctx context.Context, userID, imageID string, mode model.DeletionMode) error
	UpdateStatus(ctx context.Context, userID, imageID string, newStat model.Status) error
}

// ShareRepo - записи гостевых ссылок; выборка по (user_id, image_id) идет
// через индекс, а не скан всей таблицы
type ShareRepo interface {
	Create(ctx context.Context, s *model.ShareRecord) error
	GetByToken(ctx context.Context, token string) (*model.ShareRecord, error)
	ListByImage(ctx context.Context, userID, imageID string) ([]model.ShareRecord, error)
	SetDeletionMode(ctx context.Context, token string, mode model.DeletionMode) error
	Delete(ctx context.Context, token string) error
}

type UserRepo interface {
	DisplayName(ctx context.Context, email string) (string, error)
}

// BlogRepo - блог-пространства владельца; photo_count считается стором
type BlogRepo interface {
	Create(ctx context.Context, b *model.BlogRecord) error
	Get(ctx context.Context, userID, blogID string) (*model.BlogRecord, error)
	GetList(ctx context.Context, userID string) ([]model.BlogRecord, error)
	Update(ctx context.Context, userID, blogID string, upd *model.BlogUpdate) (*model.BlogRecord, error)
	Delete(ctx context.Context, userID, blogID string) error
}

func NewPostgresImageRepo(dbconn *dbpg.DB) ImageRepo {
	return pgstore.ImageStore{DB: dbconn}
}

func NewPostgresShareRepo(dbconn *dbpg.DB) ShareRepo {
	return pgstore.ShareStore{DB: dbconn}
}

func NewPostgresUserRepo(dbconn *dbpg.DB) UserRepo {
	return pgstore.UserStore{DB: dbconn}
}

func NewPostgresBlogRepo(dbconn *dbpg.DB) BlogRepo {
	return pgstore.BlogStore{DB: dbconn}
}

func ConnectWithRetries(appConfig *config.Config, retryCount int, idleTime time.Duration) *dbpg.DB {
	dbOptions := dbpg.Options{
		MaxOpenConns:    5,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
	}
	dsnLink := appConfig.GetString("POSTGRES_DSN")
	var dbConn *dbpg.DB
	var err error

	for i := 0; i < retryCount; i++ {
		dbConn, err = dbpg.New(dsnLink, nil, &dbOptions)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to PGDB: %s\nWaiting %v before next retry...", err, idleTime)
		time.Sleep(idleTime)
	}

	if err != nil {
		log.Fatal("Failed to connect to DB. Exiting the app...")
	}

	return dbConn
}

func MigrateWithRetries(db *sql.DB, migrationsPath string, retries int, idle time.Duration) {
	for i := 0; i < retries; i++ {
		log.Printf("Migration try #%d...", i)
		err := runMigrate(db, migrationsPath)
		if err == nil {
			break
		}
		switch i {
		case retries:
			log.Fatalln("Out of retries. Exiting...")
		default:
			log.Printf("Migration try #%d was unsuccessful. Waiting %v before next try...", i, idle)
			time.Sleep(idle)
		}
	}
}

func runMigrate(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		return err
	}

	sourceURL := "file://" + absPath
	log.Println("Running migrations from:", sourceURL)

	m, err := migrate.NewWithDatabaseInstance(
		sourceURL,
		"postgres",
		driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	log.Println("Database migrations applied successfully")
	return nil
}

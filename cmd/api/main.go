// Package main (in api-subfolder) provides launch of the whole application except worker
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photoblog/photoflow/internal/mwlogger"
	"github.com/photoblog/photoflow/internal/queue"
	"github.com/photoblog/photoflow/internal/repository"
	"github.com/photoblog/photoflow/internal/service"
	"github.com/photoblog/photoflow/internal/storage"
	"github.com/photoblog/photoflow/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	buckets := storage.BucketsFromConfig(appConfig)
	strg := storage.NewObjectStorage(appConfig, buckets, 10*time.Second)

	// создаем экземпляры репозиториев
	imageRepo := repository.NewPostgresImageRepo(dbConn)
	shareRepo := repository.NewPostgresShareRepo(dbConn)
	blogRepo := repository.NewPostgresBlogRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	queue.WaitBrokerReady(broker)
	// создаем топики и подключаемся как продюсер задач
	taskTopic := appConfig.GetString("KAFKA_TASK_TOPIC")
	notifyTopic := appConfig.GetString("KAFKA_NOTIFY_TOPIC")
	queue.InitTopics(ctx, broker, 10*time.Second, taskTopic, notifyTopic)
	pub := wbfkafka.NewProducer([]string{broker}, taskTopic)
	tasks := queue.NewTaskQueue(pub)

	// создаем экземпляр сервиса
	var svc ImageAPIService = service.NewImageService(imageRepo, shareRepo, strg, tasks, buckets)
	// cоздаем экземпляры хендлеров HTTP
	handlers := transport.NewImageHandler(svc)
	blogHandlers := transport.NewBlogHandler(service.NewBlogService(blogRepo))
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/images/upload", handlers.Upload)       // загрузка и постановка на обработку
	engine.GET("/images", handlers.GetAllImages)         // список картинок владельца
	engine.GET("/images/:id", handlers.GetImage)         // одна картинка, ?generate_share=true выдаст гостевую ссылку
	engine.DELETE("/images/:id", handlers.Delete)        // ?deletion_type=soft|hard
	engine.POST("/images/:id/restore", handlers.Restore) // откат soft-удаления
	engine.GET("/shared/:share_token", handlers.SharedView)

	engine.POST("/blogs", blogHandlers.Create) // блог-пространства владельца
	engine.GET("/blogs", blogHandlers.GetAll)
	engine.GET("/blogs/:blog_id", blogHandlers.Get)
	engine.PUT("/blogs/:blog_id", blogHandlers.Update)
	engine.DELETE("/blogs/:blog_id", blogHandlers.Delete)

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting api...")
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}

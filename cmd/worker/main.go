package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/photoblog/photoflow/internal/identity"
	"github.com/photoblog/photoflow/internal/notify"
	"github.com/photoblog/photoflow/internal/orchestrator"
	"github.com/photoblog/photoflow/internal/queue"
	"github.com/photoblog/photoflow/internal/repository"
	"github.com/photoblog/photoflow/internal/storage"
	"github.com/photoblog/photoflow/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// подключиться к хранилищу
	buckets := storage.BucketsFromConfig(appConfig)
	strg := storage.NewObjectStorage(appConfig, buckets, 10*time.Second)
	// создаем экземпляры репозиториев
	imageRepo := repository.NewPostgresImageRepo(dbConn)
	userRepo := repository.NewPostgresUserRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	queue.WaitBrokerReady(broker)

	taskTopic := appConfig.GetString("KAFKA_TASK_TOPIC")
	notifyTopic := appConfig.GetString("KAFKA_NOTIFY_TOPIC")
	groupID := appConfig.GetString("KAFKA_GROUPID")

	// продюсеры: ретраи обратно в очередь задач и уведомления владельцам
	taskPub := wbfkafka.NewProducer([]string{broker}, taskTopic)
	notifyPub := wbfkafka.NewProducer([]string{broker}, notifyTopic)

	tasks := queue.NewTaskQueue(taskPub)
	notifier := notify.NewKafkaNotifier(notifyPub)
	resolver := identity.NewRepoResolver(userRepo)

	orc := orchestrator.New(strg, imageRepo, tasks, notifier, resolver,
		buckets.Processed, appConfig.GetString("PUBLIC_URL_BASE"))

	// подключиться к кафке как читатель
	msgs := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	cons := wbfkafka.NewConsumer([]string{broker}, taskTopic, groupID)

	// Listening to interruptions through context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cons.StartConsuming(ctx, msgs, retryStrategy)

	// Собираем воедино все что нужно воркеру и запускаем его
	go worker.NewWorkerInstance(orc, msgs, cons).StartWorker(ctx)

	// Waiting for interruption to stop context to start Graceful shutdown
	<-ctx.Done()

	shutdown(cons, taskPub, notifyPub, dbConn)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer, taskPub, notifyPub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connections:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
	}
	if err := taskPub.Close(); err != nil {
		log.Println("Failed to close task-producer:", err)
	}
	if err := notifyPub.Close(); err != nil {
		log.Println("Failed to close notify-producer:", err)
	}
	log.Println("Kafka connections closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}

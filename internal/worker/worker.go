// Package worker contains the consume loop delivering queued RetryTasks to
// the orchestrator
package worker

import (
	"context"
	"log"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/orchestrator"
	"github.com/photoblog/photoflow/internal/queue"
	kafkago "github.com/segmentio/kafka-go"
)

// Processor - контракт оркестратора
type Processor interface {
	Process(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error)
}

// Committer - контракт подтверждения сообщений (реализуется wbf/kafka.Consumer)
type Committer interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	processor Processor
	queue     <-chan kafkago.Message
	consumer  Committer
}

func NewWorkerInstance(proc Processor, q <-chan kafkago.Message, cons Committer) *Worker {
	return &Worker{processor: proc, queue: q, consumer: cons}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg kafkago.Message) {
	task, err := queue.DecodeTask(msg)
	if err != nil {
		// битое сообщение - подтверждаем, чтобы не крутиться на нем вечно
		log.Printf("Dropping undecodable task message: %v", err)
		w.commit(ctx, msg)
		return
	}

	// кооперативная задержка ретрая
	if err := queue.WaitUntilDue(ctx, task); err != nil {
		return
	}

	outcome, err := w.processor.Process(ctx, task)
	if err != nil {
		// не подтверждаем - сообщение доедет еще раз
		log.Printf("Task %q attempt %d failed without handoff: %v", task.Key, task.Attempt, err)
		return
	}

	switch {
	case outcome.Retrying:
		log.Printf("Task %q attempt %d requeued: %v", task.Key, task.Attempt, outcome.Cause)
	case outcome.Status == model.StatusFailed:
		log.Printf("Task %q exhausted after attempt %d: %v", task.Key, task.Attempt, outcome.Cause)
	default:
		log.Printf("Task %q finished with status %q", task.Key, outcome.Status)
	}

	w.commit(ctx, msg)
}

func (w *Worker) commit(ctx context.Context, msg kafkago.Message) {
	if err := w.consumer.Commit(ctx, msg); err != nil {
		log.Printf("Failed to commit queue-message: %v", err)
	}
}

// Package queue carries RetryTasks between the upload flow, the failure
// path of the orchestrator and the worker
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/photoblog/photoflow/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/retry"
)

// Sender - контракт продюсера (реализуется wbf/kafka.Producer)
type Sender interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, value []byte) error
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var sendStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

type TaskQueue struct {
	sender Sender
}

func NewTaskQueue(sender Sender) *TaskQueue {
	return &TaskQueue{sender: sender}
}

// Send enqueues the task. Kafka has no native delayed delivery, so the delay
// rides inside the payload as not_before and the consumer holds the task
// until that instant.
func (q *TaskQueue) Send(ctx context.Context, task *model.RetryTask, delay time.Duration) error {
	task.NotBefore = time.Now().UTC().Add(delay)

	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal retry task: %w", err)
	}

	// ключ - storage key, чтобы ретраи одного изображения шли в одну партицию
	if err := q.sender.SendWithRetry(ctx, sendStrategy, []byte(task.Key), payload); err != nil {
		return fmt.Errorf("publish retry task: %w", err)
	}
	return nil
}

// DecodeTask распаковывает сообщение очереди в RetryTask
func DecodeTask(msg kafkago.Message) (*model.RetryTask, error) {
	var task model.RetryTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		return nil, fmt.Errorf("unmarshal retry task: %w", err)
	}

	if task.Attempt < 1 {
		task.Attempt = 1
	}
	return &task, nil
}

// WaitUntilDue blocks until the task's not-before instant or context cancel
func WaitUntilDue(ctx context.Context, task *model.RetryTask) error {
	wait := time.Until(task.NotBefore)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

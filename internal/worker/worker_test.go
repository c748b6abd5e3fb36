package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/photoblog/photoflow/internal/model"
	"github.com/photoblog/photoflow/internal/orchestrator"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type mockProcessor struct {
	processFn func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error)
}

func (m *mockProcessor) Process(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
	return m.processFn(ctx, task)
}

type mockCommitter struct {
	commitFn func(ctx context.Context, msg kafkago.Message) error
}

func (m *mockCommitter) Commit(ctx context.Context, msg kafkago.Message) error {
	if m.commitFn == nil {
		return nil
	}
	return m.commitFn(ctx, msg)
}

func taskMessage(t *testing.T, task *model.RetryTask) kafkago.Message {
	t.Helper()

	payload, err := json.Marshal(task)
	require.NoError(t, err)

	return kafkago.Message{Key: []byte(task.Key), Value: payload}
}

// HANDLE - SUCCESS: task delivered and committed
func TestWorker_handle_OK(t *testing.T) {
	var processed *model.RetryTask
	var committed bool

	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			processed = task
			return &orchestrator.Outcome{Status: model.StatusReady, Attempt: task.Attempt}, nil
		},
	}

	cons := &mockCommitter{
		commitFn: func(ctx context.Context, msg kafkago.Message) error {
			committed = true
			return nil
		},
	}

	w := NewWorkerInstance(proc, nil, cons)
	w.handle(context.Background(), taskMessage(t, &model.RetryTask{Key: "a/b.png", Attempt: 1}))

	require.NotNil(t, processed)
	require.Equal(t, "a/b.png", processed.Key)
	require.True(t, committed)
}

// HANDLE - POISON MESSAGE: committed without processing
func TestWorker_handle_PoisonMessage(t *testing.T) {
	var committed bool

	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			t.Fatal("undecodable message may not reach the processor")
			return nil, nil
		},
	}

	cons := &mockCommitter{
		commitFn: func(ctx context.Context, msg kafkago.Message) error {
			committed = true
			return nil
		},
	}

	w := NewWorkerInstance(proc, nil, cons)
	w.handle(context.Background(), kafkago.Message{Value: []byte("not-json")})

	require.True(t, committed)
}

// HANDLE - HANDOFF FAILURE: no commit, message gets redelivered
func TestWorker_handle_NoCommitOnError(t *testing.T) {
	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			return nil, errors.New("broker down")
		},
	}

	cons := &mockCommitter{
		commitFn: func(ctx context.Context, msg kafkago.Message) error {
			t.Fatal("failed handoff may not be committed")
			return nil
		},
	}

	w := NewWorkerInstance(proc, nil, cons)
	w.handle(context.Background(), taskMessage(t, &model.RetryTask{Key: "a/b.png", Attempt: 1}))
}

// HANDLE - RETRY OUTCOME still commits the consumed message
func TestWorker_handle_CommitsRetryingOutcome(t *testing.T) {
	var committed bool

	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			return &orchestrator.Outcome{
				Status:   model.StatusProcessing,
				Retrying: true,
				Attempt:  task.Attempt,
				Cause:    errors.New("transform failed"),
			}, nil
		},
	}

	cons := &mockCommitter{
		commitFn: func(ctx context.Context, msg kafkago.Message) error {
			committed = true
			return nil
		},
	}

	w := NewWorkerInstance(proc, nil, cons)
	w.handle(context.Background(), taskMessage(t, &model.RetryTask{Key: "a/b.png", Attempt: 2}))

	require.True(t, committed)
}

// HANDLE - NOT-BEFORE is honored before processing
func TestWorker_handle_WaitsUntilDue(t *testing.T) {
	var processedAt time.Time

	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			processedAt = time.Now()
			return &orchestrator.Outcome{Status: model.StatusReady}, nil
		},
	}

	w := NewWorkerInstance(proc, nil, &mockCommitter{})

	notBefore := time.Now().Add(50 * time.Millisecond)
	w.handle(context.Background(), taskMessage(t, &model.RetryTask{Key: "a/b.png", Attempt: 2, NotBefore: notBefore}))

	require.False(t, processedAt.Before(notBefore))
}

// STARTWORKER - stops on closed channel and on context cancel
func TestWorker_StartWorker_Stops(t *testing.T) {
	proc := &mockProcessor{
		processFn: func(ctx context.Context, task *model.RetryTask) (*orchestrator.Outcome, error) {
			return &orchestrator.Outcome{Status: model.StatusReady}, nil
		},
	}

	t.Run("closed channel", func(t *testing.T) {
		msgs := make(chan kafkago.Message)
		w := NewWorkerInstance(proc, msgs, &mockCommitter{})

		done := make(chan struct{})
		go func() {
			w.StartWorker(context.Background())
			close(done)
		}()

		msgs <- taskMessage(t, &model.RetryTask{Key: "a/b.png", Attempt: 1})
		close(msgs)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop after channel close")
		}
	})

	t.Run("context cancel", func(t *testing.T) {
		msgs := make(chan kafkago.Message)
		w := NewWorkerInstance(proc, msgs, &mockCommitter{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			w.StartWorker(ctx)
			close(done)
		}()

		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop after context cancel")
		}
	})
}

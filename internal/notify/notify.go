// Package notify delivers owner-facing processing notifications through a
// dedicated kafka topic
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wb-go/wbf/retry"
)

type Message struct {
	Subject    string            `json:"subject"`
	Body       string            `json:"body"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Publisher - контракт канала уведомлений
type Publisher interface {
	Publish(ctx context.Context, msg *Message) error
}

// Sender - контракт продюсера (реализуется wbf/kafka.Producer)
type Sender interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, value []byte) error
}

var sendStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

type KafkaNotifier struct {
	sender Sender
}

func NewKafkaNotifier(sender Sender) *KafkaNotifier {
	return &KafkaNotifier{sender: sender}
}

func (n *KafkaNotifier) Publish(ctx context.Context, msg *Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	// ключ - почта получателя, чтобы уведомления одного юзера шли по порядку
	key := []byte(msg.Attributes["email"])

	if err := n.sender.SendWithRetry(ctx, sendStrategy, key, payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

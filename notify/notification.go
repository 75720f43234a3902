package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RichardKnop/machinery/v1/log"
	"github.com/google/uuid"
)

const DefaultBufferSize = 256

// Notification tells clients that something happened on a topic, e.g.
// topic "posts" with counts {"created": 1}.
type Notification struct {
	ID     string         `json:"id"`
	Topic  string         `json:"topic"`
	Counts map[string]int `json:"counts"`
	Time   time.Time      `json:"time"`
}

func New(topic string, counts map[string]int) Notification {
	return Notification{
		ID:     uuid.New().String(),
		Topic:  topic,
		Counts: counts,
		Time:   time.Now().UTC(),
	}
}

func (n Notification) Encode() (string, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func Decode(payload string) (Notification, error) {
	var n Notification
	err := json.Unmarshal([]byte(payload), &n)
	return n, err
}

// Emit hands n to out without blocking. A full channel drops n.
func Emit(out chan<- Notification, n Notification) bool {
	if out == nil {
		return false
	}
	select {
	case out <- n:
		return true
	default:
		log.WARNING.Printf("Notification channel is full, dropping %s %v", n.Topic, n.Counts)
		return false
	}
}

type Sink interface {
	Push(ctx context.Context, n Notification) error
}

type SinkFunc func(ctx context.Context, n Notification) error

func (f SinkFunc) Push(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

type LogSink struct{}

func (LogSink) Push(ctx context.Context, n Notification) error {
	log.INFO.Printf("Notification %s: %s %v", n.ID, n.Topic, n.Counts)
	return nil
}

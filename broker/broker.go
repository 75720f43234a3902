package broker

import (
	"context"
	"fmt"
	"liveblog/notify"

	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/config"
	"github.com/RichardKnop/machinery/v1/log"
	"github.com/RichardKnop/machinery/v1/tasks"
)

const (
	PushNotificationTask = "pushNotification"
	consumerTag          = "liveblog_worker"
)

func StartBroker(brokerUrl string) (*machinery.Server, error) {
	cnf := &config.Config{
		DefaultQueue:    "liveblog_tasks",
		ResultsExpireIn: 3600,
		Broker:          brokerUrl,
		ResultBackend:   brokerUrl,
		Redis: &config.RedisConfig{
			MaxIdle:                3,
			IdleTimeout:            240,
			ReadTimeout:            15,
			WriteTimeout:           15,
			ConnectTimeout:         15,
			NormalTasksPollPeriod:  1000,
			DelayedTasksPollPeriod: 500,
		},
	}
	return machinery.NewServer(cnf)
}

// pushNotificationTask is the worker side of TaskSink: it decodes the
// payload and hands it to the delivery sink.
func pushNotificationTask(delivery notify.Sink) func(payload string) error {
	return func(payload string) error {
		n, err := notify.Decode(payload)
		if err != nil {
			return fmt.Errorf("failed to decode notification payload: %w", err)
		}
		return delivery.Push(context.Background(), n)
	}
}

func CreateWorker(brokerUrl string, delivery notify.Sink) error {
	server, err := StartBroker(brokerUrl)
	if err != nil {
		return err
	}
	err = server.RegisterTasks(map[string]interface{}{
		PushNotificationTask: pushNotificationTask(delivery),
	})
	if err != nil {
		return err
	}

	worker := server.NewWorker(consumerTag, 0)

	errorhandler := func(err error) {
		log.ERROR.Printf("Something went wrong: %s", err)
	}

	worker.SetErrorHandler(errorhandler)

	return worker.Launch()
}

func createPushNotificationTask(n notify.Notification) (*tasks.Signature, error) {
	payload, err := n.Encode()
	if err != nil {
		return nil, err
	}
	task := &tasks.Signature{
		Name: PushNotificationTask,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: payload,
			},
		},
	}
	return task, nil
}

// TaskSink queues notifications as machinery tasks for the worker to deliver.
type TaskSink struct {
	server *machinery.Server
}

func NewTaskSink(brokerUrl string) (*TaskSink, error) {
	server, err := StartBroker(brokerUrl)
	if err != nil {
		return nil, err
	}
	return &TaskSink{server: server}, nil
}

func (s *TaskSink) Push(ctx context.Context, n notify.Notification) error {
	task, err := createPushNotificationTask(n)
	if err != nil {
		return err
	}
	_, err = s.server.SendTaskWithContext(ctx, task)
	return err
}

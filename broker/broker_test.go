package broker

import (
	"context"
	"errors"
	"liveblog/notify"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePushNotificationTask(t *testing.T) {
	n := notify.New("posts", map[string]int{"created": 1})

	task, err := createPushNotificationTask(n)
	require.NoError(t, err)

	assert.Equal(t, PushNotificationTask, task.Name)
	require.Len(t, task.Args, 1)
	assert.Equal(t, "string", task.Args[0].Type)

	decoded, err := notify.Decode(task.Args[0].Value.(string))
	require.NoError(t, err)
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, "posts", decoded.Topic)
	assert.Equal(t, map[string]int{"created": 1}, decoded.Counts)
}

func TestPushNotificationTaskDelivers(t *testing.T) {
	var delivered []notify.Notification
	task := pushNotificationTask(notify.SinkFunc(func(ctx context.Context, n notify.Notification) error {
		delivered = append(delivered, n)
		return nil
	}))

	payload, err := notify.New("posts", map[string]int{"deleted": 1}).Encode()
	require.NoError(t, err)
	require.NoError(t, task(payload))

	require.Len(t, delivered, 1)
	assert.Equal(t, map[string]int{"deleted": 1}, delivered[0].Counts)
}

func TestPushNotificationTaskErrors(t *testing.T) {
	failing := errors.New("redis down")
	task := pushNotificationTask(notify.SinkFunc(func(ctx context.Context, n notify.Notification) error {
		return failing
	}))

	assert.Error(t, task("{not json"))

	payload, err := notify.New("posts", map[string]int{"updated": 1}).Encode()
	require.NoError(t, err)
	assert.ErrorIs(t, task(payload), failing)
}

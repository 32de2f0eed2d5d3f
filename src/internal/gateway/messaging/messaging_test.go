package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"booking-service/src/internal/model"
	"booking-service/src/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type fakeKafka struct {
	sent []*k.Message
	err  error
}

func (f *fakeKafka) Publish(m *k.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeKafka) Close() {}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

type captured struct{ got []*model.Notification }

func (c *captured) Dispatch(_ context.Context, n *model.Notification) error {
	c.got = append(c.got, n)
	return nil
}

func notification() *model.Notification {
	return &model.Notification{
		ID:             "n-1",
		RecipientID:    "cust-1",
		RecipientModel: model.RecipientUser,
		Title:          "Booking created",
		Type:           model.NotifyBookingCreated,
		Data:           map[string]string{"bookingId": "bk-1"},
	}
}

func TestNotificationProducerKeysByID(t *testing.T) {
	fk := &fakeKafka{}
	p := NewNotificationProducer(fk, log.Discard(), "")
	require.NoError(t, p.Dispatch(context.Background(), notification()))

	require.Len(t, fk.sent, 1)
	msg := fk.sent[0]
	assert.Equal(t, TopicNotification, *msg.TopicPartition.Topic)
	assert.Equal(t, "n-1", string(msg.Key))
	var decoded model.Notification
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "bk-1", decoded.Data["bookingId"])
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, model.NotifyBookingCreated, headers["type"])
	assert.Equal(t, model.RecipientUser, headers["recipient-model"])

	fk.err = errors.New("queue full")
	assert.Error(t, p.Dispatch(context.Background(), notification()))
}

func TestDisabledProducerFails(t *testing.T) {
	p := NewNotificationProducer(nil, log.Discard(), "custom")
	assert.Error(t, p.Dispatch(context.Background(), notification()))
}

func TestAsynqRoundTrip(t *testing.T) {
	q := &fakeEnqueuer{}
	d := NewAsynqDispatcher(q, "", log.Discard())
	require.NoError(t, d.Dispatch(context.Background(), notification()))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeDeliverNotification, q.tasks[0].Type())

	sink := &captured{}
	handler := DeliverNotificationHandler(sink)
	require.NoError(t, handler(context.Background(), q.tasks[0]))
	require.Len(t, sink.got, 1)
	assert.Equal(t, "cust-1", sink.got[0].RecipientID)

	err := handler(context.Background(), asynq.NewTask(TypeDeliverNotification, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

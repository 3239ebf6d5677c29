package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront-service/models"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBroker_SessionFiltering(t *testing.T) {
	b := NewBroker()

	mine, cancelMine := b.Subscribe("s1")
	all, cancelAll := b.Subscribe("")
	defer cancelAll()

	b.NotifyCartChanged(context.Background(), models.CartChanged{SessionID: "s2", Count: 1})
	b.Publish(models.CartChanged{SessionID: "s1", Count: 3})

	got := <-mine
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, "s2", (<-all).SessionID)
	assert.Equal(t, "s1", (<-all).SessionID)

	assert.Equal(t, 2, b.Subscribers())
	cancelMine()
	cancelMine()
	assert.Equal(t, 1, b.Subscribers())
	_, open := <-mine
	assert.False(t, open)
}

func TestBroker_DropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()
	ch, cancel := b.Subscribe("s1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			b.Publish(models.CartChanged{SessionID: "s1", Count: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

type mockSNS struct {
	input *sns.PublishInput
	err   error
}

func (m *mockSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = in
	return &sns.PublishOutput{}, m.err
}

func TestSNSPublisher_PublishOrder(t *testing.T) {
	client := &mockSNS{}
	p, err := NewSNSPublisher(client, "arn:aws:sns:eu-west-2:000000000000:order-events", zap.NewNop())
	require.NoError(t, err)

	event := models.OrderEvent{Event: OrderCheckoutEvent, OrderID: "LWG-20240102-030405", Total: 45}
	require.NoError(t, p.PublishOrder(context.Background(), event))

	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:eu-west-2:000000000000:order-events", *client.input.TopicArn)
	var out models.OrderEvent
	require.NoError(t, json.Unmarshal([]byte(*client.input.Message), &out))
	assert.Equal(t, event.OrderID, out.OrderID)

	client.err = errors.New("throttled")
	assert.Error(t, p.PublishOrder(context.Background(), event))

	_, err = NewSNSPublisher(client, "", zap.NewNop())
	assert.Error(t, err)
}

type mockWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_PublishOrder(t *testing.T) {
	w := &mockWriter{}
	p := NewKafkaPublisherWithWriter(w)

	require.NoError(t, p.PublishOrder(context.Background(), models.OrderEvent{OrderID: "#42", Total: 10}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("#42"), w.msgs[0].Key)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &out))
	assert.Equal(t, 10.0, out["total"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

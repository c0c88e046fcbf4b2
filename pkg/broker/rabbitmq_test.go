package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishingIsPersistentJSON(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.FixedZone("IST", 19800))
	msg, err := newPublishing("booking.decided", map[string]string{"booking_id": "b-1"}, at)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "booking.decided", msg.Type)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.NotEmpty(t, msg.MessageId)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "b-1", body["booking_id"])
}

func TestNewPublishingRejectsUnencodable(t *testing.T) {
	_, err := newPublishing("x", make(chan int), time.Now())
	assert.Error(t, err)
}

func TestPublishSurfacesDialFailure(t *testing.T) {
	p := NewRabbitPublisher("amqp://unused", "booking.events", nil)
	p.dial = func(string) (*amqp.Connection, error) { return nil, errors.New("connection refused") }

	err := p.Publish(context.Background(), "booking.decided", map[string]string{})
	assert.ErrorContains(t, err, "rabbitmq dial")
	assert.NoError(t, p.Close())
}

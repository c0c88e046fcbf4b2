package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/pkg/jobs"
	"github.com/noah-isme/hall-booking-api/pkg/mail"
)

type inlineQueue struct {
	handlers map[string]jobs.Handler
	enqueued []jobs.Job
	err      error
}

func (q *inlineQueue) Register(jobType string, h jobs.Handler) {
	if q.handlers == nil {
		q.handlers = map[string]jobs.Handler{}
	}
	q.handlers[jobType] = h
}

func (q *inlineQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

func (q *inlineQueue) drain(t *testing.T) error {
	t.Helper()
	var errs []error
	for _, job := range q.enqueued {
		h, ok := q.handlers[job.Type]
		require.True(t, ok, "no handler for %s", job.Type)
		if err := h(context.Background(), job); err != nil {
			errs = append(errs, err)
		}
	}
	q.enqueued = nil
	return errors.Join(errs...)
}

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.events = append(p.events, eventType)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingMailer struct {
	sent []mail.Message
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

type eventTally struct {
	ok, failed int
}

func (e *eventTally) RecordEvent(eventType string, ok bool) {
	if ok {
		e.ok++
		return
	}
	e.failed++
}

func rejectedEvent() models.BookingDecidedEvent {
	return models.BookingDecidedEvent{
		BookingID:       "b1",
		Status:          models.BookingStatusRejected,
		EventTitle:      "Science Fair",
		HallName:        "Main Auditorium",
		TimeSlot:        "09:00 - 11:00",
		RequesterName:   "Asha",
		RequesterEmail:  "asha@example.edu",
		RejectionReason: "Hall under maintenance",
	}
}

func TestBookingNotifierPublishesAndMails(t *testing.T) {
	queue := &inlineQueue{}
	publisher := &recordingPublisher{}
	mailer := &recordingMailer{}
	tally := &eventTally{}
	notifier := NewBookingNotifier(queue, publisher, mailer, tally, zap.NewNop())

	notifier.BookingDecided(context.Background(), rejectedEvent())
	require.Len(t, queue.enqueued, 2)
	assert.Equal(t, JobTypeBookingDecidedPublish, queue.enqueued[0].Type)
	assert.Equal(t, JobTypeBookingDecidedMail, queue.enqueued[1].Type)
	require.NoError(t, queue.drain(t))

	assert.Equal(t, []string{JobTypeBookingDecided}, publisher.events)
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "Booking rejected: Science Fair", msg.Subject)
	assert.Equal(t, "asha@example.edu", msg.To[0].Email)
	assert.Contains(t, msg.Text, "Reason: Hall under maintenance")
	assert.Equal(t, 2, tally.ok)
}

func TestBookingNotifierReportsPublishFailure(t *testing.T) {
	queue := &inlineQueue{}
	publisher := &recordingPublisher{err: errors.New("connection refused")}
	mailer := &recordingMailer{}
	tally := &eventTally{}
	notifier := NewBookingNotifier(queue, publisher, mailer, tally, zap.NewNop())

	notifier.BookingDecided(context.Background(), rejectedEvent())
	err := queue.drain(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, mailer.sent, 1)
	assert.Equal(t, 1, tally.failed)
	assert.Equal(t, 1, tally.ok)
}

func TestBookingNotifierSkipsMailWithoutAddress(t *testing.T) {
	queue := &inlineQueue{}
	mailer := &recordingMailer{}
	notifier := NewBookingNotifier(queue, nil, mailer, nil, zap.NewNop())

	evt := rejectedEvent()
	evt.RequesterEmail = ""
	notifier.BookingDecided(context.Background(), evt)
	require.Len(t, queue.enqueued, 1)
	require.NoError(t, queue.drain(t))
	assert.Empty(t, mailer.sent)
}

func TestBookingNotifierEnqueueFailureIsCounted(t *testing.T) {
	queue := &inlineQueue{err: jobs.ErrQueueFull}
	tally := &eventTally{}
	notifier := NewBookingNotifier(queue, nil, nil, tally, zap.NewNop())

	notifier.BookingDecided(context.Background(), rejectedEvent())
	assert.Equal(t, 2, tally.failed)
}

type countingPublisher struct {
	attempts atomic.Int32
}

func (p *countingPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	p.attempts.Add(1)
	return errors.New("broker unavailable")
}

func (p *countingPublisher) Close() error { return nil }

type countingMailer struct {
	sent atomic.Int32
}

func (m *countingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent.Add(1)
	return nil
}

func TestBookingNotifierRetriesPublishWithoutResendingMail(t *testing.T) {
	queue := jobs.NewQueue("booking-events", jobs.QueueConfig{Workers: 2, MaxRetries: 3, RetryDelay: time.Millisecond})
	publisher := &countingPublisher{}
	mailer := &countingMailer{}
	notifier := NewBookingNotifier(queue, publisher, mailer, nil, zap.NewNop())
	queue.Start(context.Background())
	defer queue.Stop()

	notifier.BookingDecided(context.Background(), rejectedEvent())

	require.Eventually(t, func() bool { return publisher.attempts.Load() == 4 }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(4), publisher.attempts.Load())
	assert.Equal(t, int32(1), mailer.sent.Load())
}

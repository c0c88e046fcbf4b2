package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/pkg/broker"
	"github.com/noah-isme/hall-booking-api/pkg/jobs"
	"github.com/noah-isme/hall-booking-api/pkg/mail"
)

// JobTypeBookingDecided is the broker event type of an approval or rejection.
const JobTypeBookingDecided = "booking.decided"

// Each delivery leg is its own job so a retry never repeats the other one.
const (
	JobTypeBookingDecidedPublish = "booking.decided.publish"
	JobTypeBookingDecidedMail    = "booking.decided.mail"
)

type jobEnqueuer interface {
	Register(jobType string, h jobs.Handler)
	Enqueue(job jobs.Job) error
}

type eventRecorder interface {
	RecordEvent(eventType string, ok bool)
}

// BookingNotifier fans booking decisions out to the message broker and to
// the requester's inbox from a background queue.
type BookingNotifier struct {
	queue     jobEnqueuer
	publisher broker.Publisher
	mailer    mail.Sender
	metrics   eventRecorder
	logger    *zap.Logger
}

// NewBookingNotifier registers the decision handler on queue. A nil queue
// disables notifications.
func NewBookingNotifier(queue jobEnqueuer, publisher broker.Publisher, mailer mail.Sender, metrics eventRecorder, logger *zap.Logger) *BookingNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = broker.NopPublisher{}
	}
	if mailer == nil {
		mailer = mail.NopSender{}
	}
	n := &BookingNotifier{queue: queue, publisher: publisher, mailer: mailer, metrics: metrics, logger: logger}
	if queue != nil {
		queue.Register(JobTypeBookingDecidedPublish, n.handlePublish)
		queue.Register(JobTypeBookingDecidedMail, n.handleMail)
	}
	return n
}

// BookingDecided schedules delivery of evt. It never blocks the request path.
func (n *BookingNotifier) BookingDecided(ctx context.Context, evt models.BookingDecidedEvent) {
	if n == nil || n.queue == nil {
		return
	}
	n.enqueue(JobTypeBookingDecidedPublish, evt)
	if evt.RequesterEmail != "" {
		n.enqueue(JobTypeBookingDecidedMail, evt)
	}
}

func (n *BookingNotifier) enqueue(jobType string, evt models.BookingDecidedEvent) {
	if err := n.queue.Enqueue(jobs.Job{Type: jobType, Payload: evt}); err != nil {
		n.logger.Warn("failed to enqueue booking decision", zap.String("job_type", jobType), zap.String("booking_id", evt.BookingID), zap.Error(err))
		n.record(jobType, false)
	}
}

func (n *BookingNotifier) handlePublish(ctx context.Context, job jobs.Job) error {
	evt, err := decidedPayload(job)
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, JobTypeBookingDecided, evt); err != nil {
		n.record(job.Type, false)
		return fmt.Errorf("publish: %w", err)
	}
	n.record(job.Type, true)
	n.logger.Info("booking decision published", zap.String("booking_id", evt.BookingID), zap.String("status", string(evt.Status)))
	return nil
}

func (n *BookingNotifier) handleMail(ctx context.Context, job jobs.Job) error {
	evt, err := decidedPayload(job)
	if err != nil {
		return err
	}
	if err := n.mailer.Send(ctx, decisionMessage(evt)); err != nil {
		n.record(job.Type, false)
		return fmt.Errorf("mail: %w", err)
	}
	n.record(job.Type, true)
	n.logger.Info("booking decision mailed", zap.String("booking_id", evt.BookingID))
	return nil
}

func decidedPayload(job jobs.Job) (models.BookingDecidedEvent, error) {
	evt, ok := job.Payload.(models.BookingDecidedEvent)
	if !ok {
		return models.BookingDecidedEvent{}, fmt.Errorf("unexpected payload %T", job.Payload)
	}
	return evt, nil
}

func (n *BookingNotifier) record(eventType string, ok bool) {
	if n.metrics != nil {
		n.metrics.RecordEvent(eventType, ok)
	}
}

func decisionMessage(evt models.BookingDecidedEvent) mail.Message {
	verb := "approved"
	if evt.Status == models.BookingStatusRejected {
		verb = "rejected"
	}
	subject := fmt.Sprintf("Booking %s: %s", verb, evt.EventTitle)

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", evt.RequesterName)
	fmt.Fprintf(&body, "Your booking of %s on %s (%s) for \"%s\" has been %s.\n",
		evt.HallName, evt.BookingDate.String(), evt.TimeSlot, evt.EventTitle, verb)
	if evt.RejectionReason != "" {
		fmt.Fprintf(&body, "\nReason: %s\n", evt.RejectionReason)
	}

	return mail.Message{
		To:      []mail.Address{{Name: evt.RequesterName, Email: evt.RequesterEmail}},
		Subject: subject,
		Text:    body.String(),
	}
}

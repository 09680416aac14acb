package notify

import (
	"context"
	"fmt"

	"github.com/clinic360/platform/internal/observability/metrics"
	"github.com/clinic360/platform/pkg/logging"
)

// Queue is the durable backing for notification jobs. Implementations exist
// for Redis lists, SQS and an in-memory channel (dev/tests).
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]QueueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// QueueMessage is one received queue entry.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Publisher admits notification jobs to the queue. Enqueue failures are the
// caller's signal to degrade the delivery hint, never to fail the booking.
type Publisher struct {
	queue   Queue
	logger  *logging.Logger
	metrics *metrics.NotificationMetrics
}

// NewPublisher creates a publisher over the given queue.
func NewPublisher(queue Queue, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("notify: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{queue: queue, logger: logger}
}

// WithMetrics attaches notification pipeline metrics.
func (p *Publisher) WithMetrics(m *metrics.NotificationMetrics) *Publisher {
	p.metrics = m
	return p
}

// Enqueue admits a job for asynchronous delivery and returns its id.
func (p *Publisher) Enqueue(ctx context.Context, job Job) (string, error) {
	job, body, err := EncodeJob(job)
	if err != nil {
		return "", err
	}
	if err := p.queue.Send(ctx, body); err != nil {
		return "", fmt.Errorf("notify: enqueue job: %w", err)
	}
	p.metrics.ObserveEnqueued()
	p.logger.Info("notification job enqueued",
		"job_id", job.ID,
		"appointment_id", job.Appointment.ID,
		"patient_id", job.Patient.ID,
		"doctor_id", job.Doctor.ID,
	)
	return job.ID, nil
}

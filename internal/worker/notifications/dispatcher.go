// Package notifications runs the background workers that deliver appointment
// confirmation emails enqueued by the booking service.
package notifications

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clinic360/platform/internal/notify"
	"github.com/clinic360/platform/internal/observability/metrics"
	"github.com/clinic360/platform/pkg/logging"
)

const (
	defaultWorkerCount = 2
	defaultWaitSeconds = 2
	defaultBatchSize   = 5
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
	defaultSendTimeout = 10 * time.Second
)

// Dispatcher consumes notification jobs from the queue and sends each
// confirmation email with bounded retries. Delivery failures never propagate
// back to the producer: an exhausted job is dropped and recorded.
type Dispatcher struct {
	queue   notify.Queue
	sender  notify.EmailSender
	logger  *logging.Logger
	metrics *metrics.NotificationMetrics

	workers     int
	waitSeconds int
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	sendTimeout time.Duration

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given queue and sender.
func NewDispatcher(queue notify.Queue, sender notify.EmailSender, logger *logging.Logger) *Dispatcher {
	if queue == nil {
		panic("notifications: queue required")
	}
	if sender == nil {
		panic("notifications: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		queue:       queue,
		sender:      sender,
		logger:      logger.Component("dispatcher"),
		workers:     defaultWorkerCount,
		waitSeconds: defaultWaitSeconds,
		batchSize:   defaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sendTimeout: defaultSendTimeout,
	}
}

func (d *Dispatcher) WithWorkerCount(n int) *Dispatcher {
	if n > 0 {
		d.workers = n
	}
	return d
}

func (d *Dispatcher) WithMaxAttempts(n int) *Dispatcher {
	if n > 0 {
		d.maxAttempts = n
	}
	return d
}

func (d *Dispatcher) WithBaseDelay(delay time.Duration) *Dispatcher {
	if delay > 0 {
		d.baseDelay = delay
	}
	return d
}

func (d *Dispatcher) WithSendTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.sendTimeout = timeout
	}
	return d
}

func (d *Dispatcher) WithMetrics(m *metrics.NotificationMetrics) *Dispatcher {
	d.metrics = m
	return d
}

// Start launches worker goroutines until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, workerID int) {
	defer d.wg.Done()
	d.logger.Debug("notification worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("notification worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(ctx, d.batchSize, d.waitSeconds)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive notification jobs", "error", err, "worker_id", workerID)
			if !sleepCtx(ctx, backoff) {
				return
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			d.handleMessage(ctx, msg)
		}
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg notify.QueueMessage) {
	job, err := notify.DecodeJob(msg.Body)
	if err != nil {
		// Malformed payloads are unrecoverable; discard instead of retrying.
		d.logger.Error("failed to decode notification job", "error", err)
		d.deleteMessage(msg)
		return
	}

	d.Process(ctx, job)
	d.deleteMessage(msg)
}

// Process delivers one job, retrying with exponential backoff. The job
// succeeds on the first successful send; after maxAttempts failures it is
// dropped and the failure recorded. Re-sending a confirmation is a safe side
// effect, so a retry after an ambiguous failure cannot corrupt anything.
func (d *Dispatcher) Process(ctx context.Context, job notify.Job) {
	msg := notify.ConfirmationEmail(job)

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.sendOnce(ctx, msg)
		if err == nil {
			d.metrics.ObserveAttempt("success")
			d.metrics.ObserveDelivered()
			d.logger.Info("confirmation email delivered",
				"job_id", job.ID,
				"appointment_id", job.Appointment.ID,
				"to", msg.To,
				"attempt", attempt,
			)
			return
		}

		d.metrics.ObserveAttempt("failure")
		d.logger.Warn("confirmation email attempt failed",
			"job_id", job.ID,
			"appointment_id", job.Appointment.ID,
			"attempt", attempt,
			"error", err,
		)

		if attempt == d.maxAttempts {
			break
		}
		if !sleepCtx(ctx, d.nextDelay(attempt)) {
			return
		}
	}

	d.metrics.ObserveDropped()
	d.logger.Error("notification job dropped after exhausting retries",
		"job_id", job.ID,
		"appointment_id", job.Appointment.ID,
		"patient_id", job.Patient.ID,
		"attempts", d.maxAttempts,
	)
}

// sendOnce bounds a single attempt so a hung mail call cannot monopolize a
// worker slot.
func (d *Dispatcher) sendOnce(ctx context.Context, msg notify.EmailMessage) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	return d.sender.Send(sendCtx, msg)
}

// nextDelay returns the backoff before the attempt following the given one:
// baseDelay, 2*baseDelay, 4*baseDelay, ...
func (d *Dispatcher) nextDelay(attempt int) time.Duration {
	return d.baseDelay * time.Duration(1<<(attempt-1))
}

func (d *Dispatcher) deleteMessage(msg notify.QueueMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		d.logger.Error("failed to delete queue message", "error", err, "message_id", msg.ID)
	}
}

// sleepCtx waits for the duration unless ctx is cancelled first.
func sleepCtx(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

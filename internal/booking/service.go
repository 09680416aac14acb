// Package booking is the coordinator between availability, the appointment
// ledger and the notification pipeline.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinic360/platform/internal/appointments"
	"github.com/clinic360/platform/internal/availability"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/internal/notify"
	"github.com/clinic360/platform/internal/observability/metrics"
	"github.com/clinic360/platform/pkg/logging"
)

var bookingTracer = otel.Tracer("clinic360.internal.booking")

// ErrDoctorNotFound is returned when the requested doctor id does not
// reference a doctor.
var ErrDoctorNotFound = errors.New("doctor not found")

// ErrOutsideAvailability is returned when the requested window falls outside
// every enabled availability slot the doctor has published.
var ErrOutsideAvailability = errors.New("requested time is outside the doctor's availability")

// Delivery hints attached to the booking response. The pipeline is
// asynchronous, so the hint reflects queue admission, not delivery.
const (
	EmailQueued = "queued"
	EmailFailed = "failed"
)

// Ledger is the appointment store used by the coordinator.
type Ledger interface {
	Book(ctx context.Context, a *appointments.Appointment) error
}

// UserDirectory resolves patient and doctor identities for snapshots.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*identity.User, error)
}

// Schedule reads a doctor's published weekly availability.
type Schedule interface {
	ListByDoctor(ctx context.Context, doctorID int64) ([]availability.Slot, error)
}

// Notifier admits confirmation jobs to the notification queue.
type Notifier interface {
	Enqueue(ctx context.Context, job notify.Job) (string, error)
}

// Service validates booking requests, writes the ledger and enqueues the
// confirmation job.
type Service struct {
	ledger   Ledger
	schedule Schedule
	users    UserDirectory
	notifier Notifier
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService constructs a booking coordinator.
func NewService(ledger Ledger, schedule Schedule, users UserDirectory, notifier Notifier, logger *logging.Logger) *Service {
	if ledger == nil {
		panic("booking: ledger required")
	}
	if schedule == nil {
		panic("booking: schedule required")
	}
	if users == nil {
		panic("booking: user directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		ledger:   ledger,
		schedule: schedule,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithMetrics attaches scheduling metrics.
func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// Result is a created appointment plus the delivery-status hint for the
// confirmation email.
type Result struct {
	Appointment *appointments.Appointment
	EmailStatus string
}

// Book validates the requested slot, inserts the appointment and enqueues a
// confirmation job carrying copies of the patient, doctor and appointment
// data. The notification outcome never fails the booking: an enqueue error
// only degrades the delivery hint.
func (s *Service) Book(ctx context.Context, patientID, doctorID int64, start, end time.Time, reason string) (*Result, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("clinic360.patient_id", patientID),
		attribute.Int64("clinic360.doctor_id", doctorID),
	)

	if !start.Before(end) {
		s.metrics.ObserveBooking("invalid")
		return nil, appointments.ErrInvalidWindow
	}
	if !start.After(s.now()) {
		s.metrics.ObserveBooking("invalid")
		return nil, appointments.ErrPastStart
	}

	doctor, err := s.users.GetByID(ctx, doctorID)
	if err != nil || doctor.Role != identity.RoleDoctor {
		s.metrics.ObserveBooking("invalid")
		return nil, ErrDoctorNotFound
	}
	patient, err := s.users.GetByID(ctx, patientID)
	if err != nil {
		s.metrics.ObserveBooking("error")
		return nil, err
	}

	if err := s.checkAvailability(ctx, doctorID, start, end); err != nil {
		if errors.Is(err, ErrOutsideAvailability) {
			s.metrics.ObserveBooking("invalid")
		} else {
			s.metrics.ObserveBooking("error")
		}
		return nil, err
	}

	appt := &appointments.Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		StartTime: start,
		EndTime:   end,
		Reason:    reason,
	}
	if err := s.ledger.Book(ctx, appt); err != nil {
		if errors.Is(err, appointments.ErrSlotTaken) {
			s.metrics.ObserveBooking("conflict")
		} else {
			s.metrics.ObserveBooking("error")
		}
		span.RecordError(err)
		return nil, err
	}
	s.metrics.ObserveBooking("booked")

	appt.Patient = ptr(patient.Summarize())
	appt.Doctor = ptr(doctor.Summarize())

	emailStatus := s.enqueueConfirmation(ctx, patient, doctor, appt)

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"patient_id", patientID,
		"doctor_id", doctorID,
		"start", appt.StartTime,
		"email_status", emailStatus,
	)
	return &Result{Appointment: appt, EmailStatus: emailStatus}, nil
}

// checkAvailability verifies the requested window sits inside one of the
// doctor's enabled weekly slots. Doctors who have not published a schedule
// accept any window; once slots exist they constrain bookings. Slot times are
// wall-clock values, so the window is compared in UTC.
func (s *Service) checkAvailability(ctx context.Context, doctorID int64, start, end time.Time) error {
	slots, err := s.schedule.ListByDoctor(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("booking: load schedule: %w", err)
	}

	enabled := 0
	startUTC, endUTC := start.UTC(), end.UTC()
	day := int(startUTC.Weekday())
	startClock := startUTC.Format("15:04")
	endClock := endUTC.Format("15:04")
	sameDay := startUTC.Truncate(24 * time.Hour).Equal(endUTC.Truncate(24 * time.Hour))

	for _, slot := range slots {
		if !slot.Available {
			continue
		}
		enabled++
		if sameDay && slot.DayOfWeek == day && slot.StartTime <= startClock && endClock <= slot.EndTime {
			return nil
		}
	}
	if enabled == 0 {
		return nil
	}
	return ErrOutsideAvailability
}

func (s *Service) enqueueConfirmation(ctx context.Context, patient, doctor *identity.User, appt *appointments.Appointment) string {
	if s.notifier == nil {
		return EmailFailed
	}

	job := notify.Job{
		Patient: patient.Summarize(),
		Doctor:  doctor.Summarize(),
		Appointment: notify.AppointmentSnapshot{
			ID:        appt.ID,
			StartTime: appt.StartTime,
			EndTime:   appt.EndTime,
			Status:    string(appt.Status),
			Reason:    appt.Reason,
		},
	}

	jobID, err := s.notifier.Enqueue(ctx, job)
	if err != nil {
		// Best-effort contract: the booking stands even if the queue is down.
		s.logger.Error("failed to enqueue confirmation", "error", err, "appointment_id", appt.ID)
		return EmailFailed
	}
	s.logger.Debug("confirmation enqueued", "job_id", jobID, "appointment_id", appt.ID)
	return EmailQueued
}

func ptr[T any](v T) *T { return &v }

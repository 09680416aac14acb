package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic360/platform/internal/appointments"
	"github.com/clinic360/platform/internal/availability"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/internal/notify"
)

type fakeLedger struct {
	err    error
	booked *appointments.Appointment
}

func (f *fakeLedger) Book(_ context.Context, a *appointments.Appointment) error {
	if f.err != nil {
		return f.err
	}
	a.ID = 42
	a.Status = appointments.StatusScheduled
	a.CreatedAt = time.Now().UTC()
	f.booked = a
	return nil
}

type fakeDirectory struct {
	users map[int64]*identity.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id int64) (*identity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

type fakeSchedule struct {
	slots []availability.Slot
	err   error
}

func (f *fakeSchedule) ListByDoctor(context.Context, int64) ([]availability.Slot, error) {
	return f.slots, f.err
}

type fakeNotifier struct {
	err  error
	jobs []notify.Job
}

func (f *fakeNotifier) Enqueue(_ context.Context, job notify.Job) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	return "job-1", nil
}

func testDirectory() *fakeDirectory {
	return &fakeDirectory{users: map[int64]*identity.User{
		5: {ID: 5, FullName: "Jane Roe", Email: "jane@example.com", Role: identity.RolePatient},
		9: {ID: 9, FullName: "Gregory House", Email: "house@example.com", Role: identity.RoleDoctor, Specialization: "Diagnostics"},
	}}
}

func futureWindow() (time.Time, time.Time) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Minute)
	return start, start.Add(30 * time.Minute)
}

func TestBookCreatesAppointmentAndQueuesConfirmation(t *testing.T) {
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{}
	svc := NewService(ledger, &fakeSchedule{}, testDirectory(), notifier, nil)

	start, end := futureWindow()
	res, err := svc.Book(context.Background(), 5, 9, start, end, "checkup")
	require.NoError(t, err)

	assert.Equal(t, int64(42), res.Appointment.ID)
	assert.Equal(t, appointments.StatusScheduled, res.Appointment.Status)
	assert.Equal(t, EmailQueued, res.EmailStatus)
	require.NotNil(t, res.Appointment.Doctor)
	assert.Equal(t, "Gregory House", res.Appointment.Doctor.FullName)

	require.Len(t, notifier.jobs, 1)
	job := notifier.jobs[0]
	assert.Equal(t, "jane@example.com", job.Patient.Email)
	assert.Equal(t, int64(42), job.Appointment.ID)
	assert.Equal(t, "checkup", job.Appointment.Reason)
}

func TestBookRejectsInvalidWindow(t *testing.T) {
	svc := NewService(&fakeLedger{}, &fakeSchedule{}, testDirectory(), &fakeNotifier{}, nil)

	start, _ := futureWindow()
	_, err := svc.Book(context.Background(), 5, 9, start, start, "checkup")
	assert.ErrorIs(t, err, appointments.ErrInvalidWindow)

	_, err = svc.Book(context.Background(), 5, 9, start, start.Add(-time.Hour), "checkup")
	assert.ErrorIs(t, err, appointments.ErrInvalidWindow)
}

func TestBookRejectsPastStart(t *testing.T) {
	svc := NewService(&fakeLedger{}, &fakeSchedule{}, testDirectory(), &fakeNotifier{}, nil)

	start := time.Now().Add(-time.Hour)
	_, err := svc.Book(context.Background(), 5, 9, start, start.Add(30*time.Minute), "checkup")
	assert.ErrorIs(t, err, appointments.ErrPastStart)
}

func TestBookRejectsUnknownDoctor(t *testing.T) {
	svc := NewService(&fakeLedger{}, &fakeSchedule{}, testDirectory(), &fakeNotifier{}, nil)

	start, end := futureWindow()
	_, err := svc.Book(context.Background(), 5, 77, start, end, "checkup")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestBookRejectsPatientIDAsDoctor(t *testing.T) {
	svc := NewService(&fakeLedger{}, &fakeSchedule{}, testDirectory(), &fakeNotifier{}, nil)

	start, end := futureWindow()
	_, err := svc.Book(context.Background(), 5, 5, start, end, "checkup")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestBookPropagatesSlotConflict(t *testing.T) {
	ledger := &fakeLedger{err: appointments.ErrSlotTaken}
	notifier := &fakeNotifier{}
	svc := NewService(ledger, &fakeSchedule{}, testDirectory(), notifier, nil)

	start, end := futureWindow()
	_, err := svc.Book(context.Background(), 5, 9, start, end, "checkup")
	assert.ErrorIs(t, err, appointments.ErrSlotTaken)
	assert.Empty(t, notifier.jobs)
}

func TestBookHonorsPublishedSchedule(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Hour)
	end := start.Add(30 * time.Minute)
	day := int(start.Weekday())

	schedule := &fakeSchedule{slots: []availability.Slot{
		{DoctorID: 9, DayOfWeek: day, StartTime: "00:00", EndTime: "23:59", Available: true},
	}}
	svc := NewService(&fakeLedger{}, schedule, testDirectory(), &fakeNotifier{}, nil)

	_, err := svc.Book(context.Background(), 5, 9, start, end, "checkup")
	require.NoError(t, err)

	// A schedule published only for a different weekday rejects the window.
	schedule.slots[0].DayOfWeek = (day + 1) % 7
	_, err = svc.Book(context.Background(), 5, 9, start, end, "checkup")
	assert.ErrorIs(t, err, ErrOutsideAvailability)
}

func TestBookIgnoresDisabledSlots(t *testing.T) {
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Hour)
	end := start.Add(30 * time.Minute)
	day := int(start.Weekday())

	// Only disabled slots published: treated as no schedule, booking allowed.
	schedule := &fakeSchedule{slots: []availability.Slot{
		{DoctorID: 9, DayOfWeek: day, StartTime: "00:00", EndTime: "23:59", Available: false},
	}}
	svc := NewService(&fakeLedger{}, schedule, testDirectory(), &fakeNotifier{}, nil)

	_, err := svc.Book(context.Background(), 5, 9, start, end, "checkup")
	require.NoError(t, err)
}

func TestBookSucceedsWhenEnqueueFails(t *testing.T) {
	ledger := &fakeLedger{}
	notifier := &fakeNotifier{err: errors.New("queue down")}
	svc := NewService(ledger, &fakeSchedule{}, testDirectory(), notifier, nil)

	start, end := futureWindow()
	res, err := svc.Book(context.Background(), 5, 9, start, end, "checkup")
	require.NoError(t, err)
	assert.Equal(t, EmailFailed, res.EmailStatus)
	assert.NotNil(t, ledger.booked)
}

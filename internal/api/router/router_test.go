package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic360/platform/internal/appointments"
	"github.com/clinic360/platform/internal/availability"
	"github.com/clinic360/platform/internal/booking"
	"github.com/clinic360/platform/internal/http/handlers"
	httpmiddleware "github.com/clinic360/platform/internal/http/middleware"
	"github.com/clinic360/platform/internal/identity"
)

const testSecret = "router-test-secret"

type stubBooker struct{}

func (stubBooker) Book(_ context.Context, patientID, doctorID int64, start, end time.Time, reason string) (*booking.Result, error) {
	return &booking.Result{
		Appointment: &appointments.Appointment{
			ID: 1, PatientID: patientID, DoctorID: doctorID,
			StartTime: start, EndTime: end,
			Status: appointments.StatusScheduled, Reason: reason,
		},
		EmailStatus: booking.EmailQueued,
	}, nil
}

type stubLedger struct{}

func (stubLedger) ListForUser(context.Context, int64, string) ([]appointments.Appointment, error) {
	return []appointments.Appointment{}, nil
}

func (stubLedger) GetByID(context.Context, int64) (*appointments.Appointment, error) {
	return nil, appointments.ErrNotFound
}

func (stubLedger) UpdateStatus(context.Context, int64, *appointments.UpdateStatusRequest) (*appointments.Appointment, error) {
	return nil, appointments.ErrNotFound
}

type stubAvailability struct{}

func (stubAvailability) SetSlot(_ context.Context, req *availability.SetSlotRequest) (*availability.Slot, error) {
	return &availability.Slot{ID: 1, DoctorID: req.DoctorID, DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime, EndTime: req.EndTime, Available: true}, nil
}

func (stubAvailability) ListByDoctor(context.Context, int64) ([]availability.Slot, error) {
	return []availability.Slot{}, nil
}

type stubDirectory struct{}

func (stubDirectory) ListDoctors(context.Context) ([]identity.User, error) {
	return []identity.User{{ID: 9, FullName: "Gregory House", Role: identity.RoleDoctor}}, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	return New(&Config{
		AppointmentsHandler: handlers.NewAppointmentsHandler(stubBooker{}, stubLedger{}, nil),
		ScheduleHandler:     handlers.NewScheduleHandler(stubAvailability{}, nil),
		DoctorsHandler:      handlers.NewDoctorsHandler(stubDirectory{}, nil),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
		SessionSecret: testSecret,
	})
}

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := httpmiddleware.SignSession(testSecret, identity.Session{UserID: userID, Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsIsPublic(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAppointmentsRequireSession(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAppointmentsWithSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", bearer(t, 5, identity.RolePatient))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScheduleCreationIsDoctorOnly(t *testing.T) {
	body := `{"dayOfWeek":1,"startTime":"09:00","endTime":"12:00"}`

	req := httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, 5, identity.RolePatient))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/schedule", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, 9, identity.RoleDoctor))
	rec = httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestScheduleListingIsReadableByPatients(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/schedule/9", nil)
	req.Header.Set("Authorization", bearer(t, 5, identity.RolePatient))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDoctorsListing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	req.Header.Set("Authorization", bearer(t, 5, identity.RolePatient))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gregory House")
}

func TestBookingThroughRouter(t *testing.T) {
	body := `{"doctorId":9,"startTime":"2026-10-05T14:00:00Z","endTime":"2026-10-05T14:30:00Z","reason":"checkup"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Authorization", bearer(t, 5, identity.RolePatient))
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"emailStatus":"queued"`)
}

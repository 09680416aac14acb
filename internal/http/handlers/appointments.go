package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinic360/platform/internal/appointments"
	"github.com/clinic360/platform/internal/booking"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/pkg/logging"
)

// Booker creates appointments.
type Booker interface {
	Book(ctx context.Context, patientID, doctorID int64, start, end time.Time, reason string) (*booking.Result, error)
}

// AppointmentLedger reads and transitions existing appointments.
type AppointmentLedger interface {
	ListForUser(ctx context.Context, userID int64, role string) ([]appointments.Appointment, error)
	GetByID(ctx context.Context, id int64) (*appointments.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, req *appointments.UpdateStatusRequest) (*appointments.Appointment, error)
}

// AppointmentsHandler handles HTTP requests for appointments.
type AppointmentsHandler struct {
	booker Booker
	ledger AppointmentLedger
	logger *logging.Logger
}

// NewAppointmentsHandler creates a new appointments handler.
func NewAppointmentsHandler(booker Booker, ledger AppointmentLedger, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{
		booker: booker,
		ledger: ledger,
		logger: logger,
	}
}

type createAppointmentRequest struct {
	DoctorID  int64     `json:"doctorId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Reason    string    `json:"reason"`
}

type createAppointmentResponse struct {
	*appointments.Appointment
	EmailStatus string `json:"emailStatus"`
}

// Create handles POST /appointments. The patient is the session user.
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DoctorID == 0 || req.StartTime.IsZero() || req.EndTime.IsZero() {
		respondError(w, http.StatusBadRequest, "doctorId, startTime and endTime are required")
		return
	}

	res, err := h.booker.Book(r.Context(), session.UserID, req.DoctorID, req.StartTime, req.EndTime, req.Reason)
	if err != nil {
		h.writeAppointmentError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, createAppointmentResponse{
		Appointment: res.Appointment,
		EmailStatus: res.EmailStatus,
	})
}

// List handles GET /appointments. Patients see their own bookings, doctors
// see appointments booked with them.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	appts, err := h.ledger.ListForUser(r.Context(), session.UserID, session.Role)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", session.UserID)
		respondError(w, http.StatusInternalServerError, "failed to fetch appointments")
		return
	}
	respondJSON(w, http.StatusOK, appts)
}

// UpdateStatus handles PUT /appointments/{id}. Only the appointment's patient
// or doctor may change it.
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req appointments.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.ledger.GetByID(r.Context(), id)
	if err != nil {
		h.writeAppointmentError(w, err)
		return
	}
	if session.UserID != existing.PatientID && session.UserID != existing.DoctorID {
		respondError(w, http.StatusForbidden, "access denied")
		return
	}

	updated, err := h.ledger.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		h.writeAppointmentError(w, err)
		return
	}

	h.logger.Info("appointment updated",
		"appointment_id", id,
		"status", updated.Status,
		"user_id", session.UserID,
	)
	respondJSON(w, http.StatusOK, updated)
}

func (h *AppointmentsHandler) writeAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointments.ErrInvalidWindow):
		respondError(w, http.StatusBadRequest, "startTime must be before endTime")
	case errors.Is(err, appointments.ErrPastStart):
		respondError(w, http.StatusBadRequest, "appointment must start in the future")
	case errors.Is(err, appointments.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, "unknown appointment status")
	case errors.Is(err, appointments.ErrInvalidTransition):
		respondError(w, http.StatusBadRequest, "appointment can no longer be changed")
	case errors.Is(err, booking.ErrOutsideAvailability):
		respondError(w, http.StatusBadRequest, "the doctor is not available at the requested time")
	case errors.Is(err, booking.ErrDoctorNotFound):
		respondError(w, http.StatusNotFound, "doctor not found")
	case errors.Is(err, appointments.ErrNotFound):
		respondError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, identity.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, appointments.ErrSlotTaken):
		respondError(w, http.StatusConflict, "the selected time slot is no longer available")
	default:
		h.logger.Error("appointment request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

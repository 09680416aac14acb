package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clinic360/platform/internal/availability"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/pkg/logging"
)

// AvailabilityStore persists weekly availability slots.
type AvailabilityStore interface {
	SetSlot(ctx context.Context, req *availability.SetSlotRequest) (*availability.Slot, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]availability.Slot, error)
}

// ScheduleHandler manages doctor weekly schedules.
type ScheduleHandler struct {
	store  AvailabilityStore
	logger *logging.Logger
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(store AvailabilityStore, logger *logging.Logger) *ScheduleHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleHandler{store: store, logger: logger}
}

// Create handles POST /schedule. The route is doctor-only; the slot always
// belongs to the session user.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req availability.SetSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.DoctorID = session.UserID

	if err := req.Validate(); err != nil {
		switch {
		case errors.Is(err, availability.ErrInvalidDay):
			respondError(w, http.StatusBadRequest, "dayOfWeek must be between 0 and 6")
		default:
			respondError(w, http.StatusBadRequest, "startTime and endTime must be HH:MM with startTime before endTime")
		}
		return
	}

	slot, err := h.store.SetSlot(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to save schedule slot", "error", err, "doctor_id", session.UserID)
		respondError(w, http.StatusInternalServerError, "failed to save schedule")
		return
	}

	h.logger.Info("schedule slot created",
		"slot_id", slot.ID,
		"doctor_id", slot.DoctorID,
		"day_of_week", slot.DayOfWeek,
	)
	respondJSON(w, http.StatusCreated, slot)
}

// List handles GET /schedule and GET /schedule/{doctorID}. Without a path
// parameter it returns the session user's own slots.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := identity.SessionFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	doctorID := session.UserID
	if raw := chi.URLParam(r, "doctorID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid doctor id")
			return
		}
		doctorID = id
	}

	slots, err := h.store.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list schedule", "error", err, "doctor_id", doctorID)
		respondError(w, http.StatusInternalServerError, "failed to fetch schedule")
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

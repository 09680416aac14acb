package handlers

import (
	"context"
	"net/http"

	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/pkg/logging"
)

// DoctorDirectory lists registered doctors.
type DoctorDirectory interface {
	ListDoctors(ctx context.Context) ([]identity.User, error)
}

// DoctorsHandler serves the doctor directory.
type DoctorsHandler struct {
	directory DoctorDirectory
	logger    *logging.Logger
}

// NewDoctorsHandler creates a new doctors handler.
func NewDoctorsHandler(directory DoctorDirectory, logger *logging.Logger) *DoctorsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DoctorsHandler{directory: directory, logger: logger}
}

// List handles GET /doctors.
func (h *DoctorsHandler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.directory.ListDoctors(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch doctors")
		return
	}

	summaries := make([]identity.Summary, 0, len(doctors))
	for i := range doctors {
		summaries = append(summaries, doctors[i].Summarize())
	}
	respondJSON(w, http.StatusOK, summaries)
}

package appointments

import (
	"time"

	"github.com/clinic360/platform/internal/identity"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is allowed. Scheduled
// may move to completed or cancelled, both of which are terminal. A scheduled
// row may also stay scheduled, which is how a reschedule is expressed.
func (s Status) CanTransition(next Status) bool {
	if !next.Valid() {
		return false
	}
	return s == StatusScheduled
}

// Appointment is a concrete booked time range between one patient and one
// doctor. Rows are never deleted; cancellation is a status transition.
type Appointment struct {
	ID        int64             `json:"id"`
	PatientID int64             `json:"patientId"`
	DoctorID  int64             `json:"doctorId"`
	StartTime time.Time         `json:"startTime"`
	EndTime   time.Time         `json:"endTime"`
	Status    Status            `json:"status"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	Patient   *identity.Summary `json:"patient,omitempty"`
	Doctor    *identity.Summary `json:"doctor,omitempty"`
}

// UpdateStatusRequest carries a status transition and an optional reschedule.
type UpdateStatusRequest struct {
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
}

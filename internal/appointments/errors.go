package appointments

import "errors"

var (
	// ErrNotFound is returned when the appointment id does not exist
	ErrNotFound = errors.New("appointment not found")

	// ErrInvalidWindow is returned when start is not strictly before end
	ErrInvalidWindow = errors.New("startTime must be before endTime")

	// ErrPastStart is returned when the requested slot starts in the past
	ErrPastStart = errors.New("startTime must be in the future")

	// ErrSlotTaken is returned when the doctor already has an overlapping booking
	ErrSlotTaken = errors.New("doctor already has an appointment in this time range")

	// ErrInvalidTransition is returned for a status change out of a terminal state
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrInvalidStatus is returned for an unknown status value
	ErrInvalidStatus = errors.New("status must be scheduled, completed or cancelled")
)

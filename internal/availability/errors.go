package availability

import "errors"

var (
	// ErrInvalidDay is returned when day-of-week is outside 0-6
	ErrInvalidDay = errors.New("dayOfWeek must be between 0 and 6")

	// ErrInvalidWindow is returned when the slot window is malformed
	ErrInvalidWindow = errors.New("startTime must be a HH:MM value earlier than endTime")
)

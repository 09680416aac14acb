package availability

import (
	"strings"
	"time"
)

// Slot is a recurring weekly availability window for a doctor. Times are
// wall-clock "HH:MM" values with no date attached; DayOfWeek is 0 (Sunday)
// through 6 (Saturday).
type Slot struct {
	ID        int64  `json:"id"`
	DoctorID  int64  `json:"doctorId"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available bool   `json:"isAvailable"`
}

// SetSlotRequest is the payload for creating an availability slot.
type SetSlotRequest struct {
	DoctorID  int64  `json:"-"`
	DayOfWeek int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available *bool  `json:"isAvailable,omitempty"`
}

// Validate checks day range and that the window is well formed. Overlap with
// existing slots for the same doctor/day is intentionally not checked: split
// ranges (morning/afternoon) rely on multiple rows per day.
func (r *SetSlotRequest) Validate() error {
	if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
		return ErrInvalidDay
	}
	start, err := parseWallClock(r.StartTime)
	if err != nil {
		return ErrInvalidWindow
	}
	end, err := parseWallClock(r.EndTime)
	if err != nil {
		return ErrInvalidWindow
	}
	if !start.Before(end) {
		return ErrInvalidWindow
	}
	return nil
}

func parseWallClock(s string) (time.Time, error) {
	return time.Parse("15:04", strings.TrimSpace(s))
}

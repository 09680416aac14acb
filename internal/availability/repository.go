package availability

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists doctor availability slots.
type Repository struct {
	db Querier
}

// NewRepository initializes a slot repository.
func NewRepository(db Querier) *Repository {
	if db == nil {
		panic("availability: db querier required")
	}
	return &Repository{db: db}
}

// SetSlot inserts a new weekly slot. Rows are never merged or deduplicated;
// a doctor splitting a day into multiple ranges inserts one row per range.
func (r *Repository) SetSlot(ctx context.Context, req *SetSlotRequest) (*Slot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	query := `
		INSERT INTO doctor_schedule (doctor_id, day_of_week, start_time, end_time, is_available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query,
		req.DoctorID,
		req.DayOfWeek,
		req.StartTime,
		req.EndTime,
		available,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("availability: insert slot: %w", err)
	}

	return &Slot{
		ID:        id,
		DoctorID:  req.DoctorID,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Available: available,
	}, nil
}

// ListByDoctor returns a doctor's weekly slots ordered for display.
func (r *Repository) ListByDoctor(ctx context.Context, doctorID int64) ([]Slot, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time, is_available
		FROM doctor_schedule
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_time
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("availability: list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.DayOfWeek, &s.StartTime, &s.EndTime, &s.Available); err != nil {
			return nil, fmt.Errorf("availability: scan slot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("availability: list slots: %w", err)
	}
	return out, nil
}

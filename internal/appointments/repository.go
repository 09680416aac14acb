package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinic360/platform/internal/identity"
)

// DB is the subset of pgxpool.Pool used by the repository. Tests inject a
// pgxmock implementation.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the appointment ledger. It owns row lifecycle and the
// per-doctor conflict check; higher-level request validation lives in the
// booking service.
type Repository struct {
	db DB
}

// NewRepository initializes an appointment repository.
func NewRepository(db DB) *Repository {
	if db == nil {
		panic("appointments: db required")
	}
	return &Repository{db: db}
}

// Book inserts a scheduled appointment after verifying the doctor has no
// overlapping booking. The overlap check and the insert run in one
// transaction holding a per-doctor advisory lock, so two racing requests for
// the same doctor are serialized; the partial unique index on
// (doctor_id, start_time) is the backstop.
func (r *Repository) Book(ctx context.Context, a *Appointment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Held until commit/rollback; serializes concurrent bookings per doctor.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, a.DoctorID); err != nil {
		return fmt.Errorf("appointments: doctor lock: %w", err)
	}

	var taken bool
	overlap := `
		SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND status = 'scheduled'
			  AND start_time < $3
			  AND end_time > $2
		)
	`
	if err := tx.QueryRow(ctx, overlap, a.DoctorID, a.StartTime, a.EndTime).Scan(&taken); err != nil {
		return fmt.Errorf("appointments: overlap check: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}

	a.Status = StatusScheduled
	insert := `
		INSERT INTO appointments (patient_id, doctor_id, start_time, end_time, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, insert,
		a.PatientID,
		a.DoctorID,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.Reason,
	).Scan(&a.ID, &a.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("appointments: commit: %w", err)
	}
	return nil
}

// ListForUser returns the caller's appointments, filtered by patient or
// doctor depending on role and joined with both identities for display.
func (r *Repository) ListForUser(ctx context.Context, userID int64, role string) ([]Appointment, error) {
	filter := "a.patient_id = $1"
	if role == identity.RoleDoctor {
		filter = "a.doctor_id = $1"
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.patient_id, a.doctor_id, a.start_time, a.end_time, a.status, COALESCE(a.reason, ''), a.created_at,
		       p.full_name, p.email, COALESCE(p.specialization, ''),
		       d.full_name, d.email, COALESCE(d.specialization, '')
		FROM appointments a
		JOIN users p ON p.id = a.patient_id
		JOIN users d ON d.id = a.doctor_id
		WHERE %s
		ORDER BY a.start_time
	`, filter)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		patient := identity.Summary{Role: identity.RolePatient}
		doctor := identity.Summary{Role: identity.RoleDoctor}
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &a.EndTime, &a.Status, &a.Reason, &a.CreatedAt,
			&patient.FullName, &patient.Email, &patient.Specialization,
			&doctor.FullName, &doctor.Email, &doctor.Specialization,
		); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		patient.ID = a.PatientID
		doctor.ID = a.DoctorID
		a.Patient = &patient
		a.Doctor = &doctor
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	return out, nil
}

// GetByID fetches a single appointment without identity joins.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, start_time, end_time, status, COALESCE(reason, ''), created_at
		FROM appointments
		WHERE id = $1
	`
	var a Appointment
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &a.EndTime, &a.Status, &a.Reason, &a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select: %w", err)
	}
	return &a, nil
}

// UpdateStatus performs a transition-checked status update and optional
// reschedule, returning the updated row. Terminal states reject any further
// change with ErrInvalidTransition.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, req *UpdateStatusRequest) (*Appointment, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		current    Status
		start, end time.Time
	)
	if err := tx.QueryRow(ctx,
		`SELECT status, start_time, end_time FROM appointments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&current, &start, &end); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: lock row: %w", err)
	}

	if !current.CanTransition(req.Status) {
		return nil, ErrInvalidTransition
	}

	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if !start.Before(end) {
		return nil, ErrInvalidWindow
	}

	update := `
		UPDATE appointments
		SET status = $2,
		    start_time = COALESCE($3, start_time),
		    end_time = COALESCE($4, end_time),
		    reason = COALESCE($5, reason)
		WHERE id = $1
		RETURNING id, patient_id, doctor_id, start_time, end_time, status, COALESCE(reason, ''), created_at
	`
	var a Appointment
	if err := tx.QueryRow(ctx, update, id, req.Status, req.StartTime, req.EndTime, req.Reason).Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.StartTime, &a.EndTime, &a.Status, &a.Reason, &a.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("appointments: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit: %w", err)
	}
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtap-api/internal/models"
)

// AttendanceRecordRepository persists finalized per-day snapshots.
type AttendanceRecordRepository struct {
	db *sqlx.DB
}

// NewAttendanceRecordRepository constructs the repository.
func NewAttendanceRecordRepository(db *sqlx.DB) *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: db}
}

// ListByEnrollment returns a student's full history in insertion order.
func (r *AttendanceRecordRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AttendanceRecord, error) {
	query := `SELECT id, enrollment_id, date, status, override_status, last_arrival, last_leave, duration_seconds, created_at
        FROM attendance_records
        WHERE enrollment_id = $1
        ORDER BY created_at ASC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return rows, nil
}

// FindByEnrollmentAndDate returns the record for one calendar date, or nil
// when the date has not been finalized.
func (r *AttendanceRecordRepository) FindByEnrollmentAndDate(ctx context.Context, enrollmentID, date string) (*models.AttendanceRecord, error) {
	query := `SELECT id, enrollment_id, date, status, override_status, last_arrival, last_leave, duration_seconds, created_at
        FROM attendance_records
        WHERE enrollment_id = $1 AND date = $2`
	var row models.AttendanceRecord
	if err := r.db.GetContext(ctx, &row, query, enrollmentID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance record: %w", err)
	}
	return &row, nil
}

// ReplaceForDate writes a whole course's records for one date inside a
// single transaction. The UNIQUE (enrollment_id, date) index plus the
// ON CONFLICT upsert keeps re-finalization idempotent: a stale same-day row
// is replaced, never duplicated, even under concurrent finalize calls.
func (r *AttendanceRecordRepository) ReplaceForDate(ctx context.Context, records []models.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback() //nolint:errcheck
		}
	}()

	query := `INSERT INTO attendance_records (id, enrollment_id, date, status, override_status, last_arrival, last_leave, duration_seconds, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (enrollment_id, date)
DO UPDATE SET status = EXCLUDED.status, override_status = EXCLUDED.override_status,
        last_arrival = EXCLUDED.last_arrival, last_leave = EXCLUDED.last_leave,
        duration_seconds = EXCLUDED.duration_seconds`

	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.EnrollmentID, rec.Date, rec.Status,
			rec.OverrideStatus, rec.LastArrival, rec.LastLeave, rec.DurationSeconds, rec.CreatedAt); err != nil {
			return fmt.Errorf("upsert attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}
	committed = true
	return nil
}

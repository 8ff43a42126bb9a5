package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtap-api/internal/models"
)

const enrollmentColumns = `en.id, en.course_id, en.student_id, en.last_arrival, en.last_leave, en.total_seconds,
        en.status, en.override_status, en.created_at, en.updated_at`

// EnrollmentRepository persists per-(course, student) live state.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll creates a zeroed live-state row for the student in the course.
func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		StudentID: studentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO enrollments (id, course_id, student_id, total_seconds, created_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, enrollment.ID, courseID, studentID, now, now); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}
	return enrollment, nil
}

// ListByCourse returns the course roster with live state and identity.
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.uid AS student_uid, s.full_name AS student_name
        FROM enrollments en
        JOIN students s ON s.id = en.student_id
        WHERE en.course_id = $1
        ORDER BY s.full_name ASC`, enrollmentColumns)
	var rows []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return rows, nil
}

// FindByCourseAndStudent returns live state for one student in a course.
func (r *EnrollmentRepository) FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.uid AS student_uid, s.full_name AS student_name
        FROM enrollments en
        JOIN students s ON s.id = en.student_id
        WHERE en.course_id = $1 AND en.student_id = $2`, enrollmentColumns)
	var row models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &row, query, courseID, studentID); err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &row, nil
}

// FindByCourseAndUID resolves a scanned card credential within a course
// roster. Missing rows surface as sql.ErrNoRows so the ingestion boundary
// can reject unknown cards instead of creating them.
func (r *EnrollmentRepository) FindByCourseAndUID(ctx context.Context, courseID, uid string) (*models.EnrollmentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, s.uid AS student_uid, s.full_name AS student_name
        FROM enrollments en
        JOIN students s ON s.id = en.student_id
        WHERE en.course_id = $1 AND s.uid = $2`, enrollmentColumns)
	var row models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &row, query, courseID, uid); err != nil {
		return nil, fmt.Errorf("find enrollment by uid: %w", err)
	}
	return &row, nil
}

// RecordArrival upserts the arrival tap. When the previous pair was already
// complete the leave and accumulator are reset so the new pair starts clean.
func (r *EnrollmentRepository) RecordArrival(ctx context.Context, id, timestamp string, resetPair bool) error {
	now := time.Now().UTC()
	var query string
	if resetPair {
		query = `UPDATE enrollments SET last_arrival = $2, last_leave = NULL, total_seconds = 0, updated_at = $3 WHERE id = $1`
	} else {
		query = `UPDATE enrollments SET last_arrival = $2, updated_at = $3 WHERE id = $1`
	}
	if _, err := r.db.ExecContext(ctx, query, id, timestamp, now); err != nil {
		return fmt.Errorf("record arrival: %w", err)
	}
	return nil
}

// RecordLeave upserts the leave tap, optionally with the reader's
// accumulated seconds.
func (r *EnrollmentRepository) RecordLeave(ctx context.Context, id, timestamp string, totalSeconds *int64) error {
	now := time.Now().UTC()
	if totalSeconds != nil {
		query := `UPDATE enrollments SET last_leave = $2, total_seconds = $3, updated_at = $4 WHERE id = $1`
		if _, err := r.db.ExecContext(ctx, query, id, timestamp, *totalSeconds, now); err != nil {
			return fmt.Errorf("record leave: %w", err)
		}
		return nil
	}
	query := `UPDATE enrollments SET last_leave = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, timestamp, now); err != nil {
		return fmt.Errorf("record leave: %w", err)
	}
	return nil
}

// SetOverride writes or clears the manual status. Only the override field
// is touched; tap timestamps and history stay as they are.
func (r *EnrollmentRepository) SetOverride(ctx context.Context, id string, status *models.Status) error {
	query := `UPDATE enrollments SET override_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

// CacheStatus stores the last computed automatic status for display reads.
func (r *EnrollmentRepository) CacheStatus(ctx context.Context, id string, status models.Status) error {
	query := `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("cache status: %w", err)
	}
	return nil
}

// ClearLiveState resets every roster row of a course for the next session.
// History is untouched.
func (r *EnrollmentRepository) ClearLiveState(ctx context.Context, courseID string) error {
	query := `UPDATE enrollments
        SET last_arrival = NULL, last_leave = NULL, total_seconds = 0, status = $2, override_status = NULL, updated_at = $3
        WHERE course_id = $1`
	if _, err := r.db.ExecContext(ctx, query, courseID, models.StatusUnknown, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear live state: %w", err)
	}
	return nil
}

// Remove deletes the enrollment row.
func (r *EnrollmentRepository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id); err != nil {
		return fmt.Errorf("remove enrollment: %w", err)
	}
	return nil
}

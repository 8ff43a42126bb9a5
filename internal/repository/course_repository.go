package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/classtap-api/internal/models"
)

// CourseRepository handles persistence for course configuration rows.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the provided filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ProfessorID != "" {
		where = append(where, fmt.Sprintf("professor_id = $%d", len(args)+1))
		args = append(args, filter.ProfessorID)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, code, name, professor_id, start_time, end_time, grace_minutes, min_minutes_present, created_at, updated_at
        FROM courses WHERE %s
        ORDER BY code ASC
        LIMIT %d OFFSET %d`, whereClause, size, offset)

	var rows []models.Course
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM courses WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return rows, total, nil
}

// FindByID returns a single course.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT id, code, name, professor_id, start_time, end_time, grace_minutes, min_minutes_present, created_at, updated_at
        FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("find course %s: %w", id, err)
	}
	return &course, nil
}

// ExistsByCode checks uniqueness of the course code.
func (r *CourseRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT COUNT(*) FROM courses WHERE code = $1"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check course code: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := time.Now().UTC()
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.CreatedAt = now
	course.UpdatedAt = now
	query := `INSERT INTO courses (id, code, name, professor_id, start_time, end_time, grace_minutes, min_minutes_present, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query, course.ID, course.Code, course.Name, course.ProfessorID,
		course.StartTime, course.EndTime, course.GraceMinutes, course.MinMinutesPresent, course.CreatedAt, course.UpdatedAt); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update persists configuration changes for a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	query := `UPDATE courses SET name = $2, professor_id = $3, start_time = $4, end_time = $5, grace_minutes = $6, min_minutes_present = $7, updated_at = $8
        WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, course.ID, course.Name, course.ProfessorID, course.StartTime, course.EndTime,
		course.GraceMinutes, course.MinMinutesPresent, course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update course %s: %w", course.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update course %s: %w", course.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update course %s: %w", course.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a course and cascades to its enrollments.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}

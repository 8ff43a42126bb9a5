package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/engine"
	"github.com/noah-isme/classtap-api/internal/models"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
)

type attendanceCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type attendanceEnrollmentRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
	FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.EnrollmentDetail, error)
	SetOverride(ctx context.Context, id string, status *models.Status) error
	CacheStatus(ctx context.Context, id string, status models.Status) error
	ClearLiveState(ctx context.Context, courseID string) error
}

type attendanceHistoryRepository interface {
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.AttendanceRecord, error)
	FindByEnrollmentAndDate(ctx context.Context, enrollmentID, date string) (*models.AttendanceRecord, error)
	ReplaceForDate(ctx context.Context, records []models.AttendanceRecord) error
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AttendanceService orchestrates live status resolution, overrides,
// finalization and summaries for a course roster.
type AttendanceService struct {
	courses     attendanceCourseRepository
	enrollments attendanceEnrollmentRepository
	history     attendanceHistoryRepository
	cache       summaryCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs the attendance service. The clock is
// injectable so status resolution is testable at fixed instants.
func NewAttendanceService(courses attendanceCourseRepository, enrollments attendanceEnrollmentRepository,
	history attendanceHistoryRepository, cache summaryCache, cacheTTL time.Duration,
	validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		courses:     courses,
		enrollments: enrollments,
		history:     history,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now() },
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.Status(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// WithClock replaces the service clock. Test hook.
func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

func summaryCacheKey(courseID string, mode models.EvaluationMode) string {
	return fmt.Sprintf("attendance:summary:%s:%s", courseID, mode)
}

func parseMode(raw string) models.EvaluationMode {
	mode := models.EvaluationMode(strings.ToLower(raw))
	if !mode.Valid() {
		return models.ModePreview
	}
	return mode
}

// ResolveStatuses returns the live roster view: per-student automatic
// status, override and effective status plus the attendance ratio.
func (s *AttendanceService) ResolveStatuses(ctx context.Context, courseID, rawMode string) (*dto.CourseAttendanceResponse, error) {
	mode := parseMode(rawMode)
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	now := s.now()
	todayKey := models.DateKey(now)
	students := make([]dto.StudentStatusResponse, 0, len(roster))
	for _, row := range roster {
		automatic := engine.ResolveAutomatic(*course, row.Enrollment, now)

		todayRecord, err := s.history.FindByEnrollmentAndDate(ctx, row.ID, todayKey)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's record")
		}
		effective := engine.Effective(row.Enrollment, todayRecord, automatic, mode)

		records, err := s.history.ListByEnrollment(ctx, row.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
		}

		students = append(students, dto.StudentStatusResponse{
			EnrollmentID:    row.ID,
			StudentID:       row.StudentID,
			StudentUID:      row.StudentUID,
			StudentName:     row.StudentName,
			LastArrival:     row.LastArrival,
			LastLeave:       row.LastLeave,
			AutomaticStatus: automatic,
			OverrideStatus:  row.OverrideStatus,
			EffectiveStatus: effective,
			Summary:         engine.SummarizeStudent(records, todayKey, effective, mode),
		})

		if row.Status == nil || *row.Status != automatic {
			if err := s.enrollments.CacheStatus(ctx, row.ID, automatic); err != nil {
				s.logger.Warn("failed to cache resolved status", zap.String("enrollment_id", row.ID), zap.Error(err))
			}
		}
	}

	return &dto.CourseAttendanceResponse{
		CourseID: courseID,
		Mode:     mode,
		Date:     todayKey,
		Students: students,
	}, nil
}

// ClassSummary returns the weighted attended/total ratio across the roster.
// Results are cached briefly; every write path invalidates the course keys.
func (s *AttendanceService) ClassSummary(ctx context.Context, courseID, rawMode string) (*dto.ClassSummaryResponse, error) {
	mode := parseMode(rawMode)

	var cached dto.ClassSummaryResponse
	if err := s.cache.Get(ctx, summaryCacheKey(courseID, mode), &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("summary cache read failed", zap.String("course_id", courseID), zap.Error(err))
	}

	view, err := s.ResolveStatuses(ctx, courseID, rawMode)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.Summary, 0, len(view.Students))
	for _, st := range view.Students {
		summaries = append(summaries, st.Summary)
	}

	resp := &dto.ClassSummaryResponse{
		CourseID: courseID,
		Summary:  engine.SummarizeClass(summaries),
	}
	if err := s.cache.Set(ctx, summaryCacheKey(courseID, mode), resp, s.cacheTTL); err != nil {
		s.logger.Warn("summary cache write failed", zap.String("course_id", courseID), zap.Error(err))
	}
	return resp, nil
}

// StudentHistory returns one student's finalized records and ratio.
func (s *AttendanceService) StudentHistory(ctx context.Context, courseID, studentID, rawMode string) (*dto.HistoryResponse, error) {
	mode := parseMode(rawMode)
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.loadEnrollment(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}

	records, err := s.history.ListByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load history")
	}

	now := s.now()
	todayKey := models.DateKey(now)
	automatic := engine.ResolveAutomatic(*course, enrollment.Enrollment, now)
	todayRecord, err := s.history.FindByEnrollmentAndDate(ctx, enrollment.ID, todayKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's record")
	}
	effective := engine.Effective(enrollment.Enrollment, todayRecord, automatic, mode)

	return &dto.HistoryResponse{
		EnrollmentID: enrollment.ID,
		StudentID:    studentID,
		Records:      records,
		Summary:      engine.SummarizeStudent(records, todayKey, effective, mode),
	}, nil
}

// SetOverride sets or clears the manual status for one student. Only the
// override field changes; taps and history stay as they are.
func (s *AttendanceService) SetOverride(ctx context.Context, courseID, studentID string, req dto.OverrideRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override payload")
	}

	enrollment, err := s.loadEnrollment(ctx, courseID, studentID)
	if err != nil {
		return err
	}

	var status *models.Status
	if req.Status != "" {
		v := models.Status(strings.ToUpper(req.Status))
		status = &v
	}
	if err := s.enrollments.SetOverride(ctx, enrollment.ID, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to set override")
	}
	s.invalidateSummaries(ctx, courseID)
	return nil
}

// FinalizeDay snapshots the roster's live state into one immutable record
// per student for the given date. Re-finalizing the same date replaces the
// day's records, so the call is idempotent per date.
func (s *AttendanceService) FinalizeDay(ctx context.Context, courseID string, req dto.FinalizeRequest) (*dto.FinalizeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize payload")
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := now
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, now.Location())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize date")
		}
		date = parsed
	}

	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	records := make([]models.AttendanceRecord, 0, len(roster))
	for _, row := range roster {
		automatic := engine.ResolveAutomatic(*course, row.Enrollment, now)
		records = append(records, engine.BuildRecord(row.Enrollment, date, automatic))
	}

	if err := s.history.ReplaceForDate(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance records")
	}

	s.invalidateSummaries(ctx, courseID)
	s.logger.Info("finalized attendance",
		zap.String("course_id", courseID),
		zap.String("date", models.DateKey(date)),
		zap.Int("records", len(records)))

	return &dto.FinalizeResponse{
		CourseID: courseID,
		Date:     models.DateKey(date),
		Recorded: len(records),
	}, nil
}

// ClearLiveState resets taps, accumulators and overrides for the whole
// roster ahead of the next session. Finalized history is untouched.
func (s *AttendanceService) ClearLiveState(ctx context.Context, courseID string) error {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.enrollments.ClearLiveState(ctx, courseID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear live state")
	}
	s.invalidateSummaries(ctx, courseID)
	return nil
}

func (s *AttendanceService) loadCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *AttendanceService) loadEnrollment(ctx context.Context, courseID, studentID string) (*models.EnrollmentDetail, error) {
	enrollment, err := s.enrollments.FindByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEnrolled, "student not enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return enrollment, nil
}

func (s *AttendanceService) invalidateSummaries(ctx context.Context, courseID string) {
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("attendance:summary:%s:*", courseID)); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.String("course_id", courseID), zap.Error(err))
	}
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/models"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
)

type mockCourseCRUDRepo struct {
	courses map[string]models.Course
	codes   map[string]bool
	created *models.Course
	updated *models.Course
	deleted []string
}

func (m *mockCourseCRUDRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCourseCRUDRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseCRUDRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	return m.codes[code], nil
}

func (m *mockCourseCRUDRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = map[string]models.Course{}
	}
	if course.ID == "" {
		course.ID = "new-course"
	}
	m.courses[course.ID] = *course
	m.created = course
	return nil
}

func (m *mockCourseCRUDRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	m.courses[course.ID] = *course
	m.updated = course
	return nil
}

func (m *mockCourseCRUDRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.courses, id)
	return nil
}

type mockEnrollRepo struct {
	existing map[string]models.EnrollmentDetail
	enrolled []string
	removed  []string
}

func (m *mockEnrollRepo) Enroll(ctx context.Context, courseID, studentID string) (*models.Enrollment, error) {
	m.enrolled = append(m.enrolled, courseID+"/"+studentID)
	return &models.Enrollment{ID: "enr-new", CourseID: courseID, StudentID: studentID}, nil
}

func (m *mockEnrollRepo) FindByCourseAndStudent(ctx context.Context, courseID, studentID string) (*models.EnrollmentDetail, error) {
	if e, ok := m.existing[courseID+"/"+studentID]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollRepo) Remove(ctx context.Context, id string) error {
	m.removed = append(m.removed, id)
	return nil
}

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func newTestCourseService(courses *mockCourseCRUDRepo, enrollments *mockEnrollRepo, students *mockStudentReader) *CourseService {
	return NewCourseService(courses, enrollments, students, validator.New(), zap.NewNop())
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseCRUDRepo{}
	svc := newTestCourseService(repo, &mockEnrollRepo{}, &mockStudentReader{})

	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Code:              "cs410",
		Name:              "Distributed Systems",
		StartTime:         "09:00",
		EndTime:           "10:15",
		GraceMinutes:      10,
		MinMinutesPresent: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "CS410", course.Code)
	require.NotNil(t, repo.created)
}

func TestCourseServiceCreateRejectsBadClockTime(t *testing.T) {
	svc := newTestCourseService(&mockCourseCRUDRepo{}, &mockEnrollRepo{}, &mockStudentReader{})

	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Code:      "CS410",
		Name:      "Distributed Systems",
		StartTime: "morning",
		EndTime:   "10:15",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseCRUDRepo{codes: map[string]bool{"CS410": true}}
	svc := newTestCourseService(repo, &mockEnrollRepo{}, &mockStudentReader{})

	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{
		Code:      "CS410",
		Name:      "Distributed Systems",
		StartTime: "09:00",
		EndTime:   "10:15",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCourseServiceUpdatePatchesFields(t *testing.T) {
	repo := &mockCourseCRUDRepo{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Code: "CS410", Name: "Old", StartTime: "09:00", EndTime: "10:15", GraceMinutes: 10},
	}}
	svc := newTestCourseService(repo, &mockEnrollRepo{}, &mockStudentReader{})

	grace := 5
	name := "Distributed Systems"
	course, err := svc.Update(context.Background(), "course-1", dto.UpdateCourseRequest{Name: &name, GraceMinutes: &grace})
	require.NoError(t, err)
	assert.Equal(t, "Distributed Systems", course.Name)
	assert.Equal(t, 5, course.GraceMinutes)
	assert.Equal(t, "09:00", course.StartTime)
}

func TestCourseServiceEnroll(t *testing.T) {
	repo := &mockCourseCRUDRepo{courses: map[string]models.Course{"course-1": {ID: "course-1"}}}
	students := &mockStudentReader{students: map[string]models.Student{"stu-1": {ID: "stu-1", Active: true}}}
	enrollments := &mockEnrollRepo{}
	svc := newTestCourseService(repo, enrollments, students)

	enrollment, err := svc.Enroll(context.Background(), "course-1", dto.EnrollRequest{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.Equal(t, "enr-new", enrollment.ID)
	assert.Contains(t, enrollments.enrolled, "course-1/stu-1")
}

func TestCourseServiceEnrollDuplicate(t *testing.T) {
	repo := &mockCourseCRUDRepo{courses: map[string]models.Course{"course-1": {ID: "course-1"}}}
	students := &mockStudentReader{students: map[string]models.Student{"stu-1": {ID: "stu-1"}}}
	enrollments := &mockEnrollRepo{existing: map[string]models.EnrollmentDetail{
		"course-1/stu-1": {Enrollment: models.Enrollment{ID: "enr-1"}},
	}}
	svc := newTestCourseService(repo, enrollments, students)

	_, err := svc.Enroll(context.Background(), "course-1", dto.EnrollRequest{StudentID: "stu-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCourseServiceUnenroll(t *testing.T) {
	repo := &mockCourseCRUDRepo{courses: map[string]models.Course{"course-1": {ID: "course-1"}}}
	enrollments := &mockEnrollRepo{existing: map[string]models.EnrollmentDetail{
		"course-1/stu-1": {Enrollment: models.Enrollment{ID: "enr-1"}},
	}}
	svc := newTestCourseService(repo, enrollments, &mockStudentReader{})

	err := svc.Unenroll(context.Background(), "course-1", "stu-1")
	require.NoError(t, err)
	assert.Contains(t, enrollments.removed, "enr-1")
}

func TestCourseServiceUnenrollMissing(t *testing.T) {
	svc := newTestCourseService(&mockCourseCRUDRepo{}, &mockEnrollRepo{}, &mockStudentReader{})

	err := svc.Unenroll(context.Background(), "course-1", "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotEnrolled.Code, appErr.Code)
}

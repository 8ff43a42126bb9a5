package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/models"
	"github.com/noah-isme/classtap-api/internal/service"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
)

type attendanceServiceMock struct {
	viewResp     *dto.CourseAttendanceResponse
	summaryResp  *dto.ClassSummaryResponse
	historyResp  *dto.HistoryResponse
	finalizeResp *dto.FinalizeResponse
	err          error

	overrideCourse  string
	overrideStudent string
	overrideReq     dto.OverrideRequest
	clearedCourse   string
}

func (m *attendanceServiceMock) ResolveStatuses(ctx context.Context, courseID, rawMode string) (*dto.CourseAttendanceResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.viewResp, nil
}

func (m *attendanceServiceMock) ClassSummary(ctx context.Context, courseID, rawMode string) (*dto.ClassSummaryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.summaryResp, nil
}

func (m *attendanceServiceMock) StudentHistory(ctx context.Context, courseID, studentID, rawMode string) (*dto.HistoryResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.historyResp, nil
}

func (m *attendanceServiceMock) SetOverride(ctx context.Context, courseID, studentID string, req dto.OverrideRequest) error {
	m.overrideCourse = courseID
	m.overrideStudent = studentID
	m.overrideReq = req
	return m.err
}

func (m *attendanceServiceMock) FinalizeDay(ctx context.Context, courseID string, req dto.FinalizeRequest) (*dto.FinalizeResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.finalizeResp, nil
}

func (m *attendanceServiceMock) ClearLiveState(ctx context.Context, courseID string) error {
	m.clearedCourse = courseID
	return m.err
}

func attendanceTestContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestAttendanceHandlerCourseView(t *testing.T) {
	mock := &attendanceServiceMock{viewResp: &dto.CourseAttendanceResponse{
		CourseID: "course-1",
		Mode:     models.ModePreview,
		Date:     "2026-04-13",
		Students: []dto.StudentStatusResponse{{EnrollmentID: "enr-1", EffectiveStatus: models.StatusOnTime}},
	}}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	c, w := attendanceTestContext(t, http.MethodGet, "/courses/course-1/attendance", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.CourseView(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.CourseAttendanceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "course-1", envelope.Data.CourseID)
	require.Len(t, envelope.Data.Students, 1)
	assert.Equal(t, models.StatusOnTime, envelope.Data.Students[0].EffectiveStatus)
}

func TestAttendanceHandlerCourseViewNotFound(t *testing.T) {
	mock := &attendanceServiceMock{err: appErrors.ErrNotFound}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	c, w := attendanceTestContext(t, http.MethodGet, "/courses/missing/attendance", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.CourseView(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttendanceHandlerSetOverride(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	body, _ := json.Marshal(dto.OverrideRequest{Status: "EXCUSED"})
	c, w := attendanceTestContext(t, http.MethodPut, "/courses/course-1/students/stu-1/override", body)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}, {Key: "sid", Value: "stu-1"}}

	handler.SetOverride(c)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "course-1", mock.overrideCourse)
	assert.Equal(t, "stu-1", mock.overrideStudent)
	assert.Equal(t, "EXCUSED", mock.overrideReq.Status)
}

func TestAttendanceHandlerSetOverrideInvalidBody(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	c, w := attendanceTestContext(t, http.MethodPut, "/courses/course-1/students/stu-1/override", []byte(`not json`))
	c.Params = gin.Params{{Key: "id", Value: "course-1"}, {Key: "sid", Value: "stu-1"}}

	handler.SetOverride(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerFinalizeWithoutBody(t *testing.T) {
	mock := &attendanceServiceMock{finalizeResp: &dto.FinalizeResponse{CourseID: "course-1", Date: "2026-04-13", Recorded: 24}}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	c, w := attendanceTestContext(t, http.MethodPost, "/courses/course-1/attendance/finalize", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Finalize(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.FinalizeResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 24, envelope.Data.Recorded)
}

func TestAttendanceHandlerClear(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock, service.NewMetricsService())

	c, w := attendanceTestContext(t, http.MethodPost, "/courses/course-1/attendance/clear", nil)
	c.Params = gin.Params{{Key: "id", Value: "course-1"}}

	handler.Clear(c)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "course-1", mock.clearedCourse)
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/service"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
	"github.com/noah-isme/classtap-api/pkg/response"
)

type attendanceService interface {
	ResolveStatuses(ctx context.Context, courseID, rawMode string) (*dto.CourseAttendanceResponse, error)
	ClassSummary(ctx context.Context, courseID, rawMode string) (*dto.ClassSummaryResponse, error)
	StudentHistory(ctx context.Context, courseID, studentID, rawMode string) (*dto.HistoryResponse, error)
	SetOverride(ctx context.Context, courseID, studentID string, req dto.OverrideRequest) error
	FinalizeDay(ctx context.Context, courseID string, req dto.FinalizeRequest) (*dto.FinalizeResponse, error)
	ClearLiveState(ctx context.Context, courseID string) error
}

// AttendanceHandler exposes the live status, override, finalize and
// summary endpoints for a course.
type AttendanceHandler struct {
	service attendanceService
	metrics *service.MetricsService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc attendanceService, metrics *service.MetricsService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, metrics: metrics}
}

// CourseView godoc
// @Summary Live per-student attendance for a course
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Param mode query string false "preview or trusted"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/attendance [get]
func (h *AttendanceHandler) CourseView(c *gin.Context) {
	view, err := h.service.ResolveStatuses(c.Request.Context(), c.Param("id"), c.DefaultQuery("mode", "preview"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ClassSummary godoc
// @Summary Weighted class attendance percentage
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Param mode query string false "preview or trusted"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/attendance/class [get]
func (h *AttendanceHandler) ClassSummary(c *gin.Context) {
	summary, err := h.service.ClassSummary(c.Request.Context(), c.Param("id"), c.DefaultQuery("mode", "preview"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// StudentHistory godoc
// @Summary One student's finalized attendance history
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Param sid path string true "Student ID"
// @Param mode query string false "preview or trusted"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/students/{sid}/history [get]
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	history, err := h.service.StudentHistory(c.Request.Context(), c.Param("id"), c.Param("sid"), c.DefaultQuery("mode", "trusted"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// SetOverride godoc
// @Summary Set or clear a manual status for one student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param sid path string true "Student ID"
// @Param payload body dto.OverrideRequest true "Override payload, empty status clears"
// @Success 204
// @Router /courses/{id}/students/{sid}/override [put]
func (h *AttendanceHandler) SetOverride(c *gin.Context) {
	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetOverride(c.Request.Context(), c.Param("id"), c.Param("sid"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Finalize godoc
// @Summary Finalize a day into immutable attendance records
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.FinalizeRequest false "Finalize payload, empty date means today"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/attendance/finalize [post]
func (h *AttendanceHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	resp, err := h.service.FinalizeDay(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveFinalize(resp.Recorded)
	response.JSON(c, http.StatusOK, resp, nil)
}

// Clear godoc
// @Summary Clear live tap state for the next session
// @Tags Attendance
// @Produce json
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id}/attendance/clear [post]
func (h *AttendanceHandler) Clear(c *gin.Context) {
	if err := h.service.ClearLiveState(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

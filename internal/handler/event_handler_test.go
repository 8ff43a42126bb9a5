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
	"github.com/noah-isme/classtap-api/internal/service"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
)

type eventServiceMock struct {
	resp    *dto.TapEventResponse
	err     error
	lastReq dto.TapEventRequest
}

func (m *eventServiceMock) Ingest(ctx context.Context, req dto.TapEventRequest) (*dto.TapEventResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestEventHandlerIngest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &eventServiceMock{resp: &dto.TapEventResponse{
		EnrollmentID: "enr-1",
		StudentName:  "Ada Lovelace",
		Event:        "arrival",
		Timestamp:    "2026-04-13T09:02:00Z",
	}}
	handler := NewEventHandler(mock, service.NewMetricsService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.TapEventRequest{
		CourseID:  "course-1",
		UID:       "04A1B2",
		Event:     "arrival",
		Timestamp: "2026-04-13T09:02:00Z",
	})
	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Ingest(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "04A1B2", mock.lastReq.UID)

	var envelope struct {
		Data dto.TapEventResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "enr-1", envelope.Data.EnrollmentID)
	assert.Equal(t, "arrival", envelope.Data.Event)
}

func TestEventHandlerIngestUnknownCard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &eventServiceMock{err: appErrors.ErrNotEnrolled}
	handler := NewEventHandler(mock, service.NewMetricsService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.TapEventRequest{
		CourseID:  "course-1",
		UID:       "FFFFFF",
		Event:     "arrival",
		Timestamp: "2026-04-13T09:02:00Z",
	})
	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Ingest(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventHandlerIngestMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEventHandler(&eventServiceMock{}, service.NewMetricsService())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Ingest(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

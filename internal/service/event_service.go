package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/models"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
)

type eventEnrollmentRepository interface {
	FindByCourseAndUID(ctx context.Context, courseID, uid string) (*models.EnrollmentDetail, error)
	RecordArrival(ctx context.Context, id, timestamp string, resetPair bool) error
	RecordLeave(ctx context.Context, id, timestamp string, totalSeconds *int64) error
}

// EventService is the ingestion boundary for card-reader taps. It stores
// raw timestamps exactly as received and never computes a status; display
// reads resolve statuses on demand.
type EventService struct {
	enrollments eventEnrollmentRepository
	cache       summaryCache
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEventService constructs the event ingestion service.
func NewEventService(enrollments eventEnrollmentRepository, cache summaryCache, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{enrollments: enrollments, cache: cache, validator: validate, logger: logger}
}

// Ingest records one tap. An unknown card UID for the course is rejected
// with 404 and never auto-creates a roster row.
func (s *EventService) Ingest(ctx context.Context, req dto.TapEventRequest) (*dto.TapEventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tap payload")
	}

	enrollment, err := s.enrollments.FindByCourseAndUID(ctx, req.CourseID, req.UID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEnrolled, "card is not enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve card")
	}

	switch req.Event {
	case "arrival":
		// A new arrival over an already complete pair starts a fresh
		// session: leave and the reader accumulator are reset.
		resetPair := enrollment.LastArrival != nil && enrollment.LastLeave != nil
		if err := s.enrollments.RecordArrival(ctx, enrollment.ID, req.Timestamp, resetPair); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record arrival")
		}
	case "exit":
		if err := s.enrollments.RecordLeave(ctx, enrollment.ID, req.Timestamp, req.TotalSeconds); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record leave")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "event must be arrival or exit")
	}

	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("attendance:summary:%s:*", req.CourseID)); err != nil {
		s.logger.Warn("failed to invalidate summary cache", zap.String("course_id", req.CourseID), zap.Error(err))
	}

	s.logger.Info("tap ingested",
		zap.String("course_id", req.CourseID),
		zap.String("uid", req.UID),
		zap.String("event", req.Event))

	return &dto.TapEventResponse{
		EnrollmentID: enrollment.ID,
		StudentName:  enrollment.StudentName,
		Event:        req.Event,
		Timestamp:    req.Timestamp,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classtap-api/internal/dto"
	"github.com/noah-isme/classtap-api/internal/models"
	appErrors "github.com/noah-isme/classtap-api/pkg/errors"
	"github.com/noah-isme/classtap-api/pkg/export"
	"github.com/noah-isme/classtap-api/pkg/jobs"
	"github.com/noah-isme/classtap-api/pkg/storage"
)

type attendanceView interface {
	ResolveStatuses(ctx context.Context, courseID, rawMode string) (*dto.CourseAttendanceResponse, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type excelRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
	Retries   int
}

// ExportService renders course attendance reports in the background and
// serves them through signed download tokens.
type ExportService struct {
	attendance attendanceView
	courses    attendanceCourseRepository
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	excel      excelRenderer
	signer     *storage.SignedURLSigner
	queue      *jobs.Queue
	logger     *zap.Logger
	cfg        ExportConfig

	mu      sync.RWMutex
	tracked map[string]*models.ExportJob
}

// NewExportService constructs an ExportService and its worker queue. Call
// Start before enqueueing and Stop on shutdown.
func NewExportService(attendance attendanceView, courses attendanceCourseRepository, store fileStorage,
	signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	svc := &ExportService{
		attendance: attendance,
		courses:    courses,
		storage:    store,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		excel:      export.NewExcelExporter(),
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
		tracked:    map[string]*models.ExportJob{},
	}
	svc.queue = jobs.NewQueue("exports", svc.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return svc
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// Enqueue queues a new export job for a course.
func (s *ExportService) Enqueue(ctx context.Context, courseID, createdBy string, req dto.ExportRequest) (*models.ExportJob, error) {
	format := models.ExportFormat(strings.ToLower(req.Format))
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF, models.ExportFormatXLSX:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be pdf, xlsx or csv")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	job := &models.ExportJob{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.tracked[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "export", Payload: job.ID}); err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return job, nil
}

// Job returns tracked job state.
func (s *ExportService) Job(id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.tracked[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	copied := *job
	return &copied, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string) (jobID, relPath string, err error) {
	jobID, relPath, _, err = s.signer.Parse(token, false)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	return jobID, relPath, nil
}

// Open returns a handle to a stored export file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes export files older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func (s *ExportService) process(ctx context.Context, job jobs.Job) error {
	id, _ := job.Payload.(string)
	s.setStatus(id, models.ExportStatusProcessing)

	s.mu.RLock()
	tracked, ok := s.tracked[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("export job %s not tracked", id)
	}

	dataset, title, err := s.buildDataset(ctx, tracked.CourseID)
	if err != nil {
		s.failJob(id, err)
		return err
	}

	var payload []byte
	switch tracked.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case models.ExportFormatXLSX:
		payload, err = s.excel.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", tracked.Format)
	}
	if err != nil {
		s.failJob(id, err)
		return err
	}

	filename := fmt.Sprintf("attendance_%s_%s.%s", tracked.CourseID,
		time.Now().UTC().Format("20060102_150405"), tracked.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.failJob(id, err)
		return err
	}

	token, _, err := s.signer.Generate(id, relPath)
	if err != nil {
		s.failJob(id, err)
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.tracked[id]; ok {
		job.Status = models.ExportStatusFinished
		job.ResultURL = &url
		job.FinishedAt = &now
	}
	s.mu.Unlock()

	s.logger.Info("export finished", zap.String("job_id", id), zap.String("file", relPath))
	return nil
}

func (s *ExportService) buildDataset(ctx context.Context, courseID string) (export.Dataset, string, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load course: %w", err)
	}

	view, err := s.attendance.ResolveStatuses(ctx, courseID, string(models.ModeTrustFinalized))
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("resolve statuses: %w", err)
	}

	headers := []string{"UID", "Student", "Arrival", "Leave", "Status", "Attended", "Sessions", "Attendance (%)"}
	rows := make([]map[string]string, 0, len(view.Students))
	for _, st := range view.Students {
		rows = append(rows, map[string]string{
			"UID":            st.StudentUID,
			"Student":        st.StudentName,
			"Arrival":        derefString(st.LastArrival),
			"Leave":          derefString(st.LastLeave),
			"Status":         string(st.EffectiveStatus),
			"Attended":       fmt.Sprintf("%d", st.Summary.Attended),
			"Sessions":       fmt.Sprintf("%d", st.Summary.Total),
			"Attendance (%)": fmt.Sprintf("%.1f", st.Summary.Percent),
		})
	}

	title := fmt.Sprintf("%s Attendance %s", course.Code, view.Date)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

func (s *ExportService) setStatus(id string, status models.ExportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.tracked[id]; ok {
		job.Status = status
	}
}

func (s *ExportService) failJob(id string, err error) {
	msg := err.Error()
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.tracked[id]; ok {
		job.Status = models.ExportStatusFailed
		job.ErrorMessage = &msg
		job.FinishedAt = &now
	}
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

package dto

// ExportRequest asks for an async attendance export.
type ExportRequest struct {
	Format string `json:"format" validate:"required,oneof=pdf xlsx csv"`
}

// ExportJobResponse reports a queued or finished export job.
type ExportJobResponse struct {
	JobID       string  `json:"job_id"`
	Status      string  `json:"status"`
	Format      string  `json:"format"`
	DownloadURL *string `json:"download_url,omitempty"`
	Error       *string `json:"error,omitempty"`
}

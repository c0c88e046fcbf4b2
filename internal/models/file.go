package models

import "time"

// UploadedFile describes a stored upload.
type UploadedFile struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MIMEType     string `json:"mime_type"`
	Size         int64  `json:"size"`
}

// ExportResult is returned after a booking export is rendered.
type ExportResult struct {
	Format    string    `json:"format"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	RowCount  int       `json:"row_count"`
	ExpiresAt time.Time `json:"expires_at"`
}

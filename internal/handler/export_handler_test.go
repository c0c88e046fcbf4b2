package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/service"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type exportOpenerStub struct {
	path string
	err  error
}

func (s exportOpenerStub) Open(string) (*service.ExportDownload, error) {
	if s.err != nil {
		return nil, s.err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	return &service.ExportDownload{File: f, Filename: filepath.Base(s.path), ContentType: "text/csv"}, nil
}

func TestExportHandlerStreamsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookings.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Time\n2024-05-01,09:00\n"), 0o600))
	handler := NewExportHandler(exportOpenerStub{path: path})
	c, rec := newTestContext(http.MethodGet, "/exports/tok", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="bookings.csv"`)
	assert.Equal(t, "Date,Time\n2024-05-01,09:00\n", rec.Body.String())
}

func TestExportHandlerExpired(t *testing.T) {
	handler := NewExportHandler(exportOpenerStub{err: service.ErrExportExpired})
	c, rec := newTestContext(http.MethodGet, "/exports/tok", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestExportHandlerUnknownToken(t *testing.T) {
	handler := NewExportHandler(exportOpenerStub{err: appErrors.ErrNotFound})
	c, rec := newTestContext(http.MethodGet, "/exports/nope", nil)

	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

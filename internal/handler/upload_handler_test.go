package handler

import (
	"context"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

type uploadServiceMock struct {
	single   string
	batch    []string
	category string
}

func (m *uploadServiceMock) Save(_ context.Context, fh *multipart.FileHeader, category string) (*models.UploadedFile, error) {
	m.single = fh.Filename
	m.category = category
	return &models.UploadedFile{OriginalName: fh.Filename}, nil
}

func (m *uploadServiceMock) SaveBatch(_ context.Context, files []*multipart.FileHeader, category string) ([]models.UploadedFile, error) {
	m.category = category
	out := make([]models.UploadedFile, 0, len(files))
	for _, f := range files {
		m.batch = append(m.batch, f.Filename)
		out = append(out, models.UploadedFile{OriginalName: f.Filename})
	}
	return out, nil
}

func TestUploadHandlerSingleImage(t *testing.T) {
	svc := &uploadServiceMock{}
	handler := NewUploadHandler(svc)
	body, contentType := multipartBody(t, map[string]string{"category": "chief-guests"}, filePart{field: "image", name: "guest.png", data: []byte("png")})
	c, rec := newTestContext(http.MethodPost, "/upload", deptClaims)
	withBody(c, body, contentType)

	handler.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "guest.png", svc.single)
	assert.Equal(t, "chief-guests", svc.category)
}

func TestUploadHandlerBatch(t *testing.T) {
	svc := &uploadServiceMock{}
	handler := NewUploadHandler(svc)
	body, contentType := multipartBody(t, nil,
		filePart{field: "files", name: "a.pdf", data: []byte("a")},
		filePart{field: "files", name: "b.pdf", data: []byte("b")},
	)
	c, rec := newTestContext(http.MethodPost, "/upload", deptClaims)
	withBody(c, body, contentType)

	handler.Upload(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, svc.batch)
	assert.Empty(t, svc.single)
}

func TestUploadHandlerWithoutFile(t *testing.T) {
	handler := NewUploadHandler(&uploadServiceMock{})
	body, contentType := multipartBody(t, map[string]string{"category": "x"})
	c, rec := newTestContext(http.MethodPost, "/upload", deptClaims)
	withBody(c, body, contentType)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

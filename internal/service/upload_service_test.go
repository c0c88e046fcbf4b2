package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
	"github.com/noah-isme/hall-booking-api/pkg/storage"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

type uploadPart struct {
	name string
	data []byte
}

func multipartFiles(t *testing.T, parts ...uploadPart) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, p := range parts {
		fw, err := w.CreateFormFile("files", p.name)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["files"]
}

type uploadSizes struct {
	sizes []int64
}

func (u *uploadSizes) ObserveUpload(size int64) {
	u.sizes = append(u.sizes, size)
}

func newUploadServiceForTest(t *testing.T, cfg UploadConfig) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	if cfg.AllowedMIMEs == nil {
		cfg.AllowedMIMEs = []string{"image/png", "application/pdf"}
	}
	cfg.PublicPath = "/uploads/"
	return NewUploadService(store, cfg, &uploadSizes{}, zap.NewNop()), dir
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	require.NoError(t, filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return err
	}))
	return n
}

func TestUploadServiceSaveDetectsContent(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{})
	files := multipartFiles(t, uploadPart{"Poster.PNG", pngBytes})

	stored, err := svc.Save(context.Background(), files[0], "Chief Guest")
	require.NoError(t, err)
	assert.Equal(t, "image/png", stored.MIMEType)
	assert.Equal(t, "Poster.PNG", stored.OriginalName)
	assert.True(t, strings.HasPrefix(stored.URL, "/uploads/chief-guest/"))
	assert.True(t, strings.HasSuffix(stored.Filename, ".png"))
	assert.Equal(t, int64(len(pngBytes)), stored.Size)
	assert.Equal(t, 1, countFiles(t, dir))
	assert.Equal(t, []int64{int64(len(pngBytes))}, svc.metrics.(*uploadSizes).sizes)
}

func TestUploadServiceRejectsByContentNotName(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{})
	files := multipartFiles(t, uploadPart{"fake.png", []byte("just some text, not an image")})

	_, err := svc.Save(context.Background(), files[0], "general")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Zero(t, countFiles(t, dir))
}

func TestUploadServiceRejectsOversizedFile(t *testing.T) {
	svc, _ := newUploadServiceForTest(t, UploadConfig{MaxFileSize: 16})
	files := multipartFiles(t, uploadPart{"big.pdf", pdfBytes})

	_, err := svc.Save(context.Background(), files[0], "general")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestUploadServiceSaveBatchKeepsOrder(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{Parallelism: 2})
	files := multipartFiles(t,
		uploadPart{"a.pdf", pdfBytes},
		uploadPart{"b.png", pngBytes},
		uploadPart{"c.pdf", pdfBytes},
	)

	stored, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "a.pdf", stored[0].OriginalName)
	assert.Equal(t, "b.png", stored[1].OriginalName)
	assert.Equal(t, "c.pdf", stored[2].OriginalName)
	assert.Equal(t, 3, countFiles(t, dir))
}

func TestUploadServiceSaveBatchRemovesStoredFilesOnFailure(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{Parallelism: 1})
	files := multipartFiles(t,
		uploadPart{"a.pdf", pdfBytes},
		uploadPart{"notes.txt", []byte("plain text")},
	)

	_, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Zero(t, countFiles(t, dir))
}

func TestUploadServiceSaveBatchLimit(t *testing.T) {
	svc, _ := newUploadServiceForTest(t, UploadConfig{MaxFiles: 1})
	files := multipartFiles(t, uploadPart{"a.pdf", pdfBytes}, uploadPart{"b.pdf", pdfBytes})

	_, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

type fixedUploadLimit struct {
	n   int
	err error
}

func (f fixedUploadLimit) MaxUploadFiles(ctx context.Context) (int, error) {
	return f.n, f.err
}

func TestUploadServiceSaveBatchHonoursRuntimeLimit(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{MaxFiles: 10})
	svc.WithLimits(fixedUploadLimit{n: 1})
	files := multipartFiles(t, uploadPart{"a.pdf", pdfBytes}, uploadPart{"b.pdf", pdfBytes})

	_, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Contains(t, err.Error(), "at most 1 files")
	assert.Zero(t, countFiles(t, dir))

	svc.WithLimits(fixedUploadLimit{n: 0})
	stored, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestUploadServiceSaveBatchFallsBackWhenLimitUnreadable(t *testing.T) {
	svc, _ := newUploadServiceForTest(t, UploadConfig{MaxFiles: 1})
	svc.WithLimits(fixedUploadLimit{err: errors.New("db down")})
	files := multipartFiles(t, uploadPart{"a.pdf", pdfBytes}, uploadPart{"b.pdf", pdfBytes})

	_, err := svc.SaveBatch(context.Background(), files, "attachments")
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestUploadServiceRemoveDeletesStoredFiles(t *testing.T) {
	svc, dir := newUploadServiceForTest(t, UploadConfig{})
	stored, err := svc.SaveBatch(context.Background(), multipartFiles(t, uploadPart{"a.pdf", pdfBytes}), "designs")
	require.NoError(t, err)
	require.Equal(t, 1, countFiles(t, dir))

	svc.Remove(stored...)
	assert.Zero(t, countFiles(t, dir))
}

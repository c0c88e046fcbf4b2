package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

const defaultUploadCategory = "general"

type streamStorage interface {
	SaveStream(name string, r io.Reader) (int64, error)
	Delete(name string) error
}

// uploadLimits supplies the runtime per-request file limit.
type uploadLimits interface {
	MaxUploadFiles(ctx context.Context) (int, error)
}

type uploadMetrics interface {
	ObserveUpload(size int64)
}

// UploadConfig limits what UploadService accepts.
type UploadConfig struct {
	PublicPath   string
	MaxFileSize  int64
	AllowedMIMEs []string
	Parallelism  int
	MaxFiles     int
}

// UploadService validates multipart files by content and stores them under
// a random name grouped by category.
type UploadService struct {
	store   streamStorage
	metrics uploadMetrics
	limits  uploadLimits
	logger  *zap.Logger
	cfg     UploadConfig
	allowed map[string]struct{}
}

// NewUploadService constructs an UploadService.
func NewUploadService(store streamStorage, cfg UploadConfig, metrics uploadMetrics, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 10
	}
	cfg.PublicPath = "/" + strings.Trim(cfg.PublicPath, "/")
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &UploadService{store: store, metrics: metrics, logger: logger, cfg: cfg, allowed: allowed}
}

// WithLimits makes SaveBatch honour the runtime file limit from limits. The
// configured MaxFiles applies whenever the runtime value is unset or unreadable.
func (s *UploadService) WithLimits(limits uploadLimits) *UploadService {
	s.limits = limits
	return s
}

// Save stores one file.
func (s *UploadService) Save(ctx context.Context, fh *multipart.FileHeader, category string) (*models.UploadedFile, error) {
	if fh == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fh.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is empty", fh.Filename))
	}
	if fh.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds the %d byte limit", fh.Filename, s.cfg.MaxFileSize))
	}

	src, err := fh.Open()
	if err != nil {
		return nil, internalError(err, "failed to read upload")
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, internalError(err, "failed to inspect upload")
	}
	mimeType, ok := s.accept(detected)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s has unsupported type %s", fh.Filename, detected.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, internalError(err, "failed to rewind upload")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == "" {
		ext = detected.Extension()
	}
	name := path.Join(sanitizeCategory(category), uuid.NewString()+ext)
	written, err := s.store.SaveStream(name, src)
	if err != nil {
		return nil, internalError(err, "failed to store upload")
	}
	if s.metrics != nil {
		s.metrics.ObserveUpload(written)
	}

	return &models.UploadedFile{
		URL:          s.cfg.PublicPath + "/" + name,
		Filename:     name,
		OriginalName: fh.Filename,
		MIMEType:     mimeType,
		Size:         written,
	}, nil
}

// SaveBatch stores files concurrently with bounded parallelism. Results keep
// input order. If any file fails the files already stored are removed.
func (s *UploadService) SaveBatch(ctx context.Context, files []*multipart.FileHeader, category string) ([]models.UploadedFile, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one file is required")
	}
	if limit := s.maxFiles(ctx); len(files) > limit {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d files per upload", limit))
	}

	results := make([]*models.UploadedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			stored, err := s.Save(gctx, fh, category)
			if err != nil {
				return err
			}
			results[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(results)
		return nil, err
	}

	out := make([]models.UploadedFile, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	return out, nil
}

// Remove deletes files stored earlier, for callers whose follow-up write failed.
func (s *UploadService) Remove(files ...models.UploadedFile) {
	results := make([]*models.UploadedFile, 0, len(files))
	for i := range files {
		results = append(results, &files[i])
	}
	s.discard(results)
}

func (s *UploadService) maxFiles(ctx context.Context) int {
	if s.limits == nil {
		return s.cfg.MaxFiles
	}
	n, err := s.limits.MaxUploadFiles(ctx)
	if err != nil {
		s.logger.Warn("failed to read upload limit, using configured default", zap.Error(err))
		return s.cfg.MaxFiles
	}
	if n <= 0 {
		return s.cfg.MaxFiles
	}
	return n
}

func (s *UploadService) accept(detected *mimetype.MIME) (string, bool) {
	for m := detected; m != nil; m = m.Parent() {
		base, _, _ := strings.Cut(m.String(), ";")
		base = strings.TrimSpace(strings.ToLower(base))
		if _, ok := s.allowed[base]; ok {
			return base, true
		}
	}
	return "", false
}

func (s *UploadService) discard(results []*models.UploadedFile) {
	for _, r := range results {
		if r == nil {
			continue
		}
		if err := s.store.Delete(r.Filename); err != nil {
			s.logger.Warn("failed to remove partial upload", zap.String("file", r.Filename), zap.Error(err))
		}
	}
}

func sanitizeCategory(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == '_' || r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return defaultUploadCategory
	}
	return b.String()
}

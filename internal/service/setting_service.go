package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, item *models.Setting) error
}

type allowedSetting struct {
	Type        models.SettingType
	Description string
	Default     string
}

var allowedSettingKeys = []string{
	models.SettingRegistrationActive,
	models.SettingInstitutionDisplayName,
	models.SettingMaxUploadFiles,
}

var allowedSettings = map[string]allowedSetting{
	models.SettingRegistrationActive: {
		Type:        models.SettingTypeBoolean,
		Description: "Allow department users to self-register",
		Default:     "false",
	},
	models.SettingInstitutionDisplayName: {
		Type:        models.SettingTypeString,
		Description: "Name shown in the application header",
	},
	models.SettingMaxUploadFiles: {
		Type:        models.SettingTypeNumber,
		Description: "Maximum files accepted per upload request; 0 uses the deployment default",
		Default:     "0",
	},
}

// SettingService manages the allow-listed runtime settings.
type SettingService struct {
	repo   settingRepository
	audit  auditRecorder
	logger *zap.Logger
}

// NewSettingService constructs a SettingService.
func NewSettingService(repo settingRepository, audit auditRecorder, logger *zap.Logger) *SettingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{repo: repo, audit: audit, logger: logger}
}

// List returns every allow-listed setting, falling back to defaults for keys never written.
func (s *SettingService) List(ctx context.Context) ([]dto.SettingItem, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list settings")
	}
	stored := make(map[string]models.Setting, len(rows))
	for _, row := range rows {
		stored[row.Key] = row
	}

	items := make([]dto.SettingItem, 0, len(allowedSettingKeys))
	for _, key := range allowedSettingKeys {
		meta := allowedSettings[key]
		item := dto.SettingItem{Key: key, Value: meta.Default, Type: string(meta.Type), Description: meta.Description}
		if row, ok := stored[key]; ok {
			item.Value = row.Value
		}
		items = append(items, item)
	}
	return items, nil
}

// Get returns one allow-listed setting.
func (s *SettingService) Get(ctx context.Context, key string) (*dto.SettingItem, error) {
	meta, ok := allowedSettings[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
	}
	item := &dto.SettingItem{Key: key, Value: meta.Default, Type: string(meta.Type), Description: meta.Description}
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return item, nil
		}
		return nil, internalError(err, "failed to get setting")
	}
	item.Value = row.Value
	return item, nil
}

// Update writes a new value for key after validating it against the key's type.
func (s *SettingService) Update(ctx context.Context, actor models.Actor, key string, req dto.UpdateSettingRequest) (*dto.SettingItem, error) {
	meta, ok := allowedSettings[key]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported setting key")
	}
	value, err := normalizeSettingValue(meta.Type, req.Value)
	if err != nil {
		return nil, err
	}

	previous, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	row := &models.Setting{
		Key:         key,
		Value:       value,
		Type:        meta.Type,
		Description: stringPtr(meta.Description),
		UpdatedBy:   stringPtr(actor.UserID),
	}
	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, internalError(err, "failed to update setting")
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionSettingUpdate, models.AuditResourceSetting, key,
		map[string]string{"value": previous.Value}, map[string]string{"value": value})

	return &dto.SettingItem{Key: key, Value: value, Type: string(meta.Type), Description: meta.Description}, nil
}

// RegistrationOpen reports whether self-registration is enabled.
func (s *SettingService) RegistrationOpen(ctx context.Context) (bool, error) {
	item, err := s.Get(ctx, models.SettingRegistrationActive)
	if err != nil {
		return false, err
	}
	return item.Value == "true", nil
}

// MaxUploadFiles returns the per-request upload limit. Zero means unset.
func (s *SettingService) MaxUploadFiles(ctx context.Context) (int, error) {
	item, err := s.Get(ctx, models.SettingMaxUploadFiles)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(item.Value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", models.SettingMaxUploadFiles, err)
	}
	return n, nil
}

func normalizeSettingValue(kind models.SettingType, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch kind {
	case models.SettingTypeBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "value must be true or false")
		}
		return strconv.FormatBool(b), nil
	case models.SettingTypeNumber:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", appErrors.Clone(appErrors.ErrValidation, "value must be a non-negative integer")
		}
		return strconv.Itoa(n), nil
	default:
		if len(value) > 200 {
			return "", appErrors.Clone(appErrors.ErrValidation, "value is too long")
		}
		return value, nil
	}
}

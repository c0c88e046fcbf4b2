package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type institutionRepository interface {
	List(ctx context.Context) ([]models.Institution, error)
	FindByID(ctx context.Context, id string) (*models.Institution, error)
	Create(ctx context.Context, item *models.Institution) error
	Update(ctx context.Context, item *models.Institution) error
	Delete(ctx context.Context, id string) error
}

// InstitutionService manages tenants. Writes are restricted to super admins at the router.
type InstitutionService struct {
	repo      institutionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstitutionService constructs the service.
func NewInstitutionService(repo institutionRepository, validate *validator.Validate, logger *zap.Logger) *InstitutionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InstitutionService{repo: repo, validator: validate, logger: logger}
}

// List returns every institution.
func (s *InstitutionService) List(ctx context.Context) ([]models.Institution, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list institutions")
	}
	return items, nil
}

// Get returns one institution.
func (s *InstitutionService) Get(ctx context.Context, id string) (*models.Institution, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "institution not found", "failed to load institution")
	}
	return item, nil
}

// Create registers a new institution.
func (s *InstitutionService) Create(ctx context.Context, req dto.InstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid institution payload")
	}
	item := &models.Institution{
		Name:      strings.TrimSpace(req.Name),
		ShortName: strings.ToUpper(strings.TrimSpace(req.ShortName)),
		LogoURL:   req.LogoURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "institution short name already exists")
		}
		return nil, internalError(err, "failed to create institution")
	}
	return item, nil
}

// Update replaces the mutable fields of an institution.
func (s *InstitutionService) Update(ctx context.Context, id string, req dto.InstitutionRequest) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid institution payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(req.Name)
	item.ShortName = strings.ToUpper(strings.TrimSpace(req.ShortName))
	item.LogoURL = req.LogoURL
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "institution short name already exists")
		}
		return nil, internalError(err, "failed to update institution")
	}
	return item, nil
}

// Delete removes an institution that owns no records.
func (s *InstitutionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return appErrors.Clone(appErrors.ErrConflict, "institution still has departments, halls or users")
		}
		return lookupError(err, "institution not found", "failed to delete institution")
	}
	s.logger.Info("institution deleted", zap.String("institution_id", id))
	return nil
}

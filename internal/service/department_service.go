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

type departmentRepository interface {
	List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
	Create(ctx context.Context, item *models.Department) error
	Update(ctx context.Context, item *models.Department) error
	Delete(ctx context.Context, id string) error
}

// DepartmentService manages departments within institutions.
type DepartmentService struct {
	repo      departmentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs the service.
func NewDepartmentService(repo departmentRepository, validate *validator.Validate, logger *zap.Logger) *DepartmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DepartmentService{repo: repo, validator: validate, logger: logger}
}

// List returns departments. The listing is public so registration forms can use it.
func (s *DepartmentService) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list departments")
	}
	return items, nil
}

// Create adds a department to the actor's (or the named) institution.
func (s *DepartmentService) Create(ctx context.Context, actor models.Actor, req dto.DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	institutionID, err := institutionFor(actor, req.InstitutionID)
	if err != nil {
		return nil, err
	}
	item := &models.Department{
		InstitutionID: institutionID,
		Name:          strings.TrimSpace(req.Name),
		ShortCode:     strings.ToUpper(strings.TrimSpace(req.ShortCode)),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department short code already exists in institution")
		}
		return nil, internalError(err, "failed to create department")
	}
	return item, nil
}

// Update renames a department.
func (s *DepartmentService) Update(ctx context.Context, actor models.Actor, id string, req dto.DepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid department payload")
	}
	item, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(req.Name)
	item.ShortCode = strings.ToUpper(strings.TrimSpace(req.ShortCode))
	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "department short code already exists in institution")
		}
		return nil, internalError(err, "failed to update department")
	}
	return item, nil
}

// Delete removes a department without users or bookings.
func (s *DepartmentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInUse) {
			return appErrors.Clone(appErrors.ErrConflict, "department still has users or bookings")
		}
		return lookupError(err, "department not found", "failed to delete department")
	}
	return nil
}

func (s *DepartmentService) load(ctx context.Context, actor models.Actor, id string) (*models.Department, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "department not found", "failed to load department")
	}
	if !canAdminister(actor, item.InstitutionID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot manage another institution's department")
	}
	return item, nil
}

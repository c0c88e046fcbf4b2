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

type hallRepository interface {
	List(ctx context.Context, filter models.HallFilter) ([]models.Hall, error)
	FindByID(ctx context.Context, id string) (*models.Hall, error)
	Create(ctx context.Context, hall *models.Hall) error
	Update(ctx context.Context, hall *models.Hall) error
	Deactivate(ctx context.Context, id string) error
}

// HallService manages the bookable venues of each institution.
type HallService struct {
	repo      hallRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHallService constructs the service.
func NewHallService(repo hallRepository, validate *validator.Validate, logger *zap.Logger) *HallService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HallService{repo: repo, validator: validate, logger: logger}
}

// List returns halls visible to any signed-in user.
func (s *HallService) List(ctx context.Context, filter models.HallFilter) ([]models.Hall, error) {
	halls, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list halls")
	}
	return halls, nil
}

// Get returns one hall.
func (s *HallService) Get(ctx context.Context, id string) (*models.Hall, error) {
	hall, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "hall not found", "failed to load hall")
	}
	return hall, nil
}

// Create adds a hall.
func (s *HallService) Create(ctx context.Context, actor models.Actor, req dto.HallRequest) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hall payload")
	}
	institutionID, err := institutionFor(actor, req.InstitutionID)
	if err != nil {
		return nil, err
	}
	hall := &models.Hall{InstitutionID: institutionID, Active: true}
	applyHallRequest(hall, req)
	if err := s.repo.Create(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "hall name already exists in institution")
		}
		return nil, internalError(err, "failed to create hall")
	}
	return hall, nil
}

// Update replaces the descriptive fields of a hall.
func (s *HallService) Update(ctx context.Context, actor models.Actor, id string, req dto.HallRequest) (*models.Hall, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid hall payload")
	}
	hall, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyHallRequest(hall, req)
	if err := s.repo.Update(ctx, hall); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "hall name already exists in institution")
		}
		return nil, internalError(err, "failed to update hall")
	}
	return hall, nil
}

// Deactivate hides a hall from new bookings.
func (s *HallService) Deactivate(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return lookupError(err, "hall not found", "failed to deactivate hall")
	}
	return nil
}

func (s *HallService) load(ctx context.Context, actor models.Actor, id string) (*models.Hall, error) {
	hall, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAdminister(actor, hall.InstitutionID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot manage another institution's hall")
	}
	return hall, nil
}

func applyHallRequest(hall *models.Hall, req dto.HallRequest) {
	hall.Name = strings.TrimSpace(req.Name)
	hall.Description = strings.TrimSpace(req.Description)
	hall.ImageURL = req.ImageURL
	hall.Capacity = req.Capacity
	hall.StageSize = req.StageSize
	hall.HallType = req.HallType
	hall.HasAC = req.HasAC
	hall.HasSoundSystem = req.HasSoundSystem
	if req.Active != nil {
		hall.Active = *req.Active
	}
}

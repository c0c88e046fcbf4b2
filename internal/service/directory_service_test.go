package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type stubInstitutionRepo struct {
	items     map[string]*models.Institution
	deleteErr error
	created   *models.Institution
}

func (s *stubInstitutionRepo) List(ctx context.Context) ([]models.Institution, error) {
	var out []models.Institution
	for _, i := range s.items {
		out = append(out, *i)
	}
	return out, nil
}

func (s *stubInstitutionRepo) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	if i, ok := s.items[id]; ok {
		return i, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubInstitutionRepo) Create(ctx context.Context, item *models.Institution) error {
	item.ID = "inst-new"
	s.created = item
	return nil
}

func (s *stubInstitutionRepo) Update(ctx context.Context, item *models.Institution) error {
	return nil
}

func (s *stubInstitutionRepo) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

type stubDepartmentRepo struct {
	stubDepartments
	created *models.Department
	updated *models.Department
	deleted string
	lastErr error
}

func (s *stubDepartmentRepo) List(ctx context.Context, filter models.DepartmentFilter) ([]models.Department, error) {
	return nil, nil
}

func (s *stubDepartmentRepo) Create(ctx context.Context, item *models.Department) error {
	s.created = item
	return s.lastErr
}

func (s *stubDepartmentRepo) Update(ctx context.Context, item *models.Department) error {
	s.updated = item
	return s.lastErr
}

func (s *stubDepartmentRepo) Delete(ctx context.Context, id string) error {
	s.deleted = id
	return s.lastErr
}

type stubHallRepo struct {
	halls       map[string]*models.Hall
	created     *models.Hall
	deactivated string
}

func (s *stubHallRepo) List(ctx context.Context, filter models.HallFilter) ([]models.Hall, error) {
	return nil, nil
}

func (s *stubHallRepo) FindByID(ctx context.Context, id string) (*models.Hall, error) {
	if h, ok := s.halls[id]; ok {
		clone := *h
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubHallRepo) Create(ctx context.Context, hall *models.Hall) error {
	hall.ID = "hall-new"
	s.created = hall
	return nil
}

func (s *stubHallRepo) Update(ctx context.Context, hall *models.Hall) error {
	return nil
}

func (s *stubHallRepo) Deactivate(ctx context.Context, id string) error {
	s.deactivated = id
	return nil
}

func TestInstitutionServiceCreateNormalisesShortName(t *testing.T) {
	repo := &stubInstitutionRepo{}
	svc := NewInstitutionService(repo, nil, zap.NewNop())

	item, err := svc.Create(context.Background(), dto.InstitutionRequest{Name: " Example College ", ShortName: "exc"})
	require.NoError(t, err)
	assert.Equal(t, "Example College", item.Name)
	assert.Equal(t, "EXC", item.ShortName)
}

func TestInstitutionServiceDeleteInUse(t *testing.T) {
	svc := NewInstitutionService(&stubInstitutionRepo{deleteErr: repository.ErrInUse}, nil, zap.NewNop())
	err := svc.Delete(context.Background(), "inst-1")
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)

	svc = NewInstitutionService(&stubInstitutionRepo{deleteErr: sql.ErrNoRows}, nil, zap.NewNop())
	err = svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestDepartmentServicePrincipalPinnedToInstitution(t *testing.T) {
	repo := &stubDepartmentRepo{}
	svc := NewDepartmentService(repo, nil, zap.NewNop())

	dept, err := svc.Create(context.Background(), principal, dto.DepartmentRequest{Name: "Physics", ShortCode: "phy"})
	require.NoError(t, err)
	assert.Equal(t, "inst-1", dept.InstitutionID)
	assert.Equal(t, "PHY", dept.ShortCode)

	_, err = svc.Create(context.Background(), principal, dto.DepartmentRequest{InstitutionID: "inst-9", Name: "Physics", ShortCode: "phy"})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestDepartmentServiceSuperAdminMustNameInstitution(t *testing.T) {
	svc := NewDepartmentService(&stubDepartmentRepo{}, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), superAdmin, dto.DepartmentRequest{Name: "Physics", ShortCode: "phy"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestDepartmentServiceDeleteOtherInstitutionForbidden(t *testing.T) {
	repo := &stubDepartmentRepo{stubDepartments: stubDepartments{items: map[string]*models.Department{
		"dept-9": {ID: "dept-9", InstitutionID: "inst-9"},
	}}}
	svc := NewDepartmentService(repo, nil, zap.NewNop())

	err := svc.Delete(context.Background(), principal, "dept-9")
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.Empty(t, repo.deleted)
}

func TestHallServiceCreateAndDeactivate(t *testing.T) {
	repo := &stubHallRepo{halls: map[string]*models.Hall{
		"hall-1": {ID: "hall-1", InstitutionID: "inst-1", Name: "Main", Active: true},
		"hall-9": {ID: "hall-9", InstitutionID: "inst-9", Name: "Other", Active: true},
	}}
	svc := NewHallService(repo, nil, zap.NewNop())

	hall, err := svc.Create(context.Background(), principal, dto.HallRequest{Name: "Seminar Hall", Capacity: 120, HasAC: true})
	require.NoError(t, err)
	assert.True(t, hall.Active)
	assert.Equal(t, "inst-1", hall.InstitutionID)

	require.NoError(t, svc.Deactivate(context.Background(), principal, "hall-1"))
	assert.Equal(t, "hall-1", repo.deactivated)

	err = svc.Deactivate(context.Background(), principal, "hall-9")
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestHallServiceRejectsNegativeCapacity(t *testing.T) {
	svc := NewHallService(&stubHallRepo{}, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), superAdmin, dto.HallRequest{InstitutionID: "inst-1", Name: "Main", Capacity: -1})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hall-booking-api/internal/dto"
	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	Deactivate(ctx context.Context, id string) error
}

// UserService handles user management workflows.
type UserService struct {
	repo        userRepository
	departments departmentFinder
	audit       auditRecorder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, departments departmentFinder, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, departments: departments, audit: audit, validator: validate, logger: logger}
}

// List returns paginated users. Principals only see their institution.
func (s *UserService) List(ctx context.Context, actor models.Actor, query dto.UserListQuery) ([]models.User, *models.Pagination, error) {
	filter := models.UserFilter{
		Active:        query.Active,
		InstitutionID: query.InstitutionID,
		DepartmentID:  query.DepartmentID,
		Search:        query.Search,
		Page:          query.Page,
		PageSize:      query.PageSize,
		SortBy:        query.SortBy,
		SortOrder:     query.SortOrder,
	}
	if query.Role != "" {
		role := models.UserRole(query.Role)
		if !role.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
		}
		filter.Role = &role
	}
	if actor.Role == models.RolePrincipal {
		filter.InstitutionID = actor.InstitutionID
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list users")
	}
	return users, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	if !s.canManage(actor, user) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// Create adds a new user.
func (s *UserService) Create(ctx context.Context, actor models.Actor, req dto.CreateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid create user payload")
	}
	role := models.UserRole(req.Role)
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only super admins can create super admins")
	}

	user := &models.User{
		Email:         normalizeEmail(req.Email),
		FullName:      strings.TrimSpace(req.FullName),
		Role:          role,
		InstitutionID: req.InstitutionID,
		DepartmentID:  req.DepartmentID,
		Theme:         models.ThemeLight,
		Active:        true,
	}
	if err := s.resolveTenancy(ctx, actor, user); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}
	user.PasswordHash = string(passwordHash)

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		return nil, internalError(err, "failed to create user")
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionUserCreate, models.AuditResourceUser, user.ID, nil,
		map[string]interface{}{"email": user.Email, "role": user.Role})
	return user, nil
}

// Update modifies the user attributes.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid update payload")
	}

	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	old := map[string]interface{}{"email": user.Email, "role": user.Role, "active": user.Active}

	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only super admins can grant super admin")
		}
		user.Role = role
	}
	if req.InstitutionID != nil {
		user.InstitutionID = req.InstitutionID
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if err := s.resolveTenancy(ctx, actor, user); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already exists")
		}
		return nil, internalError(err, "failed to update user")
	}

	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, internalError(err, "failed to hash password")
		}
		if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
			return nil, internalError(err, "failed to update password")
		}
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionUserUpdate, models.AuditResourceUser, user.ID, old,
		map[string]interface{}{"email": user.Email, "role": user.Role, "active": user.Active, "password_reset": req.Password != nil})
	return user, nil
}

// Deactivate performs a soft delete on a user.
func (s *UserService) Deactivate(ctx context.Context, actor models.Actor, id string) error {
	if id == actor.UserID {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "cannot deactivate a super admin")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return internalError(err, "failed to deactivate user")
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionUserDeactivate, models.AuditResourceUser, user.ID,
		map[string]bool{"active": user.Active}, map[string]bool{"active": false})
	return nil
}

func (s *UserService) canManage(actor models.Actor, user *models.User) bool {
	if actor.Role == models.RoleSuperAdmin {
		return true
	}
	return actor.Role == models.RolePrincipal && user.InstitutionID != nil && *user.InstitutionID == actor.InstitutionID
}

// resolveTenancy pins principals to their institution and checks that a
// department, when given, belongs to the user's institution.
func (s *UserService) resolveTenancy(ctx context.Context, actor models.Actor, user *models.User) error {
	if actor.Role == models.RolePrincipal {
		if user.InstitutionID != nil && *user.InstitutionID != "" && *user.InstitutionID != actor.InstitutionID {
			return appErrors.Clone(appErrors.ErrForbidden, "cannot manage users of another institution")
		}
		user.InstitutionID = stringPtr(actor.InstitutionID)
	}
	if user.InstitutionID != nil && *user.InstitutionID == "" {
		user.InstitutionID = nil
	}
	if user.DepartmentID != nil && *user.DepartmentID == "" {
		user.DepartmentID = nil
	}
	if user.Role == models.RoleDepartmentUser && user.DepartmentID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "department users need a department")
	}
	if user.DepartmentID == nil {
		return nil
	}

	dept, err := s.departments.FindByID(ctx, *user.DepartmentID)
	if err != nil {
		return lookupError(err, "department not found", "failed to load department")
	}
	if user.InstitutionID == nil {
		user.InstitutionID = stringPtr(dept.InstitutionID)
	}
	if dept.InstitutionID != *user.InstitutionID {
		return appErrors.Clone(appErrors.ErrValidation, "department does not belong to institution")
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/internal/repository"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	UpdateProfile(ctx context.Context, id, fullName, theme string) error
}

type departmentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

type registrationGate interface {
	RegistrationOpen(ctx context.Context) (bool, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService provides authentication use cases.
type AuthService struct {
	repo         authUserRepository
	departments  departmentFinder
	registration registrationGate
	audit        auditRecorder
	validator    *validator.Validate
	logger       *zap.Logger
	config       AuthConfig
	now          func() time.Time
}

// AuthServiceParams groups constructor dependencies.
type AuthServiceParams struct {
	Users        authUserRepository
	Departments  departmentFinder
	Registration registrationGate
	Audit        auditRecorder
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(params AuthServiceParams) *AuthService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{
		repo:         params.Users,
		departments:  params.Departments,
		registration: params.Registration,
		audit:        params.Audit,
		validator:    validate,
		logger:       logger,
		config:       params.Config,
		now:          time.Now,
	}
}

// Login authenticates a user and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	issuedAt := s.now().UTC()
	token, err := s.generateAccessToken(user, issuedAt)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	writeAudit(ctx, s.audit, s.logger, models.Actor{UserID: user.ID, IP: req.IP, UserAgent: req.UserAgent},
		models.AuditActionLogin, models.AuditResourceUser, user.ID, nil, map[string]string{"status": "success"})

	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:  issuedAt,
		User:      user,
	}, nil
}

// Register creates a department user while self-registration is open.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	if req.Password != req.ConfirmPassword {
		return nil, appErrors.Clone(appErrors.ErrValidation, "passwords do not match")
	}

	if s.registration != nil {
		open, err := s.registration.RegistrationOpen(ctx)
		if err != nil {
			return nil, internalError(err, "failed to read registration setting")
		}
		if !open {
			return nil, appErrors.Clone(appErrors.ErrRegistrationClosed, "registration is currently closed")
		}
	}

	dept, err := s.departments.FindByID(ctx, req.DepartmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "department not found")
		}
		return nil, internalError(err, "failed to load department")
	}
	if dept.InstitutionID != req.InstitutionID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department does not belong to institution")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}

	user := &models.User{
		Email:         normalizeEmail(req.Email),
		PasswordHash:  string(hash),
		FullName:      strings.TrimSpace(req.FullName),
		Role:          models.RoleDepartmentUser,
		DepartmentID:  stringPtr(dept.ID),
		InstitutionID: stringPtr(dept.InstitutionID),
		Theme:         models.ThemeLight,
		Active:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, internalError(err, "failed to create user")
	}

	writeAudit(ctx, s.audit, s.logger, models.Actor{UserID: user.ID, IP: req.IP, UserAgent: req.UserAgent},
		models.AuditActionRegister, models.AuditResourceUser, user.ID, nil, map[string]string{"email": user.Email, "role": string(user.Role)})

	return s.reload(ctx, user)
}

// Me returns the caller's current profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}
	return user, nil
}

// UpdateProfile changes the caller's display name and theme preference.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid profile payload")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "user not found", "failed to load user")
	}

	fullName, theme := user.FullName, user.Theme
	if req.FullName != nil {
		fullName = strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "full name cannot be empty")
		}
	}
	if req.Theme != nil {
		theme = *req.Theme
	}

	if err := s.repo.UpdateProfile(ctx, userID, fullName, theme); err != nil {
		return nil, internalError(err, "failed to update profile")
	}
	user.FullName, user.Theme = fullName, theme
	return user, nil
}

// ChangePassword changes the password for the given user ID.
func (s *AuthService) ChangePassword(ctx context.Context, actor models.Actor, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid change password payload")
	}
	if req.NewPassword != req.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "passwords do not match")
	}

	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return lookupError(err, "user not found", "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(err, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(newHash), s.now().UTC()); err != nil {
		return internalError(err, "failed to update password")
	}

	writeAudit(ctx, s.audit, s.logger, actor, models.AuditActionPasswordChange, models.AuditResourceUser, user.ID,
		nil, map[string]string{"status": "changed"})
	return nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken(user *models.User, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		UserID:        user.ID,
		Role:          user.Role,
		Email:         user.Email,
		FullName:      user.FullName,
		InstitutionID: derefString(user.InstitutionID),
		DepartmentID:  derefString(user.DepartmentID),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) reload(ctx context.Context, user *models.User) (*models.User, error) {
	fresh, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to reload user", zap.String("user_id", user.ID), zap.Error(err))
		return user, nil
	}
	return fresh, nil
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

type bookingCounter interface {
	CountByStatus(ctx context.Context, filter models.BookingFilter, today models.Date) (models.BookingCounts, error)
	ListAwaitingPressRelease(ctx context.Context, userID string, onOrBefore models.Date) ([]models.Booking, error)
}

type institutionCounter interface {
	Count(ctx context.Context, institutionID string) (int, error)
}

type pendingPressReleaseCounter interface {
	CountPending(ctx context.Context, institutionID string) (int, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the role-scoped statistics shown on the dashboard.
type DashboardService struct {
	bookings      bookingCounter
	halls         institutionCounter
	departments   institutionCounter
	users         institutionCounter
	pressReleases pendingPressReleaseCounter
	cache         dashboardCache
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Bookings      bookingCounter
	Halls         institutionCounter
	Departments   institutionCounter
	Users         institutionCounter
	PressReleases pendingPressReleaseCounter
	Cache         dashboardCache
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		bookings:      params.Bookings,
		halls:         params.Halls,
		departments:   params.Departments,
		users:         params.Users,
		pressReleases: params.PressReleases,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Stats returns the dashboard statistics for the actor and whether they came from cache.
func (s *DashboardService) Stats(ctx context.Context, actor models.Actor) (*models.DashboardStats, bool, error) {
	filter, err := scopeBookingFilter(actor, models.BookingFilter{})
	if err != nil {
		return nil, false, err
	}
	scope := dashboardScope(actor)
	cacheKey := "dashboard:" + scope

	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.compose(ctx, actor, scope, filter)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return stats, false, nil
}

func (s *DashboardService) compose(ctx context.Context, actor models.Actor, scope string, filter models.BookingFilter) (*models.DashboardStats, error) {
	today := models.NewDate(s.now())
	institutionID := ""
	if actor.Role != models.RoleSuperAdmin && !actor.Role.IsTeam() {
		institutionID = actor.InstitutionID
	}

	counts, err := s.bookings.CountByStatus(ctx, filter, today)
	if err != nil {
		return nil, internalError(err, "failed to count bookings")
	}
	halls, err := s.halls.Count(ctx, institutionID)
	if err != nil {
		return nil, internalError(err, "failed to count halls")
	}
	departments, err := s.departments.Count(ctx, institutionID)
	if err != nil {
		return nil, internalError(err, "failed to count departments")
	}

	stats := &models.DashboardStats{
		Scope:       scope,
		Bookings:    counts,
		Halls:       halls,
		Departments: departments,
		GeneratedAt: s.now().UTC(),
	}

	switch actor.Role {
	case models.RoleSuperAdmin, models.RolePrincipal:
		if stats.Users, err = s.users.Count(ctx, institutionID); err != nil {
			return nil, internalError(err, "failed to count users")
		}
		if stats.PendingPressRelease, err = s.pressReleases.CountPending(ctx, institutionID); err != nil {
			return nil, internalError(err, "failed to count press releases")
		}
	case models.RolePressReleaseTeam:
		if stats.PendingPressRelease, err = s.pressReleases.CountPending(ctx, ""); err != nil {
			return nil, internalError(err, "failed to count press releases")
		}
	case models.RoleDepartmentUser:
		awaiting, err := s.bookings.ListAwaitingPressRelease(ctx, actor.UserID, today)
		if err != nil {
			return nil, internalError(err, "failed to count bookings awaiting press release")
		}
		stats.PendingPressRelease = len(awaiting)
	}
	return stats, nil
}

func dashboardScope(actor models.Actor) string {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return "all"
	case models.RolePrincipal:
		return "institution:" + actor.InstitutionID
	case models.RoleDepartmentUser:
		return "user:" + actor.UserID
	default:
		return string(actor.Role)
	}
}

package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/hall-booking-api/internal/handler"
	"github.com/noah-isme/hall-booking-api/internal/middleware"
	"github.com/noah-isme/hall-booking-api/internal/models"
)

// Handlers groups every HTTP handler the API mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Institutions  *handler.InstitutionHandler
	Departments   *handler.DepartmentHandler
	Halls         *handler.HallHandler
	Users         *handler.UserHandler
	Bookings      *handler.BookingHandler
	Exports       *handler.ExportHandler
	PressReleases *handler.PressReleaseHandler
	Settings      *handler.SettingHandler
	Dashboard     *handler.DashboardHandler
	Uploads       *handler.UploadHandler
	Metrics       *handler.MetricsHandler
}

// Options carries route-level configuration.
type Options struct {
	APIPrefix        string
	UploadsDir       string
	UploadsPublicDir string
	Tokens           middleware.TokenValidator
	RateLimit        gin.HandlerFunc
}

var (
	admins       = []models.UserRole{models.RoleSuperAdmin, models.RolePrincipal}
	superAdmin   = []models.UserRole{models.RoleSuperAdmin}
	requesters   = []models.UserRole{models.RoleDepartmentUser, models.RolePrincipal, models.RoleSuperAdmin}
	designers    = []models.UserRole{models.RoleDesigningTeam, models.RoleSuperAdmin}
	photography  = []models.UserRole{models.RolePhotographyTeam, models.RoleSuperAdmin}
	pressRelease = []models.UserRole{models.RolePressReleaseTeam, models.RoleSuperAdmin}
)

// Register mounts probes, static uploads and every API route on r.
func Register(r *gin.Engine, h Handlers, opts Options) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)
	if opts.UploadsDir != "" && opts.UploadsPublicDir != "" {
		r.StaticFS(opts.UploadsPublicDir, http.Dir(opts.UploadsDir))
	}

	prefix := "/" + strings.Trim(opts.APIPrefix, "/")
	api := r.Group(prefix)

	// The limiter runs after JWT on protected routes so buckets are per user.
	public := api.Group("")
	authed := api.Group("")
	authed.Use(middleware.JWT(opts.Tokens))
	if opts.RateLimit != nil {
		public.Use(opts.RateLimit)
		authed.Use(opts.RateLimit)
	}

	public.POST("/auth/login", h.Auth.Login)
	public.POST("/auth/register", h.Auth.Register)
	public.GET("/settings/registration_active", h.Settings.RegistrationActive)
	public.GET("/exports/:token", h.Exports.Download)

	authed.GET("/auth/me", h.Auth.Me)
	authed.PATCH("/auth/me", h.Auth.UpdateProfile)
	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	authed.GET("/institutions", h.Institutions.List)
	authed.GET("/institutions/:id", h.Institutions.Get)
	authed.POST("/institutions", middleware.RequireRoles(superAdmin...), h.Institutions.Create)
	authed.PUT("/institutions/:id", middleware.RequireRoles(superAdmin...), h.Institutions.Update)
	authed.DELETE("/institutions/:id", middleware.RequireRoles(superAdmin...), h.Institutions.Delete)

	authed.GET("/departments", h.Departments.List)
	authed.POST("/departments", middleware.RequireRoles(admins...), h.Departments.Create)
	authed.PUT("/departments/:id", middleware.RequireRoles(admins...), h.Departments.Update)
	authed.DELETE("/departments/:id", middleware.RequireRoles(admins...), h.Departments.Delete)

	authed.GET("/halls", h.Halls.List)
	authed.GET("/halls/:id", h.Halls.Get)
	authed.GET("/halls/:id/availability", h.Halls.Availability)
	authed.GET("/halls/:id/slots", h.Halls.Slots)
	authed.POST("/halls", middleware.RequireRoles(admins...), h.Halls.Create)
	authed.PUT("/halls/:id", middleware.RequireRoles(admins...), h.Halls.Update)
	authed.DELETE("/halls/:id", middleware.RequireRoles(admins...), h.Halls.Deactivate)

	users := authed.Group("/users", middleware.RequireRoles(admins...))
	users.GET("", h.Users.List)
	users.GET("/:id", h.Users.Get)
	users.POST("", h.Users.Create)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)

	authed.GET("/bookings", h.Bookings.List)
	authed.GET("/bookings/export", h.Bookings.Export)
	authed.GET("/bookings/pending-press-release", middleware.RequireRoles(models.RoleDepartmentUser), h.PressReleases.PendingBookings)
	authed.POST("/bookings", middleware.RequireRoles(requesters...), h.Bookings.Create)
	authed.GET("/bookings/:id", h.Bookings.Get)
	authed.PUT("/bookings/:id", middleware.RequireRoles(admins...), h.Bookings.Update)
	authed.PATCH("/bookings/:id/status", middleware.RequireRoles(admins...), h.Bookings.UpdateStatus)
	authed.DELETE("/bookings/:id", middleware.RequireRoles(admins...), h.Bookings.Delete)
	authed.GET("/bookings/:id/history", middleware.RequireRoles(admins...), h.Bookings.History)
	authed.POST("/bookings/:id/final-design", middleware.RequireRoles(designers...), h.Bookings.FinalDesign)
	authed.PATCH("/bookings/:id/drive-link", middleware.RequireRoles(photography...), h.Bookings.DriveLink)

	authed.POST("/press-releases", middleware.RequireRoles(models.RoleDepartmentUser), h.PressReleases.Submit)
	authed.GET("/press-releases", middleware.RequireRoles(models.RoleDepartmentUser), h.PressReleases.ListMine)
	authed.GET("/admin/press-releases", middleware.RequireRoles(admins...), h.PressReleases.AdminList)
	authed.PATCH("/admin/press-releases/:id/status", middleware.RequireRoles(admins...), h.PressReleases.UpdateStatus)
	authed.GET("/teams/approved-press-releases", middleware.RequireRoles(pressRelease...), h.PressReleases.ListApproved)
	authed.GET("/notifications/press-release-overdue", h.PressReleases.Overdue)

	authed.GET("/settings", middleware.RequireRoles(superAdmin...), h.Settings.List)
	authed.PUT("/settings/:key", middleware.RequireRoles(superAdmin...), h.Settings.Update)

	authed.GET("/dashboard/stats", h.Dashboard.Stats)
	authed.GET("/dashboard/system", middleware.RequireRoles(superAdmin...), h.Dashboard.System)

	authed.POST("/upload", h.Uploads.Upload)
}

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/handler"
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type staticTokens map[string]*models.JWTClaims

func (s staticTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, Handlers{
		Auth:          handler.NewAuthHandler(nil),
		Institutions:  handler.NewInstitutionHandler(nil),
		Departments:   handler.NewDepartmentHandler(nil),
		Halls:         handler.NewHallHandler(nil, nil),
		Users:         handler.NewUserHandler(nil),
		Bookings:      handler.NewBookingHandler(nil, nil),
		Exports:       handler.NewExportHandler(nil),
		PressReleases: handler.NewPressReleaseHandler(nil, nil),
		Settings:      handler.NewSettingHandler(nil),
		Dashboard:     handler.NewDashboardHandler(nil, nil),
		Uploads:       handler.NewUploadHandler(nil),
		Metrics:       handler.NewMetricsHandler(nil, nil),
	}, Options{
		APIPrefix: "api/",
		Tokens: staticTokens{
			"dept":  {UserID: "u1", Role: models.RoleDepartmentUser},
			"photo": {UserID: "p1", Role: models.RolePhotographyTeam},
		},
	})
	return r
}

func TestRegisterMountsRoutesUnderPrefix(t *testing.T) {
	r := newEngine(t)
	routes := map[string]bool{}
	for _, route := range r.Routes() {
		routes[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/auth/login",
		"GET /api/halls/:id/availability",
		"PATCH /api/bookings/:id/status",
		"GET /api/bookings/pending-press-release",
		"GET /api/exports/:token",
		"PATCH /api/admin/press-releases/:id/status",
		"GET /api/settings/registration_active",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}

func serve(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newEngine(t)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/bookings", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/bookings", "bogus").Code)
}

func TestRoleGuards(t *testing.T) {
	r := newEngine(t)

	w := serve(r, http.MethodPatch, "/api/bookings/b1/status", "dept")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPost, "/api/bookings/b1/final-design", "photo")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodGet, "/api/users", "dept")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

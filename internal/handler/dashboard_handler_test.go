package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/middleware"
	"github.com/noah-isme/hall-booking-api/internal/models"
)

type fakeDashboardSrv struct {
	stats     *models.DashboardStats
	hit       bool
	err       error
	lastActor models.Actor
}

func (f *fakeDashboardSrv) Stats(_ context.Context, actor models.Actor) (*models.DashboardStats, bool, error) {
	f.lastActor = actor
	return f.stats, f.hit, f.err
}

type fakeSnapshot struct{}

func (fakeSnapshot) Snapshot() models.SystemMetrics {
	return models.SystemMetrics{RequestsTotal: 7, Goroutines: 3}
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestContext(method, target string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, rec
}

func TestDashboardHandlerStatsRequiresClaims(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, nil)
	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", nil)

	handler.Stats(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerStatsSuccess(t *testing.T) {
	service := &fakeDashboardSrv{
		stats: &models.DashboardStats{Scope: "institution:inst-1", Halls: 4},
		hit:   true,
	}
	handler := NewDashboardHandler(service, nil)
	c, rec := newTestContext(http.MethodGet, "/dashboard/stats", &models.JWTClaims{
		UserID: "principal-1", Role: models.RolePrincipal, InstitutionID: "inst-1",
	})

	handler.Stats(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "institution:inst-1", envelope.Data["scope"])
	assert.Equal(t, "inst-1", service.lastActor.InstitutionID)
	assert.Equal(t, models.RolePrincipal, service.lastActor.Role)
}

func TestDashboardHandlerSystem(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{}, fakeSnapshot{})
	c, rec := newTestContext(http.MethodGet, "/dashboard/system", nil)

	handler.System(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(7), decodeEnvelope(t, rec).Data["requests_total"])
}

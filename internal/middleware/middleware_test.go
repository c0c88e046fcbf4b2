package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hall-booking-api/internal/models"
	"github.com/noah-isme/hall-booking-api/pkg/config"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	token  string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.token = token
	if s.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func protectedRouter(v TokenValidator, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(v), RequireRoles(roles...))
	r.GET("/secure", func(c *gin.Context) {
		claims, _ := CurrentClaims(c)
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	r := protectedRouter(&stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleSuperAdmin}}, models.RoleSuperAdmin)

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer   ").Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	v := &stubValidator{}
	w := get(protectedRouter(v, models.RoleSuperAdmin), "Bearer expired")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "expired", v.token)
}

func TestRequireRoles(t *testing.T) {
	principal := &stubValidator{claims: &models.JWTClaims{UserID: "p1", Role: models.RolePrincipal}}

	w := get(protectedRouter(principal, models.RoleSuperAdmin), "Bearer ok")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(protectedRouter(principal, models.RoleSuperAdmin, models.RolePrincipal), "bearer ok")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p1", w.Body.String())
}

func TestResponseMetaCarriesCacheFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/stats", func(c *gin.Context) {
		SetCacheHit(c, true)
		c.JSON(http.StatusOK, ResponseMeta(c))
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

	var meta map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
	assert.NotContains(t, meta, "started_at")
}

type observedRequest struct {
	method, path string
	status       int
}

type requestLog struct {
	seen []observedRequest
}

func (l *requestLog) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	l.seen = append(l.seen, observedRequest{method, path, status})
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &requestLog{}
	r := gin.New()
	r.Use(Metrics(log))
	r.GET("/bookings/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Len(t, log.seen, 2)
	assert.Equal(t, observedRequest{"GET", "/bookings/:id", http.StatusNoContent}, log.seen[0])
	assert.Equal(t, "unmatched", log.seen[1].path)
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: false}, nil, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimitFailsOpenWhenRedisUnreachable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute}, rdb, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateKeyPrefersUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.7:5000"

	assert.Equal(t, "rl:ip:10.0.0.7", rateKey("", c))
	c.Set(ContextUserKey, &models.JWTClaims{UserID: "u-9"})
	assert.Equal(t, "api:user:u-9", rateKey("api", c))
}

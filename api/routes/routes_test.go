package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"autoposter-api/internal/activity"
	"autoposter-api/internal/autopost"
	"autoposter-api/internal/config"
	"autoposter-api/internal/events"
	"autoposter-api/internal/metrics"
	"autoposter-api/internal/mocks"
	"autoposter-api/internal/scheduler/schedulertest"
	"autoposter-api/internal/storage"
	"autoposter-api/internal/storage/storagetest"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{UserHeader: "X-Auth-Request-User"},
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 60,
			Burst:             2,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func createTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	db := storagetest.NewDB(t)
	store := storage.NewGormStore(db, zap.NewNop())
	bus := events.NewMockEventBus()
	require.NoError(t, activity.NewRecorder(store, zap.NewNop()).Subscribe(bus))

	svc := autopost.NewService(autopost.Dependencies{
		Store:     store,
		Generator: mocks.NewMockContentGenerator(ctrl),
		Publisher: mocks.NewMockPublisher(ctrl),
		EventBus:  bus,
		Location:  time.UTC,
		Logger:    zap.NewNop(),
	})

	router := gin.New()
	SetupRoutes(router, Dependencies{
		DB:        db,
		Service:   svc,
		Scheduler: schedulertest.NewMockScheduler(),
		Metrics:   metrics.New(),
		Config:    cfg,
		Logger:    logger.FromZap(zap.NewNop()),
	})
	return router
}

func serve(router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupRoutes_HealthEndpoints(t *testing.T) {
	router := createTestRouter(t, testConfig())

	for _, path := range []string{"/health", "/api/health"} {
		w := serve(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"service":"autoposter-api"`)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestSetupRoutes_MetricsEndpoint(t *testing.T) {
	router := createTestRouter(t, testConfig())
	serve(router, http.MethodGet, "/health", nil)

	w := serve(router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `autoposter_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestSetupRoutes_APIRequiresIdentity(t *testing.T) {
	router := createTestRouter(t, testConfig())

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/user"},
		{http.MethodGet, "/api/dashboard/stats"},
		{http.MethodGet, "/api/bot/settings"},
		{http.MethodPut, "/api/bot/settings"},
		{http.MethodPost, "/api/bot/pause"},
		{http.MethodPost, "/api/bot/resume"},
		{http.MethodGet, "/api/tweets"},
		{http.MethodGet, "/api/tweets/scheduled"},
		{http.MethodPost, "/api/tweets"},
		{http.MethodDelete, "/api/tweets/1"},
		{http.MethodPost, "/api/content/generate"},
		{http.MethodPost, "/api/content/enhance"},
		{http.MethodPost, "/api/content/hashtags"},
		{http.MethodGet, "/api/analytics"},
		{http.MethodGet, "/api/activity"},
		{http.MethodGet, "/api/social/status"},
		{http.MethodGet, "/api/social/account"},
	}
	for _, route := range protected {
		w := serve(router, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
	}
}

func TestSetupRoutes_RateLimitPerUser(t *testing.T) {
	router := createTestRouter(t, testConfig())
	alice := map[string]string{"X-Auth-Request-User": "alice"}

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/tweets", alice).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/tweets", alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/api/tweets", alice).Code)

	bob := map[string]string{"X-Auth-Request-User": "bob"}
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/tweets", bob).Code)

	// Health is outside the limited group
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", nil).Code)
	}
}

func TestSetupRoutes_CORS(t *testing.T) {
	router := createTestRouter(t, testConfig())

	w := serve(router, http.MethodOptions, "/api/tweets", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = serve(router, http.MethodGet, "/health", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetupRoutes_CORSAllowAllWithoutOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = nil
	router := createTestRouter(t, cfg)

	w := serve(router, http.MethodGet, "/health", map[string]string{"Origin": "http://anywhere.example"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSetupRoutes_UnknownRoute(t *testing.T) {
	router := createTestRouter(t, testConfig())
	w := serve(router, http.MethodGet, "/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

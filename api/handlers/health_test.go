package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"autoposter-api/internal/scheduler/schedulertest"
	"autoposter-api/internal/storage/storagetest"
	"autoposter-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupHealthTest(db *gorm.DB, sched *schedulertest.MockScheduler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var handler *HealthHandler
	if sched == nil {
		handler = NewHealthHandler(db, nil, logger.FromZap(zap.NewNop()))
	} else {
		handler = NewHealthHandler(db, sched, logger.FromZap(zap.NewNop()))
	}
	router.GET("/health", handler.Check)
	return router
}

func getHealth(t *testing.T, router *gin.Engine) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthHandler_Check_Healthy(t *testing.T) {
	sched := schedulertest.NewMockScheduler()
	require.NoError(t, sched.Start(context.Background()))

	code, response := getHealth(t, setupHealthTest(storagetest.NewDB(t), sched))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "autoposter-api", response["service"])
	assert.NotEmpty(t, response["timestamp"])

	schedulerStatus, ok := response["scheduler"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, schedulerStatus["running"])
	assert.Equal(t, 1, sched.GetCallCount("Status"))
}

func TestHealthHandler_Check_NilDatabase(t *testing.T) {
	code, response := getHealth(t, setupHealthTest(nil, nil))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "autoposter-api", response["service"])

	schedulerStatus, ok := response["scheduler"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, schedulerStatus["running"])
}

func TestHealthHandler_Check_ClosedDatabase(t *testing.T) {
	db := storagetest.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	code, response := getHealth(t, setupHealthTest(db, nil))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", response["status"])
}

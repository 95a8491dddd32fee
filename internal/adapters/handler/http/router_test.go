package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	adapterHTTP "github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/palette"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

func newTestRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	habits := repository.NewInMemoryHabitRepository()
	trackers := repository.NewInMemoryTrackerRepository()
	users := repository.NewInMemoryUserRepository()

	tokens := services.NewTokenService("router-secret", "kanso-test", time.Hour, users, nil)
	core, logs := observer.New(zap.InfoLevel)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(services.NewAuthService(users), tokens),
		HabitHandler:   adapterHTTP.NewHabitHandler(services.NewHabitService(habits, palette.NewRecentColors(0), nil, nil, nil, nil), time.UTC),
		TrackerHandler: adapterHTTP.NewTrackerHandler(services.NewTrackerService(trackers, habits, nil, nil, nil)),
		KPIHandler:     adapterHTTP.NewKPIHandler(services.NewKPIService(habits, trackers, nil, nil, time.UTC, nil), time.UTC),
		Tokens:         tokens,
		Logger:         zap.New(core),
		StartTime:      time.Now(),
	})
	return router, logs
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, logs := newTestRouter(t)

	t.Run("Health reports disabled backends", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"disabled"`)
		assert.Contains(t, w.Body.String(), `"redis":"disabled"`)
	})

	t.Run("Swagger UI is served", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/habits/{id}/kpi")
	})

	t.Run("Preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/habits", nil)
		req.Header.Set("Origin", "http://app.kanso.test")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	assert.NotZero(t, logs.FilterMessage("http_request").Len())
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	router, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/habits"},
		{http.MethodGet, "/api/v1/kpis"},
		{http.MethodGet, "/api/v1/habits/abc/kpi"},
		{http.MethodPut, "/api/v1/habits/abc/trackers/2024-03-15"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

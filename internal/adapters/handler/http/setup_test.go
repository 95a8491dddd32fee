package http_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/palette"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

const (
	testUser  = "user-1"
	otherUser = "user-2"
)

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingScheduler struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingScheduler) Enqueue(habitID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, habitID)
}

func (r *recordingScheduler) Enqueued() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

type testEnv struct {
	router    *gin.Engine
	habits    *repository.InMemoryHabitRepository
	trackers  *repository.InMemoryTrackerRepository
	scheduler *recordingScheduler
}

// asUser stands in for AuthMiddleware; an X-Test-User header overrides the default.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := userID
		if h := c.GetHeader("X-Test-User"); h != "" {
			id = h
		}
		c.Set(middleware.ContextUserIDKey, id)
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		habits:    repository.NewInMemoryHabitRepository(),
		trackers:  repository.NewInMemoryTrackerRepository(),
		scheduler: &recordingScheduler{},
	}

	habitSvc := services.NewHabitService(env.habits, palette.NewRecentColors(palette.DefaultLimit), env.scheduler, nil, nil, fixedClock)
	trackerSvc := services.NewTrackerService(env.trackers, env.habits, env.scheduler, nil, nil)
	kpiSvc := services.NewKPIService(env.habits, env.trackers, nil, fixedClock, time.UTC, nil)

	env.router = gin.New()
	api := env.router.Group("/api/v1")
	api.Use(asUser(testUser))
	adapterHTTP.NewHabitHandler(habitSvc, time.UTC).RegisterRoutes(api)
	adapterHTTP.NewTrackerHandler(trackerSvc).RegisterRoutes(api)
	adapterHTTP.NewKPIHandler(kpiSvc, time.UTC).RegisterRoutes(api)

	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedHabit(t *testing.T, userID string, frequency, rangeDays int, created string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, "Read", "", "#112233", "", frequency, rangeDays, created)
	require.NoError(t, err)
	require.NoError(t, e.habits.Create(t.Context(), h))
	return h
}

func (e *testEnv) seedTracker(t *testing.T, h *domain.Habit, dated string, completed, skipped bool) {
	t.Helper()
	tr := domain.NewTracker(h.ID, h.UserID, dated, completed, skipped, "")
	require.NoError(t, e.trackers.Upsert(t.Context(), tr))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

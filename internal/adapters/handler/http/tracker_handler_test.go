package http_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

func TestTrackerHandler_Log(t *testing.T) {
	t.Run("Success: upsert replaces the day", func(t *testing.T) {
		env := newTestEnv(t)
		h := env.seedHabit(t, testUser, 1, 1, "2024-03-01")
		path := "/api/v1/habits/" + h.ID + "/trackers/2024-03-14"

		w := env.do(t, http.MethodPut, path, `{"completed": true, "note": "  5km  "}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		first := decode[domain.Tracker](t, w)
		assert.True(t, first.Completed)
		assert.Equal(t, "5km", first.Note)
		assert.Equal(t, "2024-03-14", first.Dated)

		w = env.do(t, http.MethodPut, path, `{"skipped": true}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		second := decode[domain.Tracker](t, w)
		assert.Equal(t, first.ID, second.ID)
		assert.False(t, second.Completed)
		assert.True(t, second.Skipped)

		stored, err := env.trackers.ListByHabitID(t.Context(), h.ID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
		assert.Equal(t, []string{h.ID, h.ID}, env.scheduler.Enqueued())
	})

	tests := []struct {
		name       string
		owner      string
		archive    bool
		habitID    string
		date       string
		body       string
		wantStatus int
	}{
		{name: "Fail: impossible date", owner: testUser, date: "2024-02-30", body: `{"completed": true}`, wantStatus: http.StatusBadRequest},
		{name: "Fail: not a date", owner: testUser, date: "yesterday", body: `{"completed": true}`, wantStatus: http.StatusBadRequest},
		{name: "Fail: before 1970", owner: testUser, date: "0001-01-01", body: `{"skipped": true}`, wantStatus: http.StatusBadRequest},
		{name: "Fail: completed and skipped", owner: testUser, date: "2024-03-14", body: `{"completed": true, "skipped": true}`, wantStatus: http.StatusBadRequest},
		{name: "Fail: note too long", owner: testUser, date: "2024-03-14", body: `{"completed": true, "note": "` + strings.Repeat("n", domain.MaxNoteLen+1) + `"}`, wantStatus: http.StatusBadRequest},
		{name: "Fail: foreign habit", owner: otherUser, date: "2024-03-14", body: `{"completed": true}`, wantStatus: http.StatusForbidden},
		{name: "Fail: unknown habit", owner: testUser, habitID: "missing", date: "2024-03-14", body: `{"completed": true}`, wantStatus: http.StatusNotFound},
		{name: "Fail: archived habit", owner: testUser, archive: true, date: "2024-03-14", body: `{"completed": true}`, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := env.seedHabit(t, tt.owner, 1, 1, "2024-03-01")
			if tt.archive {
				h.Archive()
				require.NoError(t, env.habits.Update(t.Context(), h))
			}

			id := h.ID
			if tt.habitID != "" {
				id = tt.habitID
			}

			w := env.do(t, http.MethodPut, "/api/v1/habits/"+id+"/trackers/"+tt.date, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Empty(t, env.scheduler.Enqueued())
		})
	}
}

func TestTrackerHandler_List(t *testing.T) {
	env := newTestEnv(t)
	h := env.seedHabit(t, testUser, 1, 1, "2024-03-01")
	for _, d := range []string{"2024-03-12", "2024-03-10", "2024-03-14"} {
		env.seedTracker(t, h, d, true, false)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantDates  []string
	}{
		{name: "Success: full history oldest first", wantStatus: http.StatusOK, wantDates: []string{"2024-03-10", "2024-03-12", "2024-03-14"}},
		{name: "Success: bounded range", query: "?from=2024-03-11&to=2024-03-13", wantStatus: http.StatusOK, wantDates: []string{"2024-03-12"}},
		{name: "Success: open ended from", query: "?from=2024-03-12", wantStatus: http.StatusOK, wantDates: []string{"2024-03-12", "2024-03-14"}},
		{name: "Success: open ended to", query: "?to=2024-03-10", wantStatus: http.StatusOK, wantDates: []string{"2024-03-10"}},
		{name: "Fail: malformed bound", query: "?from=03/11/2024", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/trackers"+tt.query, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var dates []string
			for _, tr := range decode[[]domain.Tracker](t, w) {
				dates = append(dates, tr.Dated)
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}

	t.Run("Fail: foreign user", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/habits/"+h.ID+"/trackers", nil, "X-Test-User", otherUser)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestTrackerHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	h := env.seedHabit(t, testUser, 1, 1, "2024-03-01")
	env.seedTracker(t, h, "2024-03-14", true, false)
	path := "/api/v1/habits/" + h.ID + "/trackers/2024-03-14"

	w := env.do(t, http.MethodDelete, path, nil, "X-Test-User", otherUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{h.ID}, env.scheduler.Enqueued())

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package services_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

type MockHabitRepo struct {
	mock.Mock
}

func (m *MockHabitRepo) Create(ctx context.Context, h *domain.Habit) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) Update(ctx context.Context, h *domain.Habit) error {
	return m.Called(ctx, h).Error(0)
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockHabitRepo) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Habit), args.Error(1)
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	return m.Called(ctx, id, current, longest).Error(0)
}

type MockTrackerRepo struct {
	mock.Mock
}

func (m *MockTrackerRepo) Upsert(ctx context.Context, t *domain.Tracker) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTrackerRepo) GetByDate(ctx context.Context, habitID, dated string) (*domain.Tracker, error) {
	args := m.Called(ctx, habitID, dated)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tracker), args.Error(1)
}

func (m *MockTrackerRepo) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Tracker, error) {
	args := m.Called(ctx, habitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tracker), args.Error(1)
}

func (m *MockTrackerRepo) ListByHabitIDWithRange(ctx context.Context, habitID, from, to string) ([]*domain.Tracker, error) {
	args := m.Called(ctx, habitID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Tracker), args.Error(1)
}

func (m *MockTrackerRepo) DeleteByDate(ctx context.Context, habitID, dated string) error {
	return m.Called(ctx, habitID, dated).Error(0)
}

type MockKPICache struct {
	mock.Mock
}

func (m *MockKPICache) Get(ctx context.Context, habitID, day string) (*domain.HabitKPI, bool, error) {
	args := m.Called(ctx, habitID, day)
	kpi, _ := args.Get(0).(*domain.HabitKPI)
	return kpi, args.Bool(1), args.Error(2)
}

func (m *MockKPICache) Set(ctx context.Context, habitID, day string, kpi *domain.HabitKPI) error {
	return m.Called(ctx, habitID, day, kpi).Error(0)
}

func (m *MockKPICache) Invalidate(ctx context.Context, habitID string) error {
	return m.Called(ctx, habitID).Error(0)
}

// memKPICache is a map-backed KPICache that counts invalidations.
type memKPICache struct {
	mu          sync.Mutex
	entries     map[string]*domain.HabitKPI
	invalidated []string
}

func newMemKPICache() *memKPICache {
	return &memKPICache{entries: make(map[string]*domain.HabitKPI)}
}

func (c *memKPICache) Get(_ context.Context, habitID, day string) (*domain.HabitKPI, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kpi, ok := c.entries[habitID+"|"+day]
	return kpi, ok, nil
}

func (c *memKPICache) Set(_ context.Context, habitID, day string, kpi *domain.HabitKPI) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[habitID+"|"+day] = kpi
	return nil
}

func (c *memKPICache) Invalidate(_ context.Context, habitID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, habitID+"|") {
			delete(c.entries, k)
		}
	}
	c.invalidated = append(c.invalidated, habitID)
	return nil
}

func (c *memKPICache) Invalidated() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.invalidated...)
}

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

var fixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func ptr[T any](v T) *T {
	return &v
}

package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

var (
	_ domain.HabitRepository   = (*InMemoryHabitRepository)(nil)
	_ domain.TrackerRepository = (*InMemoryTrackerRepository)(nil)
	_ domain.UserRepository    = (*InMemoryUserRepository)(nil)
)

// InMemoryHabitRepository mirrors the Postgres semantics: soft deletes,
// optimistic locking on Version, and copies in and out.
type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	c := *h
	return &c
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; ok {
		return domain.ErrHabitConflict
	}

	habit.Version = 1
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		if habits[i].SortOrder != habits[j].SortOrder {
			return habits[i].SortOrder < habits[j].SortOrder
		}
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[habit.ID]
	if !ok || stored.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}
	if stored.Version != habit.Version {
		return domain.ErrHabitConflict
	}

	habit.Version++
	habit.UpdatedAt = time.Now().UTC()
	habit.CurrentStreak = stored.CurrentStreak
	habit.LongestStreak = stored.LongestStreak
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	h.DeletedAt = &now
	h.UpdatedAt = now
	h.Version++
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	changes := []*domain.Habit{}
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			changes = append(changes, cloneHabit(h))
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].UpdatedAt.Before(changes[j].UpdatedAt)
	})

	return changes, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
	return nil
}

type InMemoryTrackerRepository struct {
	// byHabit maps habit id to dated to tracker.
	byHabit map[string]map[string]*domain.Tracker

	mu sync.RWMutex
}

func NewInMemoryTrackerRepository() *InMemoryTrackerRepository {
	return &InMemoryTrackerRepository{
		byHabit: make(map[string]map[string]*domain.Tracker),
	}
}

func (r *InMemoryTrackerRepository) Upsert(ctx context.Context, tracker *domain.Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	days, ok := r.byHabit[tracker.HabitID]
	if !ok {
		days = make(map[string]*domain.Tracker)
		r.byHabit[tracker.HabitID] = days
	}

	if prev, ok := days[tracker.Dated]; ok {
		tracker.ID = prev.ID
		tracker.CreatedAt = prev.CreatedAt
	}
	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}

	c := *tracker
	days[tracker.Dated] = &c
	return nil
}

func (r *InMemoryTrackerRepository) GetByDate(ctx context.Context, habitID, dated string) (*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byHabit[habitID][dated]
	if !ok {
		return nil, domain.ErrTrackerNotFound
	}
	c := *t
	return &c, nil
}

func (r *InMemoryTrackerRepository) ListByHabitID(ctx context.Context, habitID string) ([]*domain.Tracker, error) {
	return r.list(habitID, func(string) bool { return true }), nil
}

func (r *InMemoryTrackerRepository) ListByHabitIDWithRange(ctx context.Context, habitID, from, to string) ([]*domain.Tracker, error) {
	// YYYY-MM-DD compares correctly as a string.
	return r.list(habitID, func(d string) bool { return d >= from && d <= to }), nil
}

func (r *InMemoryTrackerRepository) list(habitID string, keep func(string) bool) []*domain.Tracker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Tracker{}
	for dated, t := range r.byHabit[habitID] {
		if keep(dated) {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dated < out[j].Dated })
	return out
}

func (r *InMemoryTrackerRepository) DeleteByDate(ctx context.Context, habitID, dated string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byHabit[habitID][dated]; !ok {
		return domain.ErrTrackerNotFound
	}
	delete(r.byHabit[habitID], dated)
	return nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return domain.ErrEmailAlreadyExists
	}

	c := *user
	r.byID[user.ID] = &c
	r.byEmail[email] = user.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *r.byID[id]
	return &c, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

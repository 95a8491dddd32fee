package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/palette"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

type HabitService struct {
	repo      domain.HabitRepository
	colors    *palette.RecentColors
	scheduler StreakScheduler
	cache     KPICache
	logger    *zap.Logger
	now       Clock
}

func NewHabitService(
	repo domain.HabitRepository,
	colors *palette.RecentColors,
	scheduler StreakScheduler,
	cache KPICache,
	logger *zap.Logger,
	now Clock,
) *HabitService {
	if colors == nil {
		colors = palette.NewRecentColors(palette.DefaultLimit)
	}
	if cache == nil {
		cache = NopKPICache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HabitService{
		repo:      repo,
		colors:    colors,
		scheduler: scheduler,
		cache:     cache,
		logger:    logger,
		now:       now.orDefault(),
	}
}

type CreateHabitInput struct {
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Frequency   int
	Range       int
	// CreatedDate defaults to today in Location.
	CreatedDate string
	Location    *time.Location
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Frequency   int
	Range       int
	SortOrder   *int
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func mergeInt(newVal, oldVal int) int {
	if newVal == 0 {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	createdDate := input.CreatedDate
	if createdDate == "" {
		createdDate = streaks.FormatDate(todayIn(s.now, input.Location))
	}

	habit, err := domain.NewHabit(
		input.UserID,
		input.Title,
		input.Description,
		input.Color,
		input.Icon,
		input.Frequency,
		input.Range,
		createdDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("habit service: create: %w", err)
	}

	s.colors.Push(habit.Color)

	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) RecentColors() []string {
	return s.colors.List()
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	err = habit.Update(
		mergeString(input.Title, habit.Title),
		mergeString(input.Description, habit.Description),
		mergeString(input.Color, habit.Color),
		mergeString(input.Icon, habit.Icon),
		mergeInt(input.Frequency, habit.Frequency),
		mergeInt(input.Range, habit.Range),
	)
	if err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	s.colors.Push(habit.Color)
	s.refreshDerived(ctx, habit.ID)

	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Archive()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	s.refreshDerived(ctx, habit.ID)
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Restore()
	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	s.refreshDerived(ctx, habit.ID)
	return habit, nil
}

func (s *HabitService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("kpi_cache_invalidate_failed", zap.String("habit_id", id), zap.Error(err))
	}
	return nil
}

// refreshDerived drops cached KPIs and queues a streak recompute so both
// follow the habit's current schedule.
func (s *HabitService) refreshDerived(ctx context.Context, habitID string) {
	if err := s.cache.Invalidate(ctx, habitID); err != nil {
		s.logger.Warn("kpi_cache_invalidate_failed", zap.String("habit_id", habitID), zap.Error(err))
	}
	if s.scheduler != nil {
		s.scheduler.Enqueue(habitID)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

// StreakScheduler queues a background recompute of a habit's streak counters.
type StreakScheduler interface {
	Enqueue(habitID string)
}

type TrackerService struct {
	repo      domain.TrackerRepository
	habitRepo domain.HabitRepository
	scheduler StreakScheduler
	cache     KPICache
	logger    *zap.Logger
}

func NewTrackerService(
	repo domain.TrackerRepository,
	habitRepo domain.HabitRepository,
	scheduler StreakScheduler,
	cache KPICache,
	logger *zap.Logger,
) *TrackerService {
	if cache == nil {
		cache = NopKPICache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackerService{
		repo:      repo,
		habitRepo: habitRepo,
		scheduler: scheduler,
		cache:     cache,
		logger:    logger,
	}
}

type LogTrackerInput struct {
	HabitID   string
	UserID    string
	Dated     string
	Completed bool
	Skipped   bool
	Note      string
}

type ListTrackersInput struct {
	HabitID string
	UserID  string
	// From and To are optional inclusive YYYY-MM-DD bounds.
	From string
	To   string
}

func (s *TrackerService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

// Log records the status of a habit for one day. A second log for the same
// day replaces the first.
func (s *TrackerService) Log(ctx context.Context, input LogTrackerInput) (*domain.Tracker, error) {
	tracker := domain.NewTracker(input.HabitID, input.UserID, input.Dated, input.Completed, input.Skipped, input.Note)
	if err := tracker.Validate(); err != nil {
		return nil, err
	}

	habit, err := s.ownedHabit(ctx, input.HabitID, input.UserID)
	if err != nil {
		return nil, err
	}
	if habit.ArchivedAt != nil {
		return nil, domain.ErrHabitArchived
	}

	existing, err := s.repo.GetByDate(ctx, input.HabitID, input.Dated)
	switch {
	case err == nil:
		existing.Completed = tracker.Completed
		existing.Skipped = tracker.Skipped
		existing.Note = tracker.Note
		existing.UpdatedAt = time.Now().UTC()
		tracker = existing
	case errors.Is(err, domain.ErrTrackerNotFound):
	default:
		return nil, fmt.Errorf("tracker service: lookup %s: %w", input.Dated, err)
	}

	if err := s.repo.Upsert(ctx, tracker); err != nil {
		return nil, fmt.Errorf("tracker service: upsert: %w", err)
	}

	s.afterWrite(ctx, tracker.HabitID)

	return tracker, nil
}

func (s *TrackerService) Delete(ctx context.Context, habitID, userID, dated string) error {
	if _, err := streaks.ParseDate(dated); err != nil {
		return domain.ErrInvalidDate
	}
	if _, err := s.ownedHabit(ctx, habitID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteByDate(ctx, habitID, dated); err != nil {
		return err
	}

	s.afterWrite(ctx, habitID)

	return nil
}

func (s *TrackerService) List(ctx context.Context, input ListTrackersInput) ([]*domain.Tracker, error) {
	for _, d := range []string{input.From, input.To} {
		if d == "" {
			continue
		}
		if _, err := streaks.ParseDate(d); err != nil {
			return nil, domain.ErrInvalidDate
		}
	}

	if _, err := s.ownedHabit(ctx, input.HabitID, input.UserID); err != nil {
		return nil, err
	}

	if input.From == "" && input.To == "" {
		return s.repo.ListByHabitID(ctx, input.HabitID)
	}

	from, to := input.From, input.To
	if from == "" {
		from = "0001-01-01"
	}
	if to == "" {
		to = "9999-12-31"
	}
	return s.repo.ListByHabitIDWithRange(ctx, input.HabitID, from, to)
}

func (s *TrackerService) afterWrite(ctx context.Context, habitID string) {
	if err := s.cache.Invalidate(ctx, habitID); err != nil {
		s.logger.Warn("kpi_cache_invalidate_failed", zap.String("habit_id", habitID), zap.Error(err))
	}
	if s.scheduler != nil {
		s.scheduler.Enqueue(habitID)
	}
}

package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

const DefaultDaysWindow = 30

// KPICache memoises KPI objects per habit and calendar day.
type KPICache interface {
	Get(ctx context.Context, habitID, day string) (*domain.HabitKPI, bool, error)
	Set(ctx context.Context, habitID, day string, kpi *domain.HabitKPI) error
	// Invalidate drops every cached day of a habit.
	Invalidate(ctx context.Context, habitID string) error
}

type NopKPICache struct{}

func (NopKPICache) Get(context.Context, string, string) (*domain.HabitKPI, bool, error) {
	return nil, false, nil
}
func (NopKPICache) Set(context.Context, string, string, *domain.HabitKPI) error { return nil }
func (NopKPICache) Invalidate(context.Context, string) error                   { return nil }

type KPIService struct {
	habitRepo   domain.HabitRepository
	trackerRepo domain.TrackerRepository
	cache       KPICache
	now         Clock
	defaultLoc  *time.Location
	logger      *zap.Logger
}

func NewKPIService(
	habitRepo domain.HabitRepository,
	trackerRepo domain.TrackerRepository,
	cache KPICache,
	now Clock,
	defaultLoc *time.Location,
	logger *zap.Logger,
) *KPIService {
	if cache == nil {
		cache = NopKPICache{}
	}
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KPIService{
		habitRepo:   habitRepo,
		trackerRepo: trackerRepo,
		cache:       cache,
		now:         now.orDefault(),
		defaultLoc:  defaultLoc,
		logger:      logger,
	}
}

func (s *KPIService) today(loc *time.Location) time.Time {
	if loc == nil {
		loc = s.defaultLoc
	}
	return todayIn(s.now, loc)
}

func (s *KPIService) ownedHabit(ctx context.Context, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return habit, nil
}

func (s *KPIService) evaluate(ctx context.Context, habit *domain.Habit, today time.Time) (*streaks.Evaluator, error) {
	schedule, err := habit.Schedule()
	if err != nil {
		return nil, err
	}

	trackers, err := s.trackerRepo.ListByHabitID(ctx, habit.ID)
	if err != nil {
		return nil, err
	}

	records, err := domain.Records(trackers)
	if err != nil {
		return nil, err
	}

	return streaks.New(schedule, records, today), nil
}

func (s *KPIService) GetKPI(ctx context.Context, q domain.KPIQuery) (*domain.HabitKPI, error) {
	habit, err := s.ownedHabit(ctx, q.HabitID, q.UserID)
	if err != nil {
		return nil, err
	}
	return s.kpiFor(ctx, habit, s.today(q.Location))
}

func (s *KPIService) kpiFor(ctx context.Context, habit *domain.Habit, today time.Time) (*domain.HabitKPI, error) {
	day := streaks.FormatDate(today)

	cached, ok, err := s.cache.Get(ctx, habit.ID, day)
	if err != nil {
		s.logger.Warn("kpi_cache_read_failed", zap.String("habit_id", habit.ID), zap.Error(err))
	}
	if ok {
		return cached, nil
	}

	ev, err := s.evaluate(ctx, habit, today)
	if err != nil {
		return nil, err
	}

	kpi := &domain.HabitKPI{ID: habit.ID, Summary: ev.Summary()}

	if err := s.cache.Set(ctx, habit.ID, day, kpi); err != nil {
		s.logger.Warn("kpi_cache_write_failed", zap.String("habit_id", habit.ID), zap.Error(err))
	}

	return kpi, nil
}

// ListKPIs returns the KPIs of every active habit of the user, all computed
// against the same today.
func (s *KPIService) ListKPIs(ctx context.Context, userID string, loc *time.Location) ([]*domain.HabitKPI, error) {
	today := s.today(loc)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	kpis := make([]*domain.HabitKPI, 0, len(habits))
	for _, h := range habits {
		if h.ArchivedAt != nil {
			continue
		}
		kpi, err := s.kpiFor(ctx, h, today)
		if err != nil {
			return nil, err
		}
		kpis = append(kpis, kpi)
	}
	return kpis, nil
}

func (s *KPIService) GetStreaks(ctx context.Context, q domain.KPIQuery) ([]streaks.Streak, error) {
	habit, err := s.ownedHabit(ctx, q.HabitID, q.UserID)
	if err != nil {
		return nil, err
	}

	ev, err := s.evaluate(ctx, habit, s.today(q.Location))
	if err != nil {
		return nil, err
	}
	return ev.Streaks(), nil
}

// GetDays classifies each day in [From, To]. To defaults to today and From to
// DefaultDaysWindow days before To.
func (s *KPIService) GetDays(ctx context.Context, q domain.DaysQuery) ([]streaks.DayStatus, error) {
	today := s.today(q.Location)

	to := today
	if q.To != "" {
		parsed, err := streaks.ParseDate(q.To)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
		to = parsed
	}

	from := to.AddDate(0, 0, -(DefaultDaysWindow - 1))
	if q.From != "" {
		parsed, err := streaks.ParseDate(q.From)
		if err != nil {
			return nil, domain.ErrInvalidDate
		}
		from = parsed
	}

	habit, err := s.ownedHabit(ctx, q.HabitID, q.UserID)
	if err != nil {
		return nil, err
	}

	ev, err := s.evaluate(ctx, habit, today)
	if err != nil {
		return nil, err
	}
	return ev.Days(from, to), nil
}

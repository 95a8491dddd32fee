package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

const QueueSize = 100

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type TrackerRepository interface {
	ListByHabitID(ctx context.Context, habitID string) ([]*domain.Tracker, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker keeps the denormalised streak counters on habits in line with
// their tracker history.
type StreakWorker struct {
	habitRepo   HabitRepository
	trackerRepo TrackerRepository
	jobs        chan StreakJob
	loc         *time.Location
	now         func() time.Time
	logger      *zap.Logger
}

func NewStreakWorker(hRepo HabitRepository, tRepo TrackerRepository, loc *time.Location, logger *zap.Logger) *StreakWorker {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreakWorker{
		habitRepo:   hRepo,
		trackerRepo: tRepo,
		jobs:        make(chan StreakJob, QueueSize),
		loc:         loc,
		now:         time.Now,
		logger:      logger.Named("streak_worker"),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		w.logger.Info("streak_worker_started", zap.Int("queue_size", cap(w.jobs)))
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info("streak_worker_stopped", zap.Int("pending", len(w.jobs)))
				return
			}
		}
	}()
}

// Enqueue never blocks; jobs are dropped while the queue is full.
func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		w.logger.Warn("streak_queue_full", zap.String("habit_id", habitID))
	}
}

// processJob stores the counters as of today; nothing refreshes them until
// the next job for the habit.
func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	log := w.logger.With(zap.String("habit_id", job.HabitID))

	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Error("streak_fetch_habit_failed", zap.Error(err))
		return
	}

	trackers, err := w.trackerRepo.ListByHabitID(ctx, job.HabitID)
	if err != nil {
		log.Error("streak_fetch_trackers_failed", zap.Error(err))
		return
	}

	current, longest, err := calculateStreaks(habit, trackers, streaks.Today(w.now(), w.loc))
	if err != nil {
		log.Error("streak_evaluate_failed", zap.Error(err))
		return
	}

	if habit.CurrentStreak == current && habit.LongestStreak == longest {
		return
	}

	if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest); err != nil {
		log.Error("streak_update_failed", zap.Error(err))
		return
	}

	log.Debug("streak_updated", zap.Int("current", current), zap.Int("longest", longest))
}

func calculateStreaks(habit *domain.Habit, trackers []*domain.Tracker, today time.Time) (int, int, error) {
	schedule, err := habit.Schedule()
	if err != nil {
		return 0, 0, err
	}

	records, err := domain.Records(trackers)
	if err != nil {
		return 0, 0, err
	}

	ev := streaks.New(schedule, records, today)
	return ev.CurrentStreak(), ev.LongestStreak(), nil
}

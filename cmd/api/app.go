package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/palette"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
)

type app struct {
	router *gin.Engine
	worker *workers.StreakWorker
	db     *sqlx.DB
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

type stores struct {
	habits   domain.HabitRepository
	trackers domain.TrackerRepository
	users    domain.UserRepository
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	logger.Info("connecting_to_database", zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))

	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := repository.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("database_ready")
	return db, nil
}

// newApp wires storage, services and the router. The streak worker is
// created but not started.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using_memory_storage")
		st = stores{
			habits:   repository.NewInMemoryHabitRepository(),
			trackers: repository.NewInMemoryTrackerRepository(),
			users:    repository.NewInMemoryUserRepository(),
		}
	default:
		db, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		st = stores{
			habits:   repository.NewPostgresHabitRepository(db),
			trackers: repository.NewPostgresTrackerRepository(db),
			users:    repository.NewPostgresUserRepository(db),
		}
	}

	var kpiCache services.KPICache
	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis_unavailable", zap.Error(err))
		} else {
			a.redis = rdb
			st.habits = repository.NewCachedHabitRepository(st.habits, rdb, logger)
			kpiCache = cache.NewRedisKPICache(rdb, cfg.KPICacheTTL)
		}
	}

	a.worker = workers.NewStreakWorker(st.habits, st.trackers, cfg.Location, logger)

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, st.users, nil)
	authService := services.NewAuthService(st.users)
	colors := palette.NewRecentColors(palette.DefaultLimit)
	colors.Subscribe(func(list []string) {
		logger.Debug("recent_colors_changed", zap.Strings("colors", list))
	})

	habitService := services.NewHabitService(st.habits, colors, a.worker, kpiCache, logger.Named("habits"), nil)
	trackerService := services.NewTrackerService(st.trackers, st.habits, a.worker, kpiCache, logger.Named("trackers"))
	kpiService := services.NewKPIService(st.habits, st.trackers, kpiCache, nil, cfg.Location, logger.Named("kpi"))

	deps := adapterHTTP.RouterDependencies{
		AuthHandler:    adapterHTTP.NewAuthHandler(authService, tokenService),
		HabitHandler:   adapterHTTP.NewHabitHandler(habitService, cfg.Location),
		TrackerHandler: adapterHTTP.NewTrackerHandler(trackerService),
		KPIHandler:     adapterHTTP.NewKPIHandler(kpiService, cfg.Location),
		Tokens:         tokenService,
		Logger:         logger,
		DB:             a.db,
		Redis:          a.redis,
		RateLimit:      cfg.RateLimit,
		RateWindow:     cfg.RateWindow,
		StartTime:      time.Now(),
	}
	a.router = adapterHTTP.NewRouter(deps)

	return a, nil
}

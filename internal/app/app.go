package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/data/db"
	"github.com/yungbote/eduverse-backend/internal/http"
	"github.com/yungbote/eduverse-backend/internal/observability"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/realtime"
)

const redisProbeInterval = 15 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics
	SSEHub   *realtime.SSEHub

	dbService     *db.Service
	shutdownTrace func(context.Context) error
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Options tweak New for commands that do not serve HTTP.
type Options struct {
	// SkipMigrate leaves the schema alone; the migrate command owns it.
	SkipMigrate bool
}

func New(ctx context.Context, opts Options) (*App, error) {
	log, err := logger.New(LogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	dbService, err := OpenDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbService.DB()
	if !opts.SkipMigrate {
		if err := db.AutoMigrateAll(theDB); err != nil {
			_ = dbService.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	metrics := observability.NewMetrics()
	if sqlDB, err := theDB.DB(); err == nil {
		if err := metrics.RegisterDB(sqlDB); err != nil {
			log.Warn("DB pool metrics unavailable", "error", err)
		}
	}
	shutdownTrace := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	ssehub := realtime.NewSSEHub(log)

	clientset, err := wireClients(ctx, log, cfg, ssehub, metrics)
	if err != nil {
		_ = shutdownTrace(ctx)
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clientset)
	if err != nil {
		clientset.Close()
		_ = shutdownTrace(ctx)
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset, clientset, ssehub)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware, serviceset, clientset, metrics)

	return &App{
		Log:           log,
		DB:            theDB,
		Server:        server,
		Cfg:           cfg,
		Repos:         reposet,
		Services:      serviceset,
		Clients:       clientset,
		Metrics:       metrics,
		SSEHub:        ssehub,
		dbService:     dbService,
		shutdownTrace: shutdownTrace,
	}, nil
}

// OpenDB connects using the database settings in cfg.
func OpenDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.Open(log, db.Config{
		Driver:           cfg.DBDriver,
		PostgresHost:     cfg.PostgresHost,
		PostgresPort:     cfg.PostgresPort,
		PostgresUser:     cfg.PostgresUser,
		PostgresPassword: cfg.PostgresPassword,
		PostgresName:     cfg.PostgresName,
		SQLitePath:       cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return svc, nil
}

// Start launches the background workers. It is safe to call once.
func (a *App) Start(parent context.Context) {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel

	if a.Services.TokenCleanup != nil {
		a.goRun(func() { a.Services.TokenCleanup.Run(ctx) })
	}

	if a.Cfg.CurriculumWatch && a.Services.Curriculum != nil {
		w, err := curriculum.NewWatcher(a.Services.Curriculum, a.Log)
		if err != nil {
			a.Log.Warn("Curriculum watcher disabled", "error", err)
		} else {
			a.goRun(func() {
				if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.Log.Warn("Curriculum watcher stopped", "error", err)
				}
			})
		}
	}

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			a.Log.Error("SSE bus forwarder failed to start", "error", err)
		}
		if a.Cfg.RedisAddr != "" && a.Metrics != nil {
			if err := a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Bus, redisProbeInterval); err != nil {
				a.Log.Warn("Redis metrics unavailable", "error", err)
			}
		}
	}
}

func (a *App) goRun(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := a.Cfg.HTTPAddr
	a.Log.Info("Serving HTTP", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.wg.Wait()
	a.Clients.Close()
	if a.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("Tracer shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

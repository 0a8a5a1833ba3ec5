package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/eduverse-backend/internal/http"
	httpH "github.com/yungbote/eduverse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/eduverse-backend/internal/http/middleware"
	"github.com/yungbote/eduverse-backend/internal/observability"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/realtime"
	"github.com/yungbote/eduverse-backend/internal/realtime/bus"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Profile     *httpH.ProfileHandler
	Follow      *httpH.FollowHandler
	Post        *httpH.PostHandler
	Interaction *httpH.InteractionHandler
	Search      *httpH.SearchHandler
	Resource    *httpH.ResourceHandler
	Realtime    *httpH.RealtimeHandler
	Edura       *httpH.EduraHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, clients Clients, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(log, healthProbes(db, clients.Bus)),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User, clients.Bucket),
		Profile:     httpH.NewProfileHandler(services.Profile),
		Follow:      httpH.NewFollowHandler(services.Follow),
		Post:        httpH.NewPostHandler(services.Post, clients.Bucket),
		Interaction: httpH.NewInteractionHandler(services.Interaction),
		Search:      httpH.NewSearchHandler(services.Search, clients.Bucket),
		Resource:    httpH.NewResourceHandler(services.Resources),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub),
		Edura:       httpH.NewEduraHandler(services.Edura),
	}
}

func healthProbes(db *gorm.DB, sseBus bus.Bus) map[string]httpH.HealthProbe {
	probes := map[string]httpH.HealthProbe{}
	if db != nil {
		probes["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if sseBus != nil {
		probes["realtime_bus"] = sseBus.Ping
	}
	return probes
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, services Services, clients Clients, metrics *observability.Metrics) *http.Server {
	log.Info("Wiring router...")
	return http.NewServer(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        metrics,
		MetricsEnabled: cfg.MetricsEnabled,
		TracingEnabled: cfg.OtelEnabled,
		Emitter:        services.Emitter,
		MediaDir:       gcp.LocalDir(clients.Bucket),
		MediaPrefix:    cfg.LocalStorageBaseURL,

		AuthMiddleware: middleware.Auth,

		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		ProfileHandler:     handlers.Profile,
		FollowHandler:      handlers.Follow,
		PostHandler:        handlers.Post,
		InteractionHandler: handlers.Interaction,
		SearchHandler:      handlers.Search,
		ResourceHandler:    handlers.Resource,
		RealtimeHandler:    handlers.Realtime,
		EduraHandler:       handlers.Edura,
	})
}

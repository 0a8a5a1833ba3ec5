package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/eduverse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/eduverse-backend/internal/http/middleware"
	"github.com/yungbote/eduverse-backend/internal/observability"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/services"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool
	TracingEnabled bool
	Emitter        services.SSEEmitter
	// MediaDir is served under MediaPrefix when object storage is local.
	MediaDir    string
	MediaPrefix string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	ProfileHandler     *httpH.ProfileHandler
	FollowHandler      *httpH.FollowHandler
	PostHandler        *httpH.PostHandler
	InteractionHandler *httpH.InteractionHandler
	SearchHandler      *httpH.SearchHandler
	ResourceHandler    *httpH.ResourceHandler
	RealtimeHandler    *httpH.RealtimeHandler
	EduraHandler       *httpH.EduraHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	if cfg.Emitter != nil {
		r.Use(httpMW.FlushSSE(cfg.Emitter))
	}

	// Ops
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.MediaDir != "" && strings.HasPrefix(cfg.MediaPrefix, "/") {
		r.Static(cfg.MediaPrefix, cfg.MediaDir)
	}

	requireAuth := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
	}

	api := r.Group("/api")
	protected := api.Group("/", requireAuth)

	// Accounts
	if cfg.AuthHandler != nil {
		api.GET("/accounts", cfg.AuthHandler.Index)
		api.POST("/accounts/register", cfg.AuthHandler.Register)
		api.POST("/accounts/login", cfg.AuthHandler.Login)
		api.POST("/token", cfg.AuthHandler.Login)
		api.POST("/accounts/token/refresh", cfg.AuthHandler.Refresh)
		api.POST("/token/refresh", cfg.AuthHandler.Refresh)

		protected.POST("/accounts/logout", cfg.AuthHandler.Logout)
		protected.GET("/accounts/protected", cfg.AuthHandler.Protected)
		r.GET("/protected-endpoint", requireAuth, cfg.AuthHandler.Protected)
	}

	// Me + profiles
	if cfg.UserHandler != nil {
		protected.GET("/me", cfg.UserHandler.GetMe)
		protected.GET("/profiles/welcome", cfg.UserHandler.Welcome)
		protected.POST("/profiles/avatar", cfg.UserHandler.UploadAvatar)
	}
	if cfg.ProfileHandler != nil {
		protected.GET("/profiles", cfg.ProfileHandler.GetMyProfile)
		protected.PATCH("/profiles", cfg.ProfileHandler.UpdateMyProfile)
		protected.PUT("/profiles", cfg.ProfileHandler.UpdateMyProfile)
		protected.GET("/profiles/records/:kind", cfg.ProfileHandler.ListRecords)
		protected.PUT("/profiles/records/:kind", cfg.ProfileHandler.ReplaceRecords)
	}

	// Others' profiles
	if cfg.FollowHandler != nil {
		protected.POST("/othersprofile/follow", cfg.FollowHandler.Follow)
		protected.GET("/othersprofile/:username", cfg.FollowHandler.PublicProfile)
		protected.GET("/othersprofile/:username/followers", cfg.FollowHandler.Followers)
		protected.GET("/othersprofile/:username/following", cfg.FollowHandler.Following)
	}

	// Posts
	if cfg.PostHandler != nil {
		protected.GET("/posts", cfg.PostHandler.ListPosts)
		protected.POST("/posts", cfg.PostHandler.CreatePost)
		protected.GET("/posts/:id", cfg.PostHandler.GetPost)
		protected.PATCH("/posts/:id", cfg.PostHandler.UpdatePost)
		protected.PUT("/posts/:id", cfg.PostHandler.UpdatePost)
		protected.DELETE("/posts/:id", cfg.PostHandler.DeletePost)
	}
	if h := cfg.InteractionHandler; h != nil {
		protected.GET("/posts/comments", h.ListComments)
		protected.POST("/posts/comments", h.CreateComment)
		protected.GET("/posts/comments/:id", h.GetComment)
		protected.PATCH("/posts/comments/:id", h.UpdateComment)
		protected.PUT("/posts/comments/:id", h.UpdateComment)
		protected.DELETE("/posts/comments/:id", h.DeleteComment)

		protected.GET("/posts/likes", h.ListLikes)
		protected.POST("/posts/likes", h.CreateLike)
		protected.DELETE("/posts/likes/:id", h.DeleteLike)

		protected.GET("/posts/save", h.ListSaves)
		protected.POST("/posts/save", h.CreateSave)
		protected.DELETE("/posts/save/:id", h.DeleteSave)

		protected.GET("/posts/favorite", h.ListFavorites)
		protected.POST("/posts/favorite", h.CreateFavorite)
		protected.DELETE("/posts/favorite/:id", h.DeleteFavorite)

		protected.GET("/posts/share", h.ListShares)
		protected.POST("/posts/share", h.CreateShare)
		protected.GET("/posts/share/:id", h.GetShare)
		protected.DELETE("/posts/share/:id", h.DeleteShare)

		protected.GET("/posts/report", h.ListReports)
		protected.POST("/posts/report", h.CreateReport)
		protected.GET("/posts/report/:id", h.GetReport)
		protected.DELETE("/posts/report/:id", h.DeleteReport)
	}

	// Search + resources
	if cfg.SearchHandler != nil {
		protected.GET("/search", cfg.SearchHandler.Search)
	}
	if cfg.ResourceHandler != nil {
		api.GET("/scraper/educational", cfg.ResourceHandler.Educational)
		api.GET("/scraper/jobs", cfg.ResourceHandler.Jobs)
		api.GET("/scraper/skills", cfg.ResourceHandler.Skills)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	}

	// Edura
	if h := cfg.EduraHandler; h != nil {
		ai := r.Group("/ai")
		ai.GET("/health", h.Health)

		aiAuth := ai.Group("/", requireAuth)
		aiAuth.GET("/list_conversations", h.ListConversations)
		aiAuth.POST("/start_conversation", h.StartConversation)
		aiAuth.POST("/start_project_conversation", h.StartProjectConversation)
		aiAuth.POST("/rename_conversation", h.RenameConversation)
		aiAuth.DELETE("/delete_conversation", h.DeleteConversation)
		aiAuth.GET("/get_messages", h.GetMessages)
		aiAuth.POST("/send_message", h.SendMessage)
		aiAuth.POST("/bot", h.Bot)
		aiAuth.POST("/edura_analysis", h.Analyze)
		aiAuth.POST("/advance_step", h.AdvanceStep)
		aiAuth.GET("/current_step", h.CurrentStep)
		aiAuth.GET("/projects", h.Projects)
		aiAuth.GET("/projects/:id", h.Project)
		aiAuth.GET("/stats", h.Stats)
		aiAuth.GET("/trending", h.Trending)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})
	return r
}

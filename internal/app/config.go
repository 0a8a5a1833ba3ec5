package app

import (
	"time"

	httpMW "github.com/yungbote/eduverse-backend/internal/http/middleware"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/envutil"
	"github.com/yungbote/eduverse-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	LogMode string

	JWTSecretKey         string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	TokenCleanupInterval time.Duration

	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	SQLitePath       string

	HTTPAddr       string
	AllowedOrigins []string

	GeminiAPIKey          string
	GeminiModel           string
	GeminiTemperature     float64
	GeminiMaxOutputTokens int
	LLMMaxRetries         int
	EduraMaxConversations int
	EduraMaxHistory       int
	EduraRatePerMinute    int
	CurriculumDir         string
	CurriculumWatch       bool
	ConversationsDir      string

	ObjectStorageMode   string
	StorageEmulatorHost string
	GCPCredentials      string
	AvatarBucket        string
	PostImageBucket     string
	AvatarCDN           string
	PostImageCDN        string
	LocalStorageDir     string
	LocalStorageBaseURL string
	AvatarFont          string
	AvatarColors        []string

	RedisAddr    string
	RedisChannel string

	OtelEnabled     bool
	OtelEndpoint    string
	OtelHeaders     string
	OtelInsecure    bool
	OtelSampleRatio float64
	MetricsEnabled  bool
	ServiceName     string
	Environment     string
	Version         string
}

// LogMode reads LOG_MODE before a logger exists.
func LogMode() string {
	return envutil.String("LOG_MODE", "development")
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode: LogMode(),

		JWTSecretKey:         envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:       time.Duration(envutil.Int("ACCESS_TOKEN_TTL", 3600)) * time.Second,
		RefreshTokenTTL:      time.Duration(envutil.Int("REFRESH_TOKEN_TTL", 86400)) * time.Second,
		TokenCleanupInterval: envutil.Duration("TOKEN_CLEANUP_INTERVAL", time.Hour),

		DBDriver:         envutil.String("DB_DRIVER", "postgres"),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "eduverse"),
		SQLitePath:       envutil.String("SQLITE_PATH", "eduverse.db"),

		HTTPAddr:       envutil.String("HTTP_ADDR", ":8080"),
		AllowedOrigins: envutil.List("CORS_ALLOWED_ORIGINS", httpMW.DefaultAllowedOrigins),

		GeminiAPIKey:          envutil.String("GEMINI_API_KEY", ""),
		GeminiModel:           envutil.String("GEMINI_MODEL", "gemini-1.5-pro"),
		GeminiTemperature:     envutil.Float("GEMINI_TEMPERATURE", 0.7),
		GeminiMaxOutputTokens: envutil.Int("GEMINI_MAX_OUTPUT_TOKENS", 8192),
		LLMMaxRetries:         envutil.Int("LLM_MAX_RETRIES", 5),
		EduraMaxConversations: envutil.Int("EDURA_MAX_CONVERSATIONS", 10),
		EduraMaxHistory:       envutil.Int("EDURA_MAX_HISTORY", 50),
		EduraRatePerMinute:    envutil.Int("EDURA_RATE_PER_MINUTE", 20),
		CurriculumDir:         envutil.String("CURRICULUM_DIR", "data/curriculum"),
		CurriculumWatch:       envutil.Bool("CURRICULUM_WATCH", true),
		ConversationsDir:      envutil.String("CONVERSATIONS_DIR", "data/conversations"),

		ObjectStorageMode:   envutil.String("OBJECT_STORAGE_MODE", ""),
		StorageEmulatorHost: envutil.String("STORAGE_EMULATOR_HOST", ""),
		GCPCredentials:      envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "")),
		AvatarBucket:        envutil.String("AVATAR_GCS_BUCKET_NAME", ""),
		PostImageBucket:     envutil.String("POST_IMAGE_GCS_BUCKET_NAME", ""),
		AvatarCDN:           envutil.String("AVATAR_CDN_DOMAIN", ""),
		PostImageCDN:        envutil.String("POST_IMAGE_CDN_DOMAIN", ""),
		LocalStorageDir:     envutil.String("LOCAL_STORAGE_DIR", "data/media"),
		LocalStorageBaseURL: envutil.String("LOCAL_STORAGE_BASE_URL", "/media"),
		AvatarFont:          envutil.String("AVATAR_FONT", ""),
		AvatarColors:        envutil.List("AVATAR_COLORS", services.DefaultAvatarColors),

		RedisAddr:    envutil.String("REDIS_ADDR", ""),
		RedisChannel: envutil.String("REDIS_CHANNEL", "sse"),

		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
		OtelEndpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OtelHeaders:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OtelInsecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		OtelSampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1.0),
		MetricsEnabled:  envutil.Bool("METRICS_ENABLED", false),
		ServiceName:     envutil.String("OTEL_SERVICE_NAME", "eduverse-backend"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
	}
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set; using the insecure default secret")
	}
	return cfg
}

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	"github.com/yungbote/eduverse-backend/internal/observability"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/gcp"
	"github.com/yungbote/eduverse-backend/internal/realtime"
	"github.com/yungbote/eduverse-backend/internal/realtime/bus"
)

// Clients holds the handles to things outside the process.
type Clients struct {
	Bucket gcp.BucketService
	Bus    bus.Bus
	LLM    llm.Engine
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, hub *realtime.SSEHub, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		return Clients{}, err
	}

	var sseBus bus.Bus
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		sseBus = b
	} else {
		sseBus = bus.NewLocalBus(hub)
	}

	temperature := float32(cfg.GeminiTemperature)
	engine, err := llm.NewGeminiEngine(ctx, log, llm.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Temperature:     &temperature,
		MaxOutputTokens: int32(cfg.GeminiMaxOutputTokens),
		MaxRetries:      cfg.LLMMaxRetries,
	}, metrics)
	if err != nil {
		_ = sseBus.Close()
		return Clients{}, fmt.Errorf("init gemini engine: %w", err)
	}

	return Clients{Bucket: bucket, Bus: sseBus, LLM: engine}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"github.com/yungbote/eduverse-backend/internal/pkg/httpx"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

type GeminiConfig struct {
	APIKey          string
	Model           string
	// Temperature defaults to 0.7 when nil; zero is a valid setting.
	Temperature     *float32
	MaxOutputTokens int32
	MaxRetries      int
}

func (c GeminiConfig) withDefaults() GeminiConfig {
	if c.Model == "" {
		c.Model = "gemini-1.5-pro"
	}
	if c.Temperature == nil {
		c.Temperature = genai.Ptr[float32](0.7)
	}
	if c.MaxOutputTokens == 0 {
		c.MaxOutputTokens = 8192
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	return c
}

// contentGenerator is the slice of the genai client the engine uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiEngine struct {
	log      *logger.Logger
	cfg      GeminiConfig
	models   contentGenerator
	breaker  *gobreaker.CircuitBreaker[string]
	recorder Recorder

	baseBackoff time.Duration
	maxBackoff  time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewGeminiEngine returns UnavailableEngine when no API key is configured.
func NewGeminiEngine(ctx context.Context, log *logger.Logger, cfg GeminiConfig, recorder Recorder) (Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		log.Warn("GEMINI_API_KEY not set; Edura replies are disabled")
		return UnavailableEngine{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiEngine(log, cfg, client.Models, recorder), nil
}

func newGeminiEngine(log *logger.Logger, cfg GeminiConfig, models contentGenerator, recorder Recorder) *GeminiEngine {
	cfg = cfg.withDefaults()
	e := &GeminiEngine{
		log:         log.With("component", "GeminiEngine", "model", cfg.Model),
		cfg:         cfg,
		models:      models,
		recorder:    recorder,
		baseBackoff: time.Second,
		maxBackoff:  10 * time.Second,
		sleep:       httpx.Sleep,
	}
	e.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about Gemini's health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn("Gemini circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return e
}

func (e *GeminiEngine) Available() bool { return true }

func (e *GeminiEngine) Generate(ctx context.Context, msgs []Message) (string, error) {
	start := time.Now()
	empty, err := validateMessages(msgs)
	if err != nil {
		e.observe(OutcomeRejected, start)
		return "", err
	}
	for _, i := range empty {
		e.log.Warn("Empty content in prompt message", "index", i)
	}
	projectContext := hasProjectContext(msgs)
	e.log.Debug("Sending prompt to Gemini", "turns", len(msgs), "project_context", projectContext)

	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.Role(role)))
	}

	reply, err := e.generateWithRetry(ctx, contents)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.observe(OutcomeUnavailable, start)
			return "", ErrUnavailable
		}
		e.observe(OutcomeError, start)
		e.log.Error("Gemini generation failed", "error", err)
		return "", apierr.New(http.StatusBadGateway, "llm_error", fmt.Errorf("gemini generate: %w", err))
	}

	reply = strings.TrimSpace(reply)
	reply, reminded := checkQuality(reply, projectContext)
	if reminded {
		e.log.Warn("Generic reply despite project context; appended focus reminder")
	}
	e.observe(OutcomeSuccess, start)
	return reply, nil
}

func (e *GeminiEngine) generateWithRetry(ctx context.Context, contents []*genai.Content) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(*e.cfg.Temperature),
		MaxOutputTokens: e.cfg.MaxOutputTokens,
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		reply, err := e.breaker.Execute(func() (string, error) {
			resp, err := e.models.GenerateContent(ctx, e.cfg.Model, contents, cfg)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		})
		if err == nil {
			return reply, nil
		}
		if !isRetryable(ctx, err) || attempt >= e.cfg.MaxRetries {
			return "", err
		}

		wait := httpx.JitterSleep(httpx.Backoff(attempt, e.baseBackoff, e.maxBackoff))
		e.log.Warn("Gemini request retrying",
			"attempt", attempt,
			"max_retries", e.cfg.MaxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if err := e.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
}

func (e *GeminiEngine) observe(outcome string, start time.Time) {
	if e.recorder != nil {
		e.recorder.ObserveLLM(outcome, time.Since(start))
	}
}

func isRetryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return httpx.IsRetryableHTTPStatus(apiErr.Code)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return httpx.IsRetryableHTTPStatus(apiErrPtr.Code)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

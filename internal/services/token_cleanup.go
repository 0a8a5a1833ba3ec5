package services

import (
	"context"
	"time"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

// TokenCleanupWorker periodically removes user_token rows past their refresh expiry.
type TokenCleanupWorker struct {
	log      *logger.Logger
	auth     AuthService
	interval time.Duration
}

func NewTokenCleanupWorker(log *logger.Logger, auth AuthService, interval time.Duration) *TokenCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &TokenCleanupWorker{
		log:      log.With("component", "TokenCleanupWorker"),
		auth:     auth,
		interval: interval,
	}
}

// Run sweeps once immediately, then every interval until ctx is done.
func (w *TokenCleanupWorker) Run(ctx context.Context) {
	w.sweep(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Token cleanup stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *TokenCleanupWorker) sweep(ctx context.Context) {
	if _, err := w.auth.CleanupExpiredTokens(ctx); err != nil && ctx.Err() == nil {
		w.log.Warn("Token cleanup failed", "error", err)
	}
}

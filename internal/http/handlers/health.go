package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe reports whether one dependency is reachable.
type HealthProbe func(ctx context.Context) error

type HealthHandler struct {
	log    *logger.Logger
	probes map[string]HealthProbe
}

func NewHealthHandler(log *logger.Logger, probes map[string]HealthProbe) *HealthHandler {
	return &HealthHandler{log: log.With("handler", "HealthHandler"), probes: probes}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	names := make([]string, 0, len(h.probes))
	for name := range h.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
		err := h.probes[name](ctx)
		cancel()
		if err != nil {
			h.log.Warn("Health probe failed", "probe", name, "error", err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "checks": checks})
}

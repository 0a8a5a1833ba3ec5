package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/eduverse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/eduverse-backend/internal/services"
)

// FlushSSE gives each request an event buffer and emits it after the
// handler, but only for responses below 400.
func FlushSSE(emitter services.SSEEmitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithSSEData(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		msgs := ctxutil.GetSSEData(ctx).Drain()
		if len(msgs) == 0 || emitter == nil || c.Writer.Status() >= 400 {
			return
		}
		emitCtx := context.WithoutCancel(ctx)
		for _, msg := range msgs {
			emitter.Emit(emitCtx, msg)
		}
	}
}

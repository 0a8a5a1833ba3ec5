package ctxutil

import (
	"context"
	"sync"

	"github.com/yungbote/eduverse-backend/internal/realtime"
)

type sseDataKey struct{}

// SSEData buffers realtime messages produced while handling a request.
// They are flushed by middleware.FlushSSE after the handler succeeds.
type SSEData struct {
	mu       sync.Mutex
	messages []realtime.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	return context.WithValue(ctx, sseDataKey{}, &SSEData{})
}

func GetSSEData(ctx context.Context) *SSEData {
	if ctx == nil {
		return nil
	}
	ssd, _ := ctx.Value(sseDataKey{}).(*SSEData)
	return ssd
}

func (d *SSEData) AppendMessage(msg realtime.SSEMessage) {
	if d == nil {
		return
	}
	d.mu.Lock()
	d.messages = append(d.messages, msg)
	d.mu.Unlock()
}

// Drain returns the buffered messages and empties the buffer.
func (d *SSEData) Drain() []realtime.SSEMessage {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.messages
	d.messages = nil
	return out
}

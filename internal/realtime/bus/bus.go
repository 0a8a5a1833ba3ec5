package bus

import (
	"context"

	"github.com/yungbote/eduverse-backend/internal/realtime"
)

// Bus moves realtime messages between API instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Ping(ctx context.Context) error
	Close() error
}

type localBus struct {
	hub *realtime.SSEHub
}

// NewLocalBus delivers straight into hub. Used when no Redis is configured.
func NewLocalBus(hub *realtime.SSEHub) Bus {
	return &localBus{hub: hub}
}

func (b *localBus) Publish(_ context.Context, msg realtime.SSEMessage) error {
	b.hub.Broadcast(msg)
	return nil
}

func (b *localBus) StartForwarder(context.Context, func(m realtime.SSEMessage)) error { return nil }

func (b *localBus) Ping(context.Context) error { return nil }

func (b *localBus) Close() error { return nil }

package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/eduverse-backend/internal/data/repos/testutil"
	"github.com/yungbote/eduverse-backend/internal/realtime"
	"github.com/yungbote/eduverse-backend/internal/realtime/bus"
)

type downBus struct{ bus.Bus }

func (downBus) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthProbes(t *testing.T) {
	db := testutil.DB(t)
	hub := realtime.NewSSEHub(testutil.Logger(t))

	probes := healthProbes(db, bus.NewLocalBus(hub))
	require.Len(t, probes, 2)
	assert.NoError(t, probes["database"](context.Background()))
	assert.NoError(t, probes["realtime_bus"](context.Background()))

	probes = healthProbes(nil, downBus{})
	require.Len(t, probes, 1)
	assert.Error(t, probes["realtime_bus"](context.Background()))
}

package envutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("EV_STR", "  hello ")
	t.Setenv("EV_INT", "42")
	t.Setenv("EV_BAD_INT", "x")
	t.Setenv("EV_FLOAT", "0.25")
	t.Setenv("EV_BOOL", "yes")
	t.Setenv("EV_DUR", "90s")
	t.Setenv("EV_DUR_SECS", "30")
	t.Setenv("EV_LIST", "a, b,,c ")

	assert.Equal(t, "hello", String("EV_STR", "d"))
	assert.Equal(t, "d", String("EV_MISSING", "d"))
	assert.Equal(t, 42, Int("EV_INT", 1))
	assert.Equal(t, 1, Int("EV_BAD_INT", 1))
	assert.InDelta(t, 0.25, Float("EV_FLOAT", 1), 1e-9)
	assert.True(t, Bool("EV_BOOL", false))
	assert.True(t, Bool("EV_MISSING", true))
	assert.Equal(t, 90*time.Second, Duration("EV_DUR", time.Second))
	assert.Equal(t, 30*time.Second, Duration("EV_DUR_SECS", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, List("EV_LIST", nil))
	assert.Equal(t, []string{"z"}, List("EV_MISSING", []string{"z"}))
}

package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/hubermanchat/internal/domain/model"
	"github.com/edgard/hubermanchat/internal/logger"
)

func TestConversationReturnsCopies(t *testing.T) {
	t.Parallel()

	c := NewConversation()
	c.Append(model.Message{Role: model.RoleUser, Content: "one"})
	c.Append(model.Message{Role: model.RoleUser, Content: "two"})

	msgs := c.Messages()
	msgs[0].Content = "changed"

	assert.Equal(t, "one", c.Messages()[0].Content)
	assert.Equal(t, 2, c.Len())
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(30*time.Minute, logger.Discard())
	r.now = func() time.Time { return now }

	web := r.Create()
	require.NotEmpty(t, web.ID)

	got, ok := r.Get(web.ID)
	require.True(t, ok)
	assert.Same(t, web, got)

	_, ok = r.Get("unknown")
	assert.False(t, ok)

	tg := r.GetOrCreate("telegram:42")
	assert.Equal(t, "telegram:42", tg.ID)
	assert.Same(t, tg, r.GetOrCreate("telegram:42"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistrySweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(30*time.Minute, logger.Discard())
	r.now = func() time.Time { return now }

	stale := r.GetOrCreate("stale")
	busy := r.GetOrCreate("busy")
	require.True(t, busy.begin(now))

	now = now.Add(20 * time.Minute)
	fresh := r.GetOrCreate("fresh")

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get(stale.ID)
	assert.False(t, ok, "idle session past the timeout is ended")
	_, ok = r.Get(busy.ID)
	assert.True(t, ok, "session with a request in flight is kept")
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "generating", StateGenerating.String())
	assert.Equal(t, "unknown", State(9).String())
}

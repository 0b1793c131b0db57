package sessionstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ai-bizchat-be/pkg/chat/session"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, found)

	sess := session.New("abc")
	sess.Append(session.RoleUser, "היי")
	assert.NoError(t, store.Save(ctx, sess))

	got, found, err := store.Get(ctx, "abc")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", got.ID)
	assert.Len(t, got.History, 1)

	assert.NoError(t, store.Delete(ctx, "abc"))
	_, found, _ = store.Get(ctx, "abc")
	assert.False(t, found)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(20 * time.Millisecond)
	ctx := context.Background()

	assert.NoError(t, store.Save(ctx, session.New("short")))
	time.Sleep(40 * time.Millisecond)

	_, found, err := store.Get(ctx, "short")
	assert.NoError(t, err)
	assert.False(t, found)
}

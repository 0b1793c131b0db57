package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"ai-bizchat-be/internal/repository/sessionstore"
	"ai-bizchat-be/pkg/chat/session"
)

func newResetApp(store sessionstore.Store, ttl time.Duration) (*fiber.App, *chatController) {
	c := NewChatController(nil, nil, store, ttl).(*chatController)
	app := fiber.New()
	app.Post("/api/chat/v1/reset", c.Reset)
	return app, c
}

func TestResetReleasesSessionLock(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour)
	app, c := newResetApp(store, time.Hour)

	assert.NoError(t, store.Save(context.Background(), session.New("abc")))
	c.sessionLock("abc")
	assert.Len(t, c.locks, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/reset", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "abc"})
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Empty(t, c.locks)
	_, found, err := store.Get(context.Background(), "abc")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestIdleSessionLocksArePruned(t *testing.T) {
	store := sessionstore.NewMemoryStore(time.Hour)
	_, c := newResetApp(store, 10*time.Millisecond)

	for i := 0; i <= lockPruneThreshold; i++ {
		c.sessionLock(fmt.Sprintf("s-%d", i))
	}
	assert.Len(t, c.locks, lockPruneThreshold+1)

	time.Sleep(30 * time.Millisecond)

	// The next acquisition sweeps everything idle past the session TTL.
	c.sessionLock("fresh")
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.locks, 1)
	assert.Contains(t, c.locks, "fresh")
}

package controller

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-bizchat-be/internal/dto"
	"ai-bizchat-be/internal/pkg/serverutils"
	"ai-bizchat-be/internal/repository/sessionstore"
	"ai-bizchat-be/internal/service"
	"ai-bizchat-be/pkg/chat/session"
)

const sessionCookie = "chat_session_id"

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Warmup(ctx *fiber.Ctx) error
	InvalidateCache(ctx *fiber.Ctx) error
}

// chatController owns the session cookie and serializes handling per
// conversation, so the service can mutate sessions without locking.
type chatController struct {
	chatService   service.IChatService
	warmupService service.IWarmupService
	sessions      sessionstore.Store
	sessionTTL    time.Duration

	mu    sync.Mutex
	locks map[string]*lockEntry
}

// lockEntry is a per-conversation mutex stamped on every acquisition, so
// entries idle past the session TTL can be pruned.
type lockEntry struct {
	sync.Mutex
	lastUsed time.Time
}

// lockPruneThreshold is how many lock entries may accumulate before an
// acquisition sweeps out the idle ones.
const lockPruneThreshold = 1024

func NewChatController(
	chatService service.IChatService,
	warmupService service.IWarmupService,
	sessions sessionstore.Store,
	sessionTTL time.Duration,
) IChatController {
	return &chatController{
		chatService:   chatService,
		warmupService: warmupService,
		sessions:      sessions,
		sessionTTL:    sessionTTL,
		locks:         make(map[string]*lockEntry),
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("message", c.SendMessage)
	h.Post("reset", c.Reset)

	admin := h.Group("", serverutils.AdminJwtMiddleware)
	admin.Get("stats", c.Stats)
	admin.Post("warmup", c.Warmup)
	admin.Post("cache/invalidate", c.InvalidateCache)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionID := c.ensureCookie(ctx)

	// One in-flight message per conversation.
	lock := c.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, found, err := c.sessions.Get(ctx.Context(), sessionID)
	if err != nil {
		return err
	}
	if !found {
		sess = session.New(sessionID)
	}

	res, err := c.chatService.HandleMessage(ctx.Context(), sess, req.Message)
	if err != nil {
		return err
	}

	if err := c.sessions.Save(ctx.Context(), sess); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message processed", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	sessionID := ctx.Cookies(sessionCookie)
	if sessionID != "" {
		lock := c.sessionLock(sessionID)
		lock.Lock()
		defer lock.Unlock()

		if err := c.sessions.Delete(ctx.Context(), sessionID); err != nil {
			return err
		}

		c.mu.Lock()
		delete(c.locks, sessionID)
		c.mu.Unlock()
	}
	ctx.ClearCookie(sessionCookie)
	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation reset", nil))
}

func (c *chatController) Stats(ctx *fiber.Ctx) error {
	s := c.chatService.Stats()
	return ctx.JSON(serverutils.SuccessResponse("Cache stats", dto.StatsResponse{
		CacheHits:        s.Hits,
		CacheMisses:      s.Misses,
		CacheEvictions:   s.Evictions,
		CacheExpirations: s.Expirations,
		CacheSize:        s.Size,
		CacheCapacity:    s.Capacity,
		CacheHitRate:     s.HitRate(),
	}))
}

func (c *chatController) Warmup(ctx *fiber.Ctx) error {
	enqueued := c.warmupService.Run(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Warm-up finished", dto.WarmupResponse{Enqueued: enqueued}))
}

// InvalidateCache drops cached responses by key prefix, e.g. "cluster:he"
// after the Hebrew knowledge base changed. An empty prefix clears everything.
func (c *chatController) InvalidateCache(ctx *fiber.Ctx) error {
	var req dto.InvalidateCacheRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	removed := c.chatService.InvalidateCache(req.Prefix)
	return ctx.JSON(serverutils.SuccessResponse("Cache invalidated", dto.InvalidateCacheResponse{Removed: removed}))
}

func (c *chatController) ensureCookie(ctx *fiber.Ctx) string {
	sessionID := ctx.Cookies(sessionCookie)
	if sessionID == "" {
		sessionID = uuid.NewString()
		ctx.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sessionID,
			Expires:  time.Now().Add(c.sessionTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sessionID
}

func (c *chatController) sessionLock(sessionID string) *lockEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.locks) > lockPruneThreshold {
		cutoff := time.Now().Add(-c.sessionTTL)
		for id, e := range c.locks {
			if id != sessionID && e.lastUsed.Before(cutoff) {
				delete(c.locks, id)
			}
		}
	}

	lock, ok := c.locks[sessionID]
	if !ok {
		lock = &lockEntry{}
		c.locks[sessionID] = lock
	}
	lock.lastUsed = time.Now()
	return lock
}

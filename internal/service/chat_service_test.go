package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"

	"ai-bizchat-be/internal/config"
	"ai-bizchat-be/pkg/chat/cache"
	"ai-bizchat-be/pkg/chat/intent"
	"ai-bizchat-be/pkg/chat/knowledge"
	"ai-bizchat-be/pkg/chat/session"
	"ai-bizchat-be/pkg/chat/variation"
	"ai-bizchat-be/pkg/events"
	"ai-bizchat-be/pkg/llm"
	"ai-bizchat-be/pkg/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Std(module string) *log.Logger                                { return log.New(io.Discard, "", 0) }
func (nopLogger) Sync() error                                                  { return nil }

type emptyStore struct{}

func (emptyStore) Query(ctx context.Context, text string, filter map[string]string, topK int) ([]vectorstore.Result, error) {
	return nil, nil
}

func (emptyStore) GetByMetadata(ctx context.Context, filter map[string]string) ([]vectorstore.Result, error) {
	return nil, nil
}

// stubLLM replays canned replies in order, repeating the last one.
type stubLLM struct {
	replies []string
	err     error
	calls   int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

func newTestService(llmStub llm.LLMProvider) (IChatService, *gochannel.GoChannel) {
	discard := log.New(io.Discard, "", 0)
	store := emptyStore{}
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	cfg := config.ChatConfig{
		BotName:       "עטרה",
		CompanyName:   "Atarize",
		HistoryWindow: 10,
		CacheCapacity: 100,
		CacheTTL:      time.Hour,
	}

	svc := NewChatService(
		cfg,
		nopLogger{},
		session.NewManager(discard),
		intent.NewResolver(nil, store, discard),
		knowledge.NewRetriever(store, discard),
		cache.New(cfg.CacheCapacity, cfg.CacheTTL),
		variation.NewTracker(1),
		llmStub,
		pubSub,
		"",
	)
	return svc, pubSub
}

func TestEmptyMessageAsksForClarification(t *testing.T) {
	stub := &stubLLM{replies: []string{"unused"}}
	svc, _ := newTestService(stub)
	sess := session.New("s-empty")

	resp, err := svc.HandleMessage(context.Background(), sess, "   ")

	assert.NoError(t, err)
	assert.Equal(t, "לא בטוחה שהבנתי, אפשר לפרט קצת יותר?", resp.Response)
	assert.Equal(t, 0, stub.calls)
}

func TestGreetingShortCircuits(t *testing.T) {
	stub := &stubLLM{replies: []string{"unused"}}
	svc, _ := newTestService(stub)
	sess := session.New("s-greet")

	resp, err := svc.HandleMessage(context.Background(), sess, "שלום")

	assert.NoError(t, err)
	assert.Contains(t, resp.Response, "עטרה")
	assert.Equal(t, "he", resp.Language)
	assert.True(t, sess.IntroGiven)
	assert.Equal(t, 0, stub.calls)

	// The introduction is given once; later greetings get a varied helper line.
	resp2, err := svc.HandleMessage(context.Background(), sess, "היי")
	assert.NoError(t, err)
	assert.NotContains(t, resp2.Response, "אני עטרה")
	assert.Equal(t, 0, stub.calls)
}

func TestBuyingIntentOpensLeadCollection(t *testing.T) {
	stub := &stubLLM{replies: []string{"unused"}}
	svc, _ := newTestService(stub)
	sess := session.New("s-buy")

	resp, err := svc.HandleMessage(context.Background(), sess, "אני רוצה לקנות בוט לעסק")

	assert.NoError(t, err)
	assert.True(t, resp.LeadPending)
	assert.Equal(t, session.TriggerBuyingIntent, sess.LeadTrigger)
	assert.Equal(t, 1, sess.LeadRequestCount)
	assert.Contains(t, resp.Response, "טלפון")
	assert.Equal(t, 0, stub.calls)
}

func TestLeadRequestCapThenNormalAnswer(t *testing.T) {
	answer := "המערכת עונה ללקוחות באופן אוטומטי בעברית ובאנגלית ואוספת פניות."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	sess := session.New("s-cap")
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, sess, "אני רוצה לקנות בוט")
	assert.NoError(t, err)
	assert.Equal(t, 1, sess.LeadRequestCount)

	// Two more nudges allowed for buying intent.
	resp, _ := svc.HandleMessage(ctx, sess, "ספר לי על היכולות של המערכת")
	assert.Contains(t, resp.Response, "טלפון")
	assert.Equal(t, 2, sess.LeadRequestCount)

	resp, _ = svc.HandleMessage(ctx, sess, "קודם אני רוצה להבין מה מקבלים")
	assert.Contains(t, resp.Response, "טלפון")
	assert.Equal(t, 3, sess.LeadRequestCount)
	assert.Equal(t, 0, stub.calls)

	// Cap spent: collection is abandoned and the question finally reaches
	// the model.
	resp, err = svc.HandleMessage(ctx, sess, "ספר לי על היכולות של המערכת")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Response, answer))
	assert.Equal(t, 1, stub.calls)
	assert.False(t, resp.LeadPending)
	assert.Equal(t, session.StageNew, sess.Stage)
	assert.Equal(t, 0, sess.LeadRequestCount)
}

func TestVolunteeredLeadPublishesOnce(t *testing.T) {
	answer := "המערכת שלנו עוזרת לעסקים לענות ללקוחות מהר יותר ולא לפספס פניות."
	stub := &stubLLM{replies: []string{answer}}
	svc, pubSub := newTestService(stub)
	ctx := context.Background()

	msgs, err := pubSub.Subscribe(ctx, events.LeadCaptured)
	assert.NoError(t, err)

	sess := session.New("s-lead")
	leadText := "שמי דני כהן, טלפון 052-1234567, מייל dani@example.com"

	resp, err := svc.HandleMessage(ctx, sess, leadText)
	assert.NoError(t, err)
	assert.True(t, resp.LeadCollected)
	assert.Equal(t, session.StageLeadCollected, sess.Stage)

	select {
	case msg := <-msgs:
		msg.Ack()
		var payload map[string]string
		assert.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "דני כהן", payload["name"])
		assert.Equal(t, "052-1234567", payload["phone"])
		assert.Equal(t, "dani@example.com", payload["email"])
	case <-time.After(2 * time.Second):
		t.Fatal("expected a lead event")
	}

	// A repeated contact record is answered normally, not re-published.
	resp, err = svc.HandleMessage(ctx, sess, leadText)
	assert.NoError(t, err)
	assert.True(t, resp.LeadCollected)

	select {
	case <-msgs:
		t.Fatal("lead event published twice")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestLeadExitAbandonsCollection(t *testing.T) {
	stub := &stubLLM{replies: []string{"unused"}}
	svc, _ := newTestService(stub)
	sess := session.New("s-exit")
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, sess, "אני רוצה לקנות בוט")
	assert.NoError(t, err)
	assert.True(t, sess.LeadPending())

	resp, err := svc.HandleMessage(ctx, sess, "עזוב, לא רוצה")
	assert.NoError(t, err)
	assert.False(t, resp.LeadPending)
	assert.Equal(t, session.StageNew, sess.Stage)
	assert.Equal(t, 0, sess.LeadRequestCount)
	assert.NotEmpty(t, resp.Response)
}

func TestCacheServesParaphrase(t *testing.T) {
	answer := "המסלול הבסיסי מתחיל ב-290 שקלים לחודש וכולל את כל יכולות הליבה."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	ctx := context.Background()

	resp1, err := svc.HandleMessage(ctx, session.New("s-a"), "כמה עולה השירות?")
	assert.NoError(t, err)
	assert.False(t, resp1.FromCache)
	assert.True(t, strings.HasPrefix(resp1.Response, answer))
	assert.Equal(t, 1, stub.calls)

	// A paraphrase in the same question cluster is served from cache, without
	// the appended ending, so the cached text stays stable.
	resp2, err := svc.HandleMessage(ctx, session.New("s-b"), "מה המחיר אצלכם?")
	assert.NoError(t, err)
	assert.True(t, resp2.FromCache)
	assert.Equal(t, answer, resp2.Response)
	assert.Equal(t, 1, stub.calls)
}

func TestGenerationFailureFallsBackToLeadCapture(t *testing.T) {
	stub := &stubLLM{err: errors.New("model unavailable")}
	svc, _ := newTestService(stub)
	sess := session.New("s-fail")

	resp, err := svc.HandleMessage(context.Background(), sess, "ספר לי בבקשה על החבילה המתקדמת")

	assert.NoError(t, err)
	assert.Contains(t, resp.Response, "סליחה")
	assert.Contains(t, resp.Response, "טלפון")
	assert.True(t, resp.LeadPending)
	assert.Equal(t, session.TriggerFallback, sess.LeadTrigger)
}

func TestVagueAnswerWidensAndRetries(t *testing.T) {
	vague := "אין לי שום מידע על זה"
	good := "המערכת עונה ללקוחות בעברית ובאנגלית סביב השעון ואוספת פניות חדשות."
	stub := &stubLLM{replies: []string{vague, good}}
	svc, _ := newTestService(stub)

	resp, err := svc.HandleMessage(context.Background(), session.New("s-vague"), "ספר לי על המערכת שלכם בבקשה")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Response, good))
	assert.Equal(t, 2, stub.calls)
}

func TestDoubleVagueAnswerFallsBackToLeadCapture(t *testing.T) {
	vague := "אין לי שום מידע על זה"
	stub := &stubLLM{replies: []string{vague, vague}}
	svc, _ := newTestService(stub)
	sess := session.New("s-vague2")

	resp, err := svc.HandleMessage(context.Background(), sess, "ספר לי על האינטגרציות שלכם")

	assert.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
	assert.NotContains(t, resp.Response, vague)
	assert.Contains(t, resp.Response, "סליחה")
	assert.Contains(t, resp.Response, "טלפון")
	assert.True(t, resp.LeadPending)
	assert.Equal(t, session.TriggerFallback, sess.LeadTrigger)
}

func TestCachedRepliesAreScopedToSessionHints(t *testing.T) {
	answer := "כן, הבוט מתחבר לערוצים הקיימים של העסק ועונה ללקוחות גם שם."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	ctx := context.Background()
	question := "האם אתם תומכים בוואטסאפ"

	sessA := session.New("s-ctx-a")
	sessA.Hints.BusinessType = "restaurant"
	sessA.Hints.UseCase = "reservations"
	resp, err := svc.HandleMessage(ctx, sessA, question)
	assert.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, 1, stub.calls)

	// A session with different hints got a different prompt; it must not be
	// served the hinted reply.
	sessB := session.New("s-ctx-b")
	resp, err = svc.HandleMessage(ctx, sessB, question)
	assert.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, 2, stub.calls)

	// Matching hints do share the cached reply.
	sessC := session.New("s-ctx-c")
	sessC.Hints.BusinessType = "restaurant"
	sessC.Hints.UseCase = "reservations"
	resp, err = svc.HandleMessage(ctx, sessC, question)
	assert.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, 2, stub.calls)
}

func TestProductFitOpensLeadAfterEngagement(t *testing.T) {
	answer := "בוט יכול לקבל הזמנות שולחן באתר שלכם ולענות על שאלות תפריט."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	sess := session.New("s-fit")
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, sess, "יש לי מסעדה ואני מחפש עזרה עם הזמנות")
	assert.NoError(t, err)
	assert.Equal(t, "restaurant", sess.Hints.BusinessType)
	assert.Equal(t, "reservations", sess.Hints.UseCase)
	assert.False(t, sess.LeadPending())

	resp, err := svc.HandleMessage(ctx, sess, "זה נשמע טוב")
	assert.NoError(t, err)
	assert.True(t, resp.LeadPending)
	assert.Equal(t, session.TriggerProductFit, sess.LeadTrigger)
	assert.Contains(t, resp.Response, "טלפון")
}

func TestPrimeWarmsCache(t *testing.T) {
	answer := "The basic plan starts at 290 NIS per month and covers the core features."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	ctx := context.Background()

	assert.NoError(t, svc.Prime(ctx, "how much does it cost?", "en"))
	assert.Equal(t, 1, stub.calls)

	resp, err := svc.HandleMessage(ctx, session.New("s-warm"), "what's the price?")
	assert.NoError(t, err)
	assert.True(t, resp.FromCache)
	assert.Equal(t, answer, resp.Response)
	assert.Equal(t, 1, stub.calls)
}

func TestInvalidateCacheDropsStoredResponses(t *testing.T) {
	answer := "המסלול הבסיסי מתחיל ב-290 שקלים לחודש וכולל את כל יכולות הליבה."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	ctx := context.Background()

	_, err := svc.HandleMessage(ctx, session.New("s-i1"), "כמה עולה השירות?")
	assert.NoError(t, err)
	assert.Equal(t, 1, stub.calls)

	removed := svc.InvalidateCache("")
	assert.Greater(t, removed, 0)

	resp, err := svc.HandleMessage(ctx, session.New("s-i2"), "כמה עולה השירות?")
	assert.NoError(t, err)
	assert.False(t, resp.FromCache)
	assert.Equal(t, 2, stub.calls)
}

func TestHandleMessageAppendsHistory(t *testing.T) {
	answer := "המערכת מתחברת לאתר קיים בלי פיתוח ומתחילה לענות ללקוחות מיד."
	stub := &stubLLM{replies: []string{answer}}
	svc, _ := newTestService(stub)
	sess := session.New("s-hist")

	_, err := svc.HandleMessage(context.Background(), sess, "ספר לי על ההטמעה באתר")

	assert.NoError(t, err)
	assert.Len(t, sess.History, 2)
	assert.Equal(t, session.RoleUser, sess.History[0].Role)
	assert.Equal(t, session.RoleAssistant, sess.History[1].Role)
}

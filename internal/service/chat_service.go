package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-bizchat-be/internal/config"
	"ai-bizchat-be/internal/dto"
	"ai-bizchat-be/internal/pkg/logger"
	"ai-bizchat-be/pkg/chat/cache"
	"ai-bizchat-be/pkg/chat/classify"
	"ai-bizchat-be/pkg/chat/intent"
	"ai-bizchat-be/pkg/chat/knowledge"
	"ai-bizchat-be/pkg/chat/lead"
	"ai-bizchat-be/pkg/chat/session"
	"ai-bizchat-be/pkg/chat/variation"
	"ai-bizchat-be/pkg/events"
	"ai-bizchat-be/pkg/llm"
)

const moduleChat = "chat_service"

// fastModelMaxRunes bounds which inputs are simple enough for the fast model.
const fastModelMaxRunes = 40

type IChatService interface {
	// HandleMessage runs one user message through the pipeline and mutates
	// the session. The caller persists the session afterwards.
	HandleMessage(ctx context.Context, sess *session.Session, userMessage string) (*dto.SendMessageResponse, error)

	// Prime answers a canned question and stores it in the response cache
	// without touching any session. Used by warm-up.
	Prime(ctx context.Context, question, language string) error

	// Stats exposes response-cache counters for the admin surface.
	Stats() cache.Stats

	// InvalidateCache drops cached responses whose key starts with prefix and
	// returns how many were removed. Used after knowledge re-seeding.
	InvalidateCache(prefix string) int
}

type chatService struct {
	cfg            config.ChatConfig
	log            logger.ILogger
	sessionManager *session.Manager
	resolver       *intent.Resolver
	retriever      *knowledge.Retriever
	respCache      *cache.Cache
	tracker        *variation.Tracker
	llmProvider    llm.LLMProvider
	pubSub         *gochannel.GoChannel
	fastModel      string
}

func NewChatService(
	cfg config.ChatConfig,
	log logger.ILogger,
	sessionManager *session.Manager,
	resolver *intent.Resolver,
	retriever *knowledge.Retriever,
	respCache *cache.Cache,
	tracker *variation.Tracker,
	llmProvider llm.LLMProvider,
	pubSub *gochannel.GoChannel,
	fastModel string,
) IChatService {
	return &chatService{
		cfg:            cfg,
		log:            log,
		sessionManager: sessionManager,
		resolver:       resolver,
		retriever:      retriever,
		respCache:      respCache,
		tracker:        tracker,
		llmProvider:    llmProvider,
		pubSub:         pubSub,
		fastModel:      fastModel,
	}
}

func (s *chatService) HandleMessage(ctx context.Context, sess *session.Session, userMessage string) (*dto.SendMessageResponse, error) {
	sess = s.sessionManager.Repair(sess)

	text := strings.TrimSpace(userMessage)
	lang := classify.DetectLanguage(text)
	sess.Language = lang

	s.observeHints(sess, text)

	reply, fromCache := s.route(ctx, sess, text, lang)

	sess.Append(session.RoleUser, text)
	sess.Append(session.RoleAssistant, reply)

	return &dto.SendMessageResponse{
		Response:      reply,
		SessionID:     sess.ID,
		Language:      lang,
		LeadPending:   sess.LeadPending(),
		LeadCollected: sess.LeadCollected(),
		FromCache:     fromCache,
	}, nil
}

// route picks the reply for one message. It never returns an error; every
// collaborator failure degrades to a composed fallback.
func (s *chatService) route(ctx context.Context, sess *session.Session, text, lang string) (reply string, fromCache bool) {
	if text == "" {
		return s.clarifyPrompt(lang), false
	}

	// Greetings short-circuit unless a purchase request rides along.
	if classify.IsGreeting(text) && !classify.HasBuyingIntent(text) {
		return s.greet(sess, text, lang), false
	}

	if sess.LeadPending() {
		if reply, handled := s.leadSubFlow(ctx, sess, text, lang); handled {
			return reply, false
		}
	}

	// A complete contact record is accepted whenever it shows up, asked for
	// or not. Collected leads stay collected; repeats are not re-published.
	if !sess.LeadCollected() && lead.Detect(text) {
		if sess.Stage == session.StageNew {
			sess.EnterLeadMode(session.TriggerProductFit)
		}
		return s.completeLead(ctx, sess, text, lang), false
	}

	if !sess.LeadCollected() && !sess.LeadPending() {
		if classify.HasBuyingIntent(text) {
			sess.EnterLeadMode(session.TriggerBuyingIntent)
			sess.LeadRequestCount = 1
			s.log.Info(moduleChat, "lead mode opened", map[string]interface{}{"session": sess.Key(), "trigger": session.TriggerBuyingIntent})
			return s.tracker.Select(sess.Key(), variation.CategoryLeadRequest, lang), false
		}
		if s.productFit(sess) {
			sess.EnterLeadMode(session.TriggerProductFit)
			sess.LeadRequestCount = 1
			s.log.Info(moduleChat, "lead mode opened", map[string]interface{}{"session": sess.Key(), "trigger": session.TriggerProductFit})
			return s.fitTransition(sess, lang) + "\n\n" + s.tracker.Select(sess.Key(), variation.CategoryLeadRequest, lang), false
		}
	}

	if classify.IsSmallTalk(text) {
		return s.tracker.Select(sess.Key(), variation.CategoryGeneralHelp, lang), false
	}

	if len([]rune(text)) < 3 {
		return s.clarifyPrompt(lang), false
	}

	fingerprint := contextFingerprint(sess.Hints)
	for _, key := range cache.KeysFor(text, lang, fingerprint) {
		if cached, ok := s.respCache.Get(key); ok {
			s.log.Debug(moduleChat, "cache hit", map[string]interface{}{"key": key})
			return cached, true
		}
	}

	reply, err := s.answer(ctx, sess, text, lang)
	if err != nil {
		s.log.Error(moduleChat, "generation failed, degrading to lead capture", map[string]interface{}{"error": err.Error()})
		return s.failureFallback(sess, lang), false
	}

	cluster := cache.ClusterFor(text)
	s.storeResponse(text, lang, fingerprint, cluster, reply)

	if cluster != "" {
		sess.Hints.FollowUpTopic = cluster
	}
	if s.tracker.ShouldAppendEnding(sess.Key(), reply) {
		reply = s.tracker.ApplyEnding(sess.Key(), lang, sess.Hints.FollowUpTopic, reply)
	}
	return reply, false
}

// leadSubFlow handles a message while contact details are pending. handled is
// false when the request cap is spent; collection is abandoned and the
// message falls through to normal processing.
func (s *chatService) leadSubFlow(ctx context.Context, sess *session.Session, text, lang string) (string, bool) {
	if lead.Detect(text) {
		return s.completeLead(ctx, sess, text, lang), true
	}
	if classify.IsLeadExit(text) {
		sess.ExitLeadMode()
		s.log.Info(moduleChat, "lead mode abandoned by user", map[string]interface{}{"session": sess.Key()})
		return s.tracker.Select(sess.Key(), variation.CategoryLeadExitAck, lang), true
	}
	if sess.LeadRequestCount < sess.RequestCap() {
		sess.LeadRequestCount++
		return s.tracker.Select(sess.Key(), variation.CategoryLeadRequest, lang), true
	}
	// Cap spent: abandon collection and answer the actual question.
	sess.ExitLeadMode()
	s.log.Info(moduleChat, "lead mode abandoned at request cap", map[string]interface{}{"session": sess.Key()})
	return "", false
}

// completeLead publishes the captured contact record exactly once and closes
// lead collection for good.
func (s *chatService) completeLead(ctx context.Context, sess *session.Session, text, lang string) string {
	rec := lead.Extract(text)
	sess.CompleteLead()

	evt := events.NewLeadCaptured(sess.Key(), rec.Name, rec.Phone, rec.Email, rec.RawText, lang)
	payload, err := json.Marshal(evt.Payload())
	if err == nil {
		err = s.pubSub.Publish(events.LeadCaptured, message.NewMessage(watermill.NewUUID(), payload))
	}
	if err != nil {
		// The conversation still confirms; delivery divergence is logged.
		s.log.Error(moduleChat, "failed to publish lead", map[string]interface{}{"error": err.Error(), "session": sess.Key()})
	} else {
		s.log.Info(moduleChat, "lead captured", map[string]interface{}{"session": sess.Key(), "name": rec.Name})
	}

	return s.tracker.Select(sess.Key(), variation.CategoryLeadConfirmation, lang)
}

// errNoUsableAnswer marks a generation that stayed vague through the widened
// retry with no canned intent response to fall back on. route converts it
// into the lead-capture fallback like any other generation failure.
var errNoUsableAnswer = errors.New("no usable answer after retry")

// answer runs retrieval and generation, with one broadened retry when the
// model produced a non-answer. A retry that is still vague falls back to the
// matched intent's canned response, or fails.
func (s *chatService) answer(ctx context.Context, sess *session.Session, text, lang string) (string, error) {
	match := s.resolver.Resolve(ctx, text, lang)
	intentName := ""
	if match != nil {
		intentName = match.Intent.Name
	}

	kctx := s.retriever.Fetch(ctx, text, intentName, lang)
	reply, err := s.generate(ctx, sess, text, lang, kctx.Text)
	if err != nil {
		return "", err
	}

	if classify.IsVagueAnswer(reply) {
		s.log.Warn(moduleChat, "vague answer, retrying with widened context", map[string]interface{}{"session": sess.Key()})
		wide := s.retriever.Fetch(ctx, text, "", lang)
		retry, rerr := s.generate(ctx, sess, text, lang, wide.Text)
		if rerr == nil && !classify.IsVagueAnswer(retry) {
			return retry, nil
		}
		if match != nil && match.Intent.Response != "" {
			return match.Intent.Response, nil
		}
		return "", errNoUsableAnswer
	}
	return reply, nil
}

func (s *chatService) generate(ctx context.Context, sess *session.Session, text, lang, knowledgeText string) (string, error) {
	msgs := []llm.Message{{Role: "system", Content: s.systemPrompt(sess, lang, knowledgeText)}}
	for _, turn := range sess.Recent(s.cfg.HistoryWindow) {
		msgs = append(msgs, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	msgs = append(msgs, llm.Message{Role: session.RoleUser, Content: text})

	opts := []llm.Option{llm.WithTemperature(0.4)}
	if s.fastModel != "" && len([]rune(text)) < fastModelMaxRunes && cache.ClusterFor(text) == "" {
		opts = append(opts, llm.WithModel(s.fastModel))
	}

	reply, err := s.llmProvider.Chat(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

func (s *chatService) systemPrompt(sess *session.Session, lang, knowledgeText string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the assistant of %s. Answer only from the provided business knowledge.", s.cfg.BotName, s.cfg.CompanyName)
	if lang == "he" {
		b.WriteString(" Respond in Hebrew.")
	} else {
		b.WriteString(" Respond in English.")
	}
	b.WriteString(" Keep answers short and concrete. Never invent prices or features.")

	if sess.Hints.BusinessType != "" {
		fmt.Fprintf(&b, " The visitor runs a %s business.", sess.Hints.BusinessType)
	}
	if sess.Hints.UseCase != "" {
		fmt.Fprintf(&b, " They are interested in %s.", sess.Hints.UseCase)
	}

	if knowledgeText != "" {
		b.WriteString("\n\nBusiness knowledge:\n")
		b.WriteString(knowledgeText)
	}
	return b.String()
}

// observeHints records business context signals. First detection wins; a
// visitor rarely changes industries mid-conversation.
func (s *chatService) observeHints(sess *session.Session, text string) {
	if sess.Hints.BusinessType == "" {
		if bt := classify.DetectBusinessType(text); bt != "" {
			sess.Hints.BusinessType = bt
			s.log.Debug(moduleChat, "business type detected", map[string]interface{}{"type": bt})
		}
	}
	if sess.Hints.UseCase == "" {
		if uc := classify.DetectUseCase(text); uc != "" {
			sess.Hints.UseCase = uc
		}
	}
	if !sess.Hints.PositiveEngagement && classify.IsPositiveEngagement(text) {
		sess.Hints.PositiveEngagement = true
	}
}

// productFit decides whether the accumulated hints justify proactively asking
// for contact details.
func (s *chatService) productFit(sess *session.Session) bool {
	h := sess.Hints
	return h.PositiveEngagement && (h.UseCase != "" || h.BusinessType != "")
}

func (s *chatService) fitTransition(sess *session.Session, lang string) string {
	if lang == "he" {
		return "נשמע שבוט כזה יכול לעזור לעסק שלך."
	}
	return "Sounds like a bot like this could really help your business."
}

func (s *chatService) greet(sess *session.Session, text, lang string) string {
	var b strings.Builder
	if lang == "he" {
		b.WriteString("שלום! ")
	} else {
		b.WriteString("Hello! ")
	}
	if !sess.IntroGiven {
		if lang == "he" {
			fmt.Fprintf(&b, "אני %s, העוזרת של %s. ", s.cfg.BotName, s.cfg.CompanyName)
			b.WriteString("אפשר לשאול אותי על השירות, המחירים ואיך הכל עובד.")
		} else {
			fmt.Fprintf(&b, "I'm %s, the assistant of %s. ", s.cfg.BotName, s.cfg.CompanyName)
			b.WriteString("Ask me about the service, pricing and how it all works.")
		}
		sess.IntroGiven = true
	} else {
		b.WriteString(s.tracker.Select(sess.Key(), variation.CategoryGeneralHelp, lang))
	}
	sess.Greeted = true
	return strings.TrimSpace(b.String())
}

func (s *chatService) clarifyPrompt(lang string) string {
	if lang == "he" {
		return "לא בטוחה שהבנתי, אפשר לפרט קצת יותר?"
	}
	return "I'm not sure I follow, could you say a bit more?"
}

// failureFallback apologizes and pivots to lead capture so an infrastructure
// problem still leaves the business a way to follow up.
func (s *chatService) failureFallback(sess *session.Session, lang string) string {
	apology := "Sorry, I'm having trouble answering right now."
	if lang == "he" {
		apology = "סליחה, אני מתקשה לענות כרגע."
	}
	if sess.LeadCollected() {
		return apology
	}
	sess.EnterLeadMode(session.TriggerFallback)
	sess.LeadRequestCount = 1
	return apology + "\n\n" + s.tracker.Select(sess.Key(), variation.CategoryLeadRequest, lang)
}

// contextFingerprint keys exact-text cache entries by the session hints that
// shaped the prompt, so a reply tailored to one visitor's business is never
// served to a conversation with different hints.
func contextFingerprint(h session.Hints) string {
	return h.BusinessType + "|" + h.UseCase
}

// storeResponse writes the reply under every derived key and reserves cache
// slots for the clusters the visitor is likely to ask about next.
func (s *chatService) storeResponse(text, lang, fingerprint, cluster, reply string) {
	for _, key := range cache.KeysFor(text, lang, fingerprint) {
		s.respCache.Set(key, reply)
	}
	if cluster == "" {
		return
	}
	for _, related := range cache.RelatedClusters(cluster) {
		key := cache.ClusterKey(related, lang)
		if !s.respCache.Has(key) {
			s.respCache.SetPlaceholder(key, s.cfg.CacheTTL)
		}
	}
}

// Prime pushes a canned question through resolution, retrieval and generation
// and caches the result, overwriting any warming placeholder.
func (s *chatService) Prime(ctx context.Context, question, language string) error {
	throwaway := session.New("warmup")
	reply, err := s.answer(ctx, throwaway, question, language)
	if err != nil {
		return fmt.Errorf("prime %q: %w", question, err)
	}
	s.storeResponse(question, language, contextFingerprint(session.Hints{}), cache.ClusterFor(question), reply)
	return nil
}

func (s *chatService) Stats() cache.Stats {
	return s.respCache.Stats()
}

func (s *chatService) InvalidateCache(prefix string) int {
	removed := s.respCache.Invalidate(prefix)
	s.log.Info(moduleChat, "cache invalidated", map[string]interface{}{"prefix": prefix, "removed": removed})
	return removed
}

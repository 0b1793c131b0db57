package session

import (
	"crypto/md5"
	"fmt"
	"log"
)

// Chat roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stage is the lead-collection stage of a conversation. Keeping it a single
// value makes "collected and still pending" unrepresentable.
type Stage string

const (
	StageNew           Stage = "NEW"
	StageLeadPending   Stage = "LEAD_PENDING"
	StageLeadCollected Stage = "LEAD_COLLECTED"
)

// Lead-mode entry reasons. The request cap depends on why collection started.
const (
	TriggerBuyingIntent = "buying_intent"
	TriggerProductFit   = "product_fit"
	TriggerFallback     = "fallback"
)

// Turn is one message in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Hints is the open set of detected conversation context, separate from the
// stage so new detectors never multiply flag combinations.
type Hints struct {
	BusinessType       string `json:"business_type,omitempty"`
	UseCase            string `json:"use_case,omitempty"`
	PositiveEngagement bool   `json:"positive_engagement,omitempty"`
	FollowUpTopic      string `json:"follow_up_topic,omitempty"`
}

// Session is the per-conversation state. It is owned by the HTTP layer and
// handed to the chat service by reference for the duration of one request;
// the service never locks it.
type Session struct {
	ID               string `json:"id"`
	Greeted          bool   `json:"greeted"`
	IntroGiven       bool   `json:"intro_given"`
	Stage            Stage  `json:"stage"`
	LeadTrigger      string `json:"lead_trigger,omitempty"`
	LeadRequestCount int    `json:"lead_request_count,omitempty"`
	History          []Turn `json:"history"`
	Hints            Hints  `json:"hints"`
	Language         string `json:"language,omitempty"`
}

func New(id string) *Session {
	return &Session{
		ID:      id,
		Stage:   StageNew,
		History: []Turn{},
	}
}

// Key returns a stable identifier for cache and variation tracking. Sessions
// restored from older payloads may lack an ID, so fall back to a digest of
// the history.
func (s *Session) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprint(s.History))))[:8]
}

func (s *Session) Append(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

// Recent returns the last n turns for prompt building, so long conversations
// cannot overflow the model context.
func (s *Session) Recent(n int) []Turn {
	if len(s.History) <= n {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

func (s *Session) LeadPending() bool   { return s.Stage == StageLeadPending }
func (s *Session) LeadCollected() bool { return s.Stage == StageLeadCollected }

// EnterLeadMode starts lead collection. A collected lead is final: the stage
// never moves back to pending.
func (s *Session) EnterLeadMode(trigger string) {
	if s.Stage == StageLeadCollected {
		return
	}
	if s.Stage != StageLeadPending {
		s.Stage = StageLeadPending
		s.LeadTrigger = trigger
		s.LeadRequestCount = 0
	}
}

func (s *Session) ExitLeadMode() {
	if s.Stage == StageLeadPending {
		s.Stage = StageNew
	}
	s.LeadTrigger = ""
	s.LeadRequestCount = 0
}

func (s *Session) CompleteLead() {
	s.Stage = StageLeadCollected
	s.LeadTrigger = ""
	s.LeadRequestCount = 0
}

// RequestCap is how many times we ask for contact details before giving up.
// A user who expressed buying intent gets one extra nudge.
func (s *Session) RequestCap() int {
	if s.LeadTrigger == TriggerBuyingIntent {
		return 3
	}
	return 2
}

// Manager repairs session state before each message so downstream components
// can assume consistency.
type Manager struct {
	logger *log.Logger
}

func NewManager(logger *log.Logger) *Manager {
	return &Manager{logger: logger}
}

// Repair applies idempotent fix-up rules and logs each correction. It never
// fails; the returned session is always consistent. Sessions round-trip
// through JSON in external stores, so garbage values are possible.
func (m *Manager) Repair(s *Session) *Session {
	switch s.Stage {
	case StageNew, StageLeadPending, StageLeadCollected:
	case "":
		s.Stage = StageNew
	default:
		m.logger.Printf("[SESSION_FIX] Unknown stage %q - resetting to NEW", s.Stage)
		s.Stage = StageNew
	}

	if s.Stage != StageLeadPending && s.LeadRequestCount != 0 {
		m.logger.Printf("[SESSION_FIX] lead_request_count=%d without pending lead - clearing", s.LeadRequestCount)
		s.LeadRequestCount = 0
	}
	if s.Stage != StageLeadPending && s.LeadTrigger != "" {
		m.logger.Printf("[SESSION_FIX] lead_trigger=%q without pending lead - clearing", s.LeadTrigger)
		s.LeadTrigger = ""
	}

	if s.History == nil {
		m.logger.Printf("[SESSION_FIX] history is not a sequence - resetting")
		s.History = []Turn{}
	}

	return s
}

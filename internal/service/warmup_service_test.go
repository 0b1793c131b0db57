package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ai-bizchat-be/internal/dto"
	"ai-bizchat-be/pkg/chat/cache"
	"ai-bizchat-be/pkg/chat/session"
)

// primeRecorder implements IChatService and records Prime calls.
type primeRecorder struct {
	mu     sync.Mutex
	primed map[string]string
}

func newPrimeRecorder() *primeRecorder {
	return &primeRecorder{primed: make(map[string]string)}
}

func (p *primeRecorder) HandleMessage(ctx context.Context, sess *session.Session, userMessage string) (*dto.SendMessageResponse, error) {
	return &dto.SendMessageResponse{}, nil
}

func (p *primeRecorder) Prime(ctx context.Context, question, language string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.primed[question] = language
	return nil
}

func (p *primeRecorder) Stats() cache.Stats { return cache.Stats{} }

func (p *primeRecorder) InvalidateCache(prefix string) int { return 0 }

func TestWarmupRunPrimesEveryClusterQuestion(t *testing.T) {
	chat := newPrimeRecorder()
	w := NewWarmupService(chat, nopLogger{}, 3, time.Hour)

	expected := len(cache.WarmupQuestions("he")) + len(cache.WarmupQuestions("en"))
	enqueued := w.Run(context.Background())

	assert.Equal(t, expected, enqueued)
	chat.mu.Lock()
	defer chat.mu.Unlock()
	assert.Len(t, chat.primed, expected)
}

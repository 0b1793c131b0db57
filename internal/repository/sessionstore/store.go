package sessionstore

import (
	"context"

	"ai-bizchat-be/pkg/chat/session"
)

// Store persists conversation sessions between requests. The HTTP layer owns
// one session per cookie and serializes access per conversation; stores only
// need to be safe for concurrent use across different sessions.
type Store interface {
	Get(ctx context.Context, id string) (*session.Session, bool, error)
	Save(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, id string) error
}

package sessionstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"ai-bizchat-be/pkg/chat/session"
)

// MemoryStore keeps sessions in process memory with a sliding TTL. The
// default for single-instance deployments.
type MemoryStore struct {
	cache *gocache.Cache
}

var _ Store = &MemoryStore{}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*session.Session, bool, error) {
	if x, found := m.cache.Get(id); found {
		return x.(*session.Session), true, nil
	}
	return nil, false, nil
}

func (m *MemoryStore) Save(_ context.Context, s *session.Session) error {
	m.cache.Set(s.ID, s, gocache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

package dto

// SendMessageRequest is the body of POST /api/chat/v1/message.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// SendMessageResponse carries the assistant's reply plus flags the widget
// uses to adjust its UI (e.g. show a contact form hint in lead mode).
type SendMessageResponse struct {
	Response      string `json:"response"`
	SessionID     string `json:"session_id"`
	Language      string `json:"language"`
	LeadPending   bool   `json:"lead_pending"`
	LeadCollected bool   `json:"lead_collected"`
	FromCache     bool   `json:"from_cache"`
}

// StatsResponse is the admin view of cache effectiveness.
type StatsResponse struct {
	CacheHits        int     `json:"cache_hits"`
	CacheMisses      int     `json:"cache_misses"`
	CacheEvictions   int     `json:"cache_evictions"`
	CacheExpirations int     `json:"cache_expirations"`
	CacheSize        int     `json:"cache_size"`
	CacheCapacity    int     `json:"cache_capacity"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
}

// WarmupResponse reports a manually triggered warm-up run.
type WarmupResponse struct {
	Enqueued int `json:"enqueued"`
}

// InvalidateCacheRequest drops cached responses by key prefix. An empty
// prefix clears the whole cache.
type InvalidateCacheRequest struct {
	Prefix string `json:"prefix"`
}

type InvalidateCacheResponse struct {
	Removed int `json:"removed"`
}

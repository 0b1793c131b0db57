package variation

import (
	"math/rand"
	"strings"
	"sync"
)

const maxEndingLength = 400

// Tracker hands out phrases without repeating one inside a session until its
// pool is exhausted. State is per session key, per category, per language.
// Safe for concurrent use.
type Tracker struct {
	mu sync.Mutex
	// used[sessionKey][category|language] -> phrases already handed out
	used          map[string]map[string]map[string]bool
	responseCount map[string]int
	rng           *rand.Rand
}

func NewTracker(seed int64) *Tracker {
	return &Tracker{
		used:          make(map[string]map[string]map[string]bool),
		responseCount: make(map[string]int),
		rng:           rand.New(rand.NewSource(seed)),
	}
}

// Select returns an unused phrase from the category's pool for language.
// When every phrase was used the set resets and the pool starts over. The
// pick is recorded before it is returned, so a crash between selection and
// delivery burns a phrase rather than repeating one.
func (t *Tracker) Select(sessionKey, category, language string) string {
	pool := pools[category][language]
	if len(pool) == 0 {
		pool = pools[category]["en"]
	}
	if len(pool) == 0 {
		return ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	set := t.usedSet(sessionKey, category, language)

	var unused []string
	for _, p := range pool {
		if !set[p] {
			unused = append(unused, p)
		}
	}
	if len(unused) == 0 {
		for k := range set {
			delete(set, k)
		}
		unused = pool
	}

	pick := unused[t.rng.Intn(len(unused))]
	set[pick] = true
	return pick
}

func (t *Tracker) usedSet(sessionKey, category, language string) map[string]bool {
	byCat := t.used[sessionKey]
	if byCat == nil {
		byCat = make(map[string]map[string]bool)
		t.used[sessionKey] = byCat
	}
	key := category + "|" + language
	set := byCat[key]
	if set == nil {
		set = make(map[string]bool)
		byCat[key] = set
	}
	return set
}

// ShouldAppendEnding decides whether to attach a conversational ending to
// response. Long answers carry enough weight alone, every third response
// stays bare to avoid a nagging rhythm, and answers that already end with a
// question only rarely get another hook. Each call counts one response.
func (t *Tracker) ShouldAppendEnding(sessionKey, response string) bool {
	t.mu.Lock()
	t.responseCount[sessionKey]++
	count := t.responseCount[sessionKey]
	roll := t.rng.Float64()
	t.mu.Unlock()

	if len([]rune(response)) > maxEndingLength {
		return false
	}
	if count%3 == 0 {
		return false
	}
	if strings.HasSuffix(strings.TrimSpace(response), "?") {
		return roll < 0.3
	}
	return true
}

// ApplyEnding appends a varied ending for the session's follow-up topic.
func (t *Tracker) ApplyEnding(sessionKey, language, followUpTopic, response string) string {
	ending := t.Select(sessionKey, EndingCategory(followUpTopic), language)
	if ending == "" {
		return response
	}
	return strings.TrimRight(response, " \n") + "\n\n" + ending
}

// Reset drops all variation state for a session.
func (t *Tracker) Reset(sessionKey string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.used, sessionKey)
	delete(t.responseCount, sessionKey)
}

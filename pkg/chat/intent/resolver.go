package intent

import (
	"context"
	"log"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"ai-bizchat-be/pkg/vectorstore"
)

// Defaults mirror the tuned production values.
const (
	DefaultFuzzyThreshold  = 70
	DefaultStrictDistance  = 1.2
	DefaultRelaxedDistance = 1.4

	metadataIntentKey   = "intent"
	metadataLanguageKey = "language"
)

// Intent is one configured intent: trigger phrases for the lexical matcher
// and a canned response used when the knowledge base has nothing better.
type Intent struct {
	Name     string   `json:"name"`
	Language string   `json:"language"`
	Triggers []string `json:"triggers"`
	Response string   `json:"response"`
	// Default marks catch-all intents like "faq"; they lose tie-breaks to
	// specific semantic matches.
	Default bool `json:"default"`
}

// Match is a resolved intent with its provenance.
type Match struct {
	Intent *Intent
	// Source is "fuzzy", "semantic" or "semantic_relaxed".
	Source string
	// Score is the partial ratio for fuzzy matches and the cosine distance
	// for semantic ones.
	Score float64
}

// Resolver combines a lexical and a semantic matcher with a fixed precedence:
// a specific lexical hit outranks any semantic hit, a strict semantic hit
// outranks a catch-all lexical one, and a relaxed semantic hit is the last
// resort. The semantic matcher only runs when no specific lexical hit exists.
type Resolver struct {
	intents []Intent
	byName  map[string]*Intent
	store   vectorstore.Store
	logger  *log.Logger

	fuzzyThreshold  int
	strictDistance  float64
	relaxedDistance float64
}

func NewResolver(intents []Intent, store vectorstore.Store, logger *log.Logger) *Resolver {
	r := &Resolver{
		intents:         intents,
		byName:          make(map[string]*Intent, len(intents)),
		store:           store,
		logger:          logger,
		fuzzyThreshold:  DefaultFuzzyThreshold,
		strictDistance:  DefaultStrictDistance,
		relaxedDistance: DefaultRelaxedDistance,
	}
	for i := range r.intents {
		r.byName[r.intents[i].Name] = &r.intents[i]
	}
	return r
}

// Resolve returns the best intent for text, or nil when neither matcher
// produces a usable candidate. A semantic failure degrades to lexical-only
// resolution; it never fails the message.
func (r *Resolver) Resolve(ctx context.Context, text, language string) *Match {
	fuzzyHit, fuzzyDefault := r.lexical(text, language)
	if fuzzyHit != nil {
		// A specific lexical hit wins every tie-break; skip the vector store.
		r.logger.Printf("[INTENT] fuzzy match %q (ratio %.0f)", fuzzyHit.Intent.Name, fuzzyHit.Score)
		return fuzzyHit
	}

	semStrict, semRelaxed := r.semantic(ctx, text, language)

	switch {
	case semStrict != nil:
		r.logger.Printf("[INTENT] semantic match %q (distance %.2f)", semStrict.Intent.Name, semStrict.Score)
		return semStrict
	case fuzzyDefault != nil:
		r.logger.Printf("[INTENT] default fuzzy match %q (ratio %.0f)", fuzzyDefault.Intent.Name, fuzzyDefault.Score)
		return fuzzyDefault
	case semRelaxed != nil:
		r.logger.Printf("[INTENT] relaxed semantic match %q (distance %.2f)", semRelaxed.Intent.Name, semRelaxed.Score)
		return semRelaxed
	default:
		return nil
	}
}

// lexical returns the best above-threshold partial-ratio match, split into
// specific and catch-all candidates.
func (r *Resolver) lexical(text, language string) (specific, catchAll *Match) {
	lower := strings.ToLower(text)
	for i := range r.intents {
		in := &r.intents[i]
		if in.Language != "" && in.Language != language {
			continue
		}
		best := 0
		for _, trig := range in.Triggers {
			if ratio := fuzzy.PartialRatio(lower, strings.ToLower(trig)); ratio > best {
				best = ratio
			}
		}
		if best < r.fuzzyThreshold {
			continue
		}
		m := &Match{Intent: in, Source: "fuzzy", Score: float64(best)}
		if in.Default {
			if catchAll == nil || m.Score > catchAll.Score {
				catchAll = m
			}
		} else if specific == nil || m.Score > specific.Score {
			specific = m
		}
	}
	return specific, catchAll
}

// semantic runs a 1-NN query against the intents collection. The first query
// is language-filtered with the strict threshold; when it yields nothing
// usable, one unfiltered retry is allowed at the relaxed threshold.
func (r *Resolver) semantic(ctx context.Context, text, language string) (strict, relaxed *Match) {
	hit := r.nearestIntent(ctx, text, map[string]string{metadataLanguageKey: language})
	if hit != nil && hit.Score < r.strictDistance {
		return hit, nil
	}
	if hit == nil {
		hit = r.nearestIntent(ctx, text, nil)
	}
	if hit != nil && hit.Score < r.relaxedDistance {
		hit.Source = "semantic_relaxed"
		return nil, hit
	}
	return nil, nil
}

func (r *Resolver) nearestIntent(ctx context.Context, text string, filter map[string]string) *Match {
	results, err := r.store.Query(ctx, text, filter, 1)
	if err != nil {
		r.logger.Printf("[INTENT] semantic matcher unavailable: %v", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}
	name := results[0].Metadata[metadataIntentKey]
	in, ok := r.byName[name]
	if !ok {
		r.logger.Printf("[INTENT] stored intent %q has no configuration", name)
		return nil
	}
	return &Match{Intent: in, Source: "semantic", Score: results[0].Distance}
}

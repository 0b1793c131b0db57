package knowledge

import (
	"context"
	"log"
	"strings"

	"ai-bizchat-be/pkg/vectorstore"
)

const (
	// Combined context shorter than this is noise, not grounding.
	minUsableChars = 100
	maxDocs        = 3
	docSeparator   = "\n\n---\n\n"

	widenedTopK = 9
)

// Context is the grounding text assembled for one message.
type Context struct {
	Text string
	// Strategy names the stage that produced the text: "intent_metadata",
	// "language_filtered", "widened" or "none".
	Strategy string
	Docs     int
}

func (c Context) Empty() bool { return c.Text == "" }

// Retriever assembles LLM grounding context from the knowledge collection.
// Strategies run in order from most to least precise and the first one that
// yields enough text wins; a stage that errors is skipped, never fatal.
type Retriever struct {
	store  vectorstore.Store
	logger *log.Logger
}

func NewRetriever(store vectorstore.Store, logger *log.Logger) *Retriever {
	return &Retriever{store: store, logger: logger}
}

// Fetch returns grounding context for query. intentName may be empty when no
// intent was resolved; language narrows semantic search to same-language
// documents before widening.
func (r *Retriever) Fetch(ctx context.Context, query, intentName, language string) Context {
	if intentName != "" {
		results, err := r.store.GetByMetadata(ctx, map[string]string{"intent": intentName})
		if err != nil {
			r.logger.Printf("[RETRIEVE] intent metadata lookup failed: %v", err)
		} else if c, ok := r.assemble(results, "intent_metadata"); ok {
			return c
		}
	}

	results, err := r.store.Query(ctx, query, map[string]string{"language": language}, maxDocs)
	if err != nil {
		r.logger.Printf("[RETRIEVE] language-filtered search failed: %v", err)
	} else if c, ok := r.assemble(results, "language_filtered"); ok {
		return c
	}

	results, err = r.store.Query(ctx, query, nil, widenedTopK)
	if err != nil {
		r.logger.Printf("[RETRIEVE] widened search failed: %v", err)
	} else if c, ok := r.assemble(filterLanguage(results, language), "widened"); ok {
		return c
	}

	r.logger.Printf("[RETRIEVE] no usable context for query")
	return Context{Strategy: "none"}
}

// assemble joins up to maxDocs non-empty documents and reports whether the
// combined text clears the usability bar.
func (r *Retriever) assemble(results []vectorstore.Result, strategy string) (Context, bool) {
	var docs []string
	total := 0
	for _, res := range results {
		doc := strings.TrimSpace(res.Document)
		if doc == "" {
			continue
		}
		docs = append(docs, doc)
		total += len([]rune(doc))
		if len(docs) == maxDocs {
			break
		}
	}
	if total <= minUsableChars {
		return Context{}, false
	}
	return Context{
		Text:     strings.Join(docs, docSeparator),
		Strategy: strategy,
		Docs:     len(docs),
	}, true
}

// filterLanguage keeps documents in the requested language. Documents without
// a language tag are language-neutral and always kept.
func filterLanguage(results []vectorstore.Result, language string) []vectorstore.Result {
	var out []vectorstore.Result
	for _, res := range results {
		if lang := res.Metadata["language"]; lang == "" || lang == language {
			out = append(out, res)
		}
	}
	return out
}

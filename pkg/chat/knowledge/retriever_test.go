package knowledge

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"ai-bizchat-be/pkg/vectorstore"
)

const longDoc = "הבוט שלנו עונה ללקוחות מסביב לשעון, מסנן פניות לא רלוונטיות ומעביר לידים חמים ישירות לבעל העסק בזמן אמת, כולל דוחות שבועיים."

type scriptedStore struct {
	byMetadata []vectorstore.Result
	byQuery    map[string][]vectorstore.Result // keyed by language filter value, "" for none
	err        error

	calls []string
}

func (s *scriptedStore) Query(_ context.Context, _ string, filter map[string]string, _ int) ([]vectorstore.Result, error) {
	s.calls = append(s.calls, "query:"+filter["language"])
	if s.err != nil {
		return nil, s.err
	}
	return s.byQuery[filter["language"]], nil
}

func (s *scriptedStore) GetByMetadata(_ context.Context, filter map[string]string) ([]vectorstore.Result, error) {
	s.calls = append(s.calls, "metadata:"+filter["intent"])
	if s.err != nil {
		return nil, s.err
	}
	return s.byMetadata, nil
}

func newTestRetriever(store vectorstore.Store) *Retriever {
	return NewRetriever(store, log.New(io.Discard, "", 0))
}

func TestIntentMetadataWinsFirst(t *testing.T) {
	store := &scriptedStore{
		byMetadata: []vectorstore.Result{{Document: longDoc}},
		byQuery:    map[string][]vectorstore.Result{"he": {{Document: longDoc}}},
	}
	r := newTestRetriever(store)

	c := r.Fetch(context.Background(), "מה הבוט עושה?", "features", "he")
	if c.Strategy != "intent_metadata" {
		t.Fatalf("strategy = %q", c.Strategy)
	}
	if len(store.calls) != 1 {
		t.Fatalf("later stages ran: %v", store.calls)
	}
}

func TestFallsThroughOnThinContext(t *testing.T) {
	store := &scriptedStore{
		byMetadata: []vectorstore.Result{{Document: "קצר מדי"}},
		byQuery:    map[string][]vectorstore.Result{"he": {{Document: longDoc}}},
	}
	r := newTestRetriever(store)

	c := r.Fetch(context.Background(), "מה הבוט עושה?", "features", "he")
	if c.Strategy != "language_filtered" {
		t.Fatalf("strategy = %q", c.Strategy)
	}
}

func TestWidenedSearchPostFiltersLanguage(t *testing.T) {
	store := &scriptedStore{
		byQuery: map[string][]vectorstore.Result{
			"": {
				{Document: longDoc, Metadata: map[string]string{"language": "en"}},
				{Document: longDoc, Metadata: map[string]string{"language": "he"}},
				{Document: longDoc, Metadata: map[string]string{}},
			},
		},
	}
	r := newTestRetriever(store)

	c := r.Fetch(context.Background(), "מה הבוט עושה?", "", "he")
	if c.Strategy != "widened" {
		t.Fatalf("strategy = %q", c.Strategy)
	}
	if c.Docs != 2 {
		t.Fatalf("docs = %d, want 2 (he + untagged)", c.Docs)
	}
}

func TestStageOrder(t *testing.T) {
	store := &scriptedStore{}
	r := newTestRetriever(store)

	c := r.Fetch(context.Background(), "שאלה", "pricing", "he")
	if !c.Empty() || c.Strategy != "none" {
		t.Fatalf("context = %+v, want empty", c)
	}
	want := []string{"metadata:pricing", "query:he", "query:"}
	if strings.Join(store.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("stage order = %v, want %v", store.calls, want)
	}
}

func TestStoreErrorsAreNonFatal(t *testing.T) {
	r := newTestRetriever(&scriptedStore{err: errors.New("db down")})

	c := r.Fetch(context.Background(), "שאלה", "pricing", "he")
	if !c.Empty() {
		t.Fatalf("context = %+v, want empty", c)
	}
}

func TestDocCap(t *testing.T) {
	var many []vectorstore.Result
	for i := 0; i < 9; i++ {
		many = append(many, vectorstore.Result{Document: longDoc})
	}
	store := &scriptedStore{byQuery: map[string][]vectorstore.Result{"he": many}}
	r := newTestRetriever(store)

	c := r.Fetch(context.Background(), "שאלה", "", "he")
	if c.Docs != 3 {
		t.Fatalf("docs = %d, want cap 3", c.Docs)
	}
	if got := strings.Count(c.Text, "---"); got != 2 {
		t.Fatalf("separators = %d, want 2", got)
	}
}

package variation

import (
	"strings"
	"testing"
)

func TestSelectDoesNotRepeatUntilExhausted(t *testing.T) {
	tr := NewTracker(1)
	pool := pools[CategoryGeneralHelp]["he"]

	seen := make(map[string]bool)
	for i := 0; i < len(pool); i++ {
		p := tr.Select("s1", CategoryGeneralHelp, "he")
		if seen[p] {
			t.Fatalf("phrase %q repeated before pool exhausted", p)
		}
		seen[p] = true
	}

	// Pool exhausted, the next pick comes from a fresh cycle.
	next := tr.Select("s1", CategoryGeneralHelp, "he")
	if !seen[next] {
		t.Fatalf("post-reset pick %q not from the pool", next)
	}
}

func TestSelectIsolatedPerSession(t *testing.T) {
	tr := NewTracker(2)
	pool := pools[CategoryLeadConfirmation]["en"]

	for i := 0; i < len(pool); i++ {
		tr.Select("a", CategoryLeadConfirmation, "en")
	}

	// Session b still has its full pool.
	seen := make(map[string]bool)
	for i := 0; i < len(pool); i++ {
		p := tr.Select("b", CategoryLeadConfirmation, "en")
		if seen[p] {
			t.Fatalf("session b repeated %q", p)
		}
		seen[p] = true
	}
}

func TestSelectFallsBackToEnglish(t *testing.T) {
	tr := NewTracker(3)
	if p := tr.Select("s", CategoryGeneralHelp, "fr"); p == "" {
		t.Fatal("no fallback pool used for unknown language")
	}
}

func TestShouldAppendEndingLongAnswer(t *testing.T) {
	tr := NewTracker(4)
	long := strings.Repeat("א", 401)
	if tr.ShouldAppendEnding("s", long) {
		t.Error("ending appended to a long answer")
	}
}

func TestShouldAppendEndingEveryThirdSuppressed(t *testing.T) {
	tr := NewTracker(5)
	for i := 1; i <= 9; i++ {
		got := tr.ShouldAppendEnding("s", "short answer")
		if i%3 == 0 && got {
			t.Errorf("response %d: ending not suppressed", i)
		}
	}
}

func TestShouldAppendEndingQuestionFinalIsRare(t *testing.T) {
	tr := NewTracker(6)
	appended := 0
	total := 0
	for i := 1; i <= 300; i++ {
		got := tr.ShouldAppendEnding("s", "want to know more?")
		if i%3 == 0 {
			continue
		}
		total++
		if got {
			appended++
		}
	}
	rate := float64(appended) / float64(total)
	if rate > 0.5 {
		t.Errorf("question-final answers got endings %.0f%% of the time", rate*100)
	}
}

func TestApplyEnding(t *testing.T) {
	tr := NewTracker(7)
	out := tr.ApplyEnding("s", "he", "pricing", "הבוט עונה ללקוחות שלך.")
	if !strings.Contains(out, "הבוט עונה ללקוחות שלך.") {
		t.Fatal("original answer lost")
	}
	if out == "הבוט עונה ללקוחות שלך." {
		t.Fatal("no ending appended")
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker(8)
	first := tr.Select("s", CategoryCasualEnding, "en")
	tr.Reset("s")

	pool := pools[CategoryCasualEnding]["en"]
	seen := make(map[string]bool)
	for i := 0; i < len(pool); i++ {
		seen[tr.Select("s", CategoryCasualEnding, "en")] = true
	}
	if !seen[first] {
		t.Error("reset did not clear the used set")
	}
}

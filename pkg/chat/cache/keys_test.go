package cache

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  How MUCH does it cost??  ", "how much does it cost"},
		{"כמה זה עולה?!", "כמה זה עולה"},
		{"a,b.c", "abc"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParaphraseSharesKey(t *testing.T) {
	a := KeysFor("How much does it cost?", "en", "")
	b := KeysFor("how much does it COST", "en", "")

	if !overlap(a, b) {
		t.Errorf("paraphrases share no key:\n%v\n%v", a, b)
	}
}

func TestClusterKeyBridgesPhrasings(t *testing.T) {
	a := KeysFor("מה המחיר של השירות?", "he", "")
	b := KeysFor("כמה עולה בוט כזה?", "he", "")

	if !overlap(a, b) {
		t.Errorf("same-cluster questions share no key:\n%v\n%v", a, b)
	}
}

func TestLanguagesDoNotCollide(t *testing.T) {
	if overlap(KeysFor("pricing", "en", ""), KeysFor("pricing", "he", "")) {
		t.Error("same text in different languages shares a key")
	}
}

func TestFingerprintScopesTextKeys(t *testing.T) {
	text := "do you integrate with my site?"
	a := KeysFor(text, "en", "restaurant|reservations")
	b := KeysFor(text, "en", "|")

	if overlap(a, b) {
		t.Errorf("different fingerprints share a text key:\n%v\n%v", a, b)
	}

	// Cluster keys stay shared regardless of fingerprint.
	c := KeysFor("what's the price?", "en", "restaurant|reservations")
	d := KeysFor("how much does it cost?", "en", "|")
	if !overlap(c, d) {
		t.Errorf("same-cluster questions lost their shared key:\n%v\n%v", c, d)
	}
}

func TestClusterFor(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"how does it work exactly?", "how_it_works"},
		{"מה הבוט יודע לעשות", "features"},
		{"random question about weather", ""},
	}
	for _, tt := range tests {
		if got := ClusterFor(tt.text); got != tt.want {
			t.Errorf("ClusterFor(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestWarmupQuestionsCoverAllClusters(t *testing.T) {
	for _, lang := range []string{"he", "en"} {
		qs := WarmupQuestions(lang)
		if len(qs) < len(ClusterLabels()) {
			t.Errorf("%s warmup has %d questions for %d clusters", lang, len(qs), len(ClusterLabels()))
		}
	}
}

func overlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if set[k] {
			return true
		}
	}
	return false
}

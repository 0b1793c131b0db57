package classify

import (
	"strings"
	"unicode"
)

// RuleSet is one labelled category of phrases in both supported languages.
// Matching is case-insensitive substring containment.
type RuleSet struct {
	Label   string
	Hebrew  []string
	English []string
}

func (r RuleSet) Matches(text string) bool {
	lower := strings.ToLower(text)
	tokens := tokenize(lower)
	for _, p := range r.Hebrew {
		if phraseMatches(lower, tokens, p) {
			return true
		}
	}
	for _, p := range r.English {
		if phraseMatches(lower, tokens, p) {
			return true
		}
	}
	return false
}

// Multi-word phrases match as substrings; single tokens must match a whole
// word, so "now" never reads as "no" and "hello" never reads as "hi".
func phraseMatches(lower string, tokens []string, phrase string) bool {
	for _, r := range phrase {
		if !unicode.IsLetter(r) {
			return strings.Contains(lower, phrase)
		}
	}
	for _, tok := range tokens {
		if tok == phrase {
			return true
		}
	}
	return false
}

func tokenize(lower string) []string {
	return strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// DetectLanguage returns "en" when the text contains any Latin letter,
// otherwise "he". Mixed messages are answered in English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' {
			return "en"
		}
	}
	return "he"
}

// IsGreeting matches only short openers. A long message that happens to start
// with "hi" is a real question, not a greeting.
func IsGreeting(text string) bool {
	trimmed := strings.TrimSpace(text)
	if wordCount(trimmed) > 4 {
		return false
	}
	return greetingPhrases.Matches(trimmed)
}

func IsSmallTalk(text string) bool {
	trimmed := strings.TrimSpace(text)
	if wordCount(trimmed) > 5 {
		return false
	}
	return smallTalkPhrases.Matches(trimmed)
}

// HasBuyingIntent reports a direct commitment to purchase or start. Pricing
// questions and info-only phrasings are excluded even when a commitment
// phrase also matches.
func HasBuyingIntent(text string) bool {
	if buyingIntentExclusions.Matches(text) {
		return false
	}
	return buyingIntentPhrases.Matches(text)
}

// DetectBusinessType returns the first matching business category label, or
// "" when none matches.
func DetectBusinessType(text string) string {
	for _, set := range businessTypeSets {
		if set.Matches(text) {
			return set.Label
		}
	}
	return ""
}

func DetectUseCase(text string) string {
	for _, set := range useCaseSets {
		if set.Matches(text) {
			return set.Label
		}
	}
	return ""
}

func IsPositiveEngagement(text string) bool {
	return positiveEngagementPhrases.Matches(text)
}

// IsLeadExit reports whether the user wants to abandon contact collection.
func IsLeadExit(text string) bool {
	return leadExitPhrases.Matches(text)
}

// IsVagueAnswer flags a generated answer as a non-answer: too short to carry
// content, or dominated by deflection phrases.
func IsVagueAnswer(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if len([]rune(trimmed)) < 15 {
		return true
	}
	lower := strings.ToLower(trimmed)
	hits := 0
	for _, p := range vaguePhrases {
		if strings.Contains(lower, p) {
			hits++
		}
	}
	if hits >= 2 {
		return true
	}
	return hits == 1 && len([]rune(trimmed)) < 60
}

func wordCount(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

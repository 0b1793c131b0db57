package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"unicode"
)

// cluster groups paraphrases of the same question under one cache key and
// drives warm-up and predictive warming.
type cluster struct {
	Label   string
	Hebrew  []string
	English []string
	// Warmup are the canned questions pushed through the pipeline by the
	// warm-up worker, per language.
	WarmupHebrew  []string
	WarmupEnglish []string
}

var clusters = []cluster{
	{
		Label:         "pricing",
		Hebrew:        []string{"כמה עולה", "מה המחיר", "מה העלות", "כמה זה עולה", "תמחור"},
		English:       []string{"how much", "what's the price", "what is the price", "pricing", "cost"},
		WarmupHebrew:  []string{"כמה עולה השירות?", "מה המחיר של בוט?"},
		WarmupEnglish: []string{"how much does it cost?", "what's the price of a bot?"},
	},
	{
		Label:         "how_it_works",
		Hebrew:        []string{"איך זה עובד", "איך הבוט עובד", "מה התהליך", "איך זה פועל"},
		English:       []string{"how does it work", "how does the bot work", "what's the process"},
		WarmupHebrew:  []string{"איך זה עובד?"},
		WarmupEnglish: []string{"how does it work?"},
	},
	{
		Label:         "features",
		Hebrew:        []string{"מה הבוט יודע", "מה היכולות", "אילו תכונות", "מה אפשר לעשות"},
		English:       []string{"what can the bot do", "what features", "capabilities", "what can it do"},
		WarmupHebrew:  []string{"מה הבוט יודע לעשות?"},
		WarmupEnglish: []string{"what can the bot do?"},
	},
	{
		Label:         "support",
		Hebrew:        []string{"תמיכה", "שירות לקוחות", "אם יש בעיה", "מי עוזר"},
		English:       []string{"support", "customer service", "if there's a problem", "who helps"},
		WarmupHebrew:  []string{"איזו תמיכה יש?"},
		WarmupEnglish: []string{"what support do you offer?"},
	},
	{
		Label:         "implementation",
		Hebrew:        []string{"כמה זמן לוקח", "הטמעה", "התקנה", "מתי זה מוכן"},
		English:       []string{"how long does it take", "implementation", "setup", "when is it ready"},
		WarmupHebrew:  []string{"כמה זמן לוקחת ההקמה?"},
		WarmupEnglish: []string{"how long does setup take?"},
	},
}

// Likely follow-up topics per cluster, used for predictive warming. Someone
// asking how it works tends to ask about price and timeline next.
var relatedClusters = map[string][]string{
	"pricing":        {"features", "implementation"},
	"how_it_works":   {"pricing", "implementation"},
	"features":       {"pricing", "how_it_works"},
	"support":        {"features"},
	"implementation": {"pricing"},
}

// Normalize lowercases, strips punctuation and collapses whitespace so
// trivially different phrasings share a key.
func Normalize(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func hashKey(parts ...string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(strings.Join(parts, "|"))))
}

// ClusterFor returns the label of the question cluster text belongs to, or ""
// when it matches none.
func ClusterFor(text string) string {
	lower := strings.ToLower(text)
	for _, c := range clusters {
		for _, p := range c.Hebrew {
			if strings.Contains(lower, p) {
				return c.Label
			}
		}
		for _, p := range c.English {
			if strings.Contains(lower, p) {
				return c.Label
			}
		}
	}
	return ""
}

// KeysFor derives the lookup keys for a message, most specific first: the raw
// text hash, the normalized-text hash, and a per-cluster key when the message
// falls into a known question cluster. Lookups try them in order; stores
// write all of them. fingerprint folds the conversation context that shaped
// the answer into the text-hash keys, so a reply tailored to one session's
// hints is never served to a session with different ones. Cluster keys stay
// fingerprint-free; cluster answers are generic by construction.
func KeysFor(text, language, fingerprint string) []string {
	keys := []string{
		"resp:" + hashKey(language, fingerprint, text),
	}
	if norm := Normalize(text); norm != "" {
		nk := "resp:" + hashKey(language, fingerprint, norm)
		if nk != keys[0] {
			keys = append(keys, nk)
		}
	}
	if label := ClusterFor(text); label != "" {
		keys = append(keys, ClusterKey(label, language))
	}
	return keys
}

// ClusterKey is the shared cache key for a whole question cluster.
func ClusterKey(label, language string) string {
	return "cluster:" + language + ":" + label
}

// RelatedClusters returns the cluster labels worth pre-warming after a
// question from label was answered.
func RelatedClusters(label string) []string {
	return relatedClusters[label]
}

// WarmupQuestions returns the canned questions for every cluster in language,
// for the warm-up worker.
func WarmupQuestions(language string) []string {
	var out []string
	for _, c := range clusters {
		if language == "he" {
			out = append(out, c.WarmupHebrew...)
		} else {
			out = append(out, c.WarmupEnglish...)
		}
	}
	return out
}

// ClusterLabels lists all known cluster labels.
func ClusterLabels() []string {
	labels := make([]string, 0, len(clusters))
	for _, c := range clusters {
		labels = append(labels, c.Label)
	}
	return labels
}

package lead

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Record is a prospective customer's contact details extracted from one
// message. It is handed to the notification path and never persisted here.
type Record struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	RawText string `json:"raw_text"`
}

var (
	emailRe = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w{2,}`)
	// Israeli mobile/landline: leading 0, 1-2 digit area code, 7 digits.
	phoneRe      = regexp.MustCompile(`\b0\d{1,2}[-\s]?\d{7}\b`)
	hebrewNameRe = regexp.MustCompile(`[א-ת]{2,}\s+[א-ת]{2,}`)
	latinNameRe  = regexp.MustCompile(`\b[A-Z][a-z]{1,}\s+[A-Z][a-z]{1,}\b`)
	wordRe       = regexp.MustCompile(`[א-תA-Za-z]{2,}`)
)

var mobilePrefixes = []string{"050", "052", "053", "054", "055", "056", "057", "058", "059"}

var phoneKeywords = []string{"טלפון", "נייד", "פלאפון", "phone", "mobile"}
var emailKeywords = []string{"מייל", "אימייל", "דוא\"ל", "email", "mail"}

// Words that introduce a name in either language. The token that follows one
// of these is taken as the name candidate.
var nameIntros = []string{"שמי", "קוראים לי", "שם שלי", "השם שלי", "my name is", "i am", "i'm", "name:"}

// Detect reports whether text carries a complete contact record: an email, a
// phone and a name signal all in the same message. Two out of three is not a
// lead; sending the notification early would burn the one contact we get.
func Detect(text string) bool {
	return hasEmail(text) && hasPhone(text) && hasName(text)
}

func hasEmail(text string) bool {
	m := emailRe.FindString(text)
	if m == "" {
		return false
	}
	// The regex is permissive; require exactly one @ with a dot after it.
	parts := strings.Split(m, "@")
	return len(parts) == 2 && strings.Contains(parts[1], ".")
}

func hasPhone(text string) bool {
	for _, p := range mobilePrefixes {
		if strings.Contains(text, p) {
			return true
		}
	}
	lower := strings.ToLower(text)
	for _, kw := range phoneKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return phoneRe.MatchString(text)
}

func hasName(text string) bool {
	if nameAfterIntro(text) != "" {
		return true
	}
	return hebrewNameRe.MatchString(text) || latinNameRe.MatchString(text)
}

// nameAfterIntro returns the word following a name-introduction keyword, or
// "" when none qualifies. A candidate equal to a phone/email keyword is
// rejected so "שמי טלפון 050..." does not parse "טלפון" as a name.
func nameAfterIntro(text string) string {
	lower := strings.ToLower(text)
	for _, intro := range nameIntros {
		idx := strings.Index(lower, intro)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(intro):]
		candidate := wordRe.FindString(rest)
		if candidate == "" {
			continue
		}
		if isFieldKeyword(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func isFieldKeyword(word string) bool {
	w := strings.ToLower(word)
	for _, kw := range phoneKeywords {
		if w == kw {
			return true
		}
	}
	for _, kw := range emailKeywords {
		if w == kw {
			return true
		}
	}
	return false
}

// Extract pulls the first match per field. Extraction is pure; the caller
// owns notification and session bookkeeping.
func Extract(text string) Record {
	rec := Record{RawText: text}

	rec.Email = emailRe.FindString(text)
	rec.Phone = phoneRe.FindString(text)

	if name := nameAfterIntro(text); name != "" {
		// Prefer "first last" starting at the introduced token when present.
		if full := fullNameFrom(text, name); full != "" {
			rec.Name = full
		} else {
			rec.Name = name
		}
	} else if m := hebrewNameRe.FindString(text); m != "" {
		rec.Name = m
	} else if m := latinNameRe.FindString(text); m != "" {
		rec.Name = m
	}

	return rec
}

func fullNameFrom(text, first string) string {
	idx := strings.Index(text, first)
	if idx < 0 {
		return ""
	}
	rest := text[idx:]
	if m := hebrewNameRe.FindString(rest); strings.HasPrefix(m, first) {
		return m
	}
	words := wordRe.FindAllString(rest, 2)
	if len(words) == 2 && !isFieldKeyword(words[1]) {
		return words[0] + " " + words[1]
	}
	return first
}

// FormatNotification renders the email body sent to the business for a new
// lead.
func FormatNotification(rec Record) string {
	field := func(v string) string {
		if v == "" {
			return "Not provided"
		}
		return v
	}
	var b strings.Builder
	b.WriteString("New lead from chatbot\n\n")
	fmt.Fprintf(&b, "Name:  %s\n", field(rec.Name))
	fmt.Fprintf(&b, "Phone: %s\n", field(rec.Phone))
	fmt.Fprintf(&b, "Email: %s\n", field(rec.Email))
	fmt.Fprintf(&b, "\nOriginal message:\n%s\n", rec.RawText)
	fmt.Fprintf(&b, "\nReceived: %s\n", time.Now().Format(time.RFC3339))
	b.WriteString("\nPlease follow up promptly.\n")
	return b.String()
}

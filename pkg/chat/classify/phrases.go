package classify

// Phrase tables live here as data, separate from control flow, so rule sets
// can be tested and extended without touching the detectors.

var greetingPhrases = RuleSet{
	Label:   "greeting",
	Hebrew:  []string{"שלום", "היי", "הי", "אהלן", "בוקר טוב", "ערב טוב", "שלום לך"},
	English: []string{"hello", "hi", "hey", "good morning", "good evening", "good afternoon"},
}

var smallTalkPhrases = RuleSet{
	Label:   "small_talk",
	Hebrew:  []string{"תודה", "יפה", "נחמד", "כן", "לא", "אוקיי", "בסדר", "נהדר"},
	English: []string{"thanks", "thank you", "yes", "no", "okay", "ok", "fine", "great"},
}

// Buying intent is restricted to direct commitment phrases; informational
// questions about price must not start lead collection.
var buyingIntentPhrases = RuleSet{
	Label: "buying_intent",
	Hebrew: []string{
		"אני רוצה לקנות", "רוצה לקנות", "רוצה לרכוש", "אני רוצה לרכוש",
		"אני רוצה להזמין", "רוצה להזמין", "רוצה את השירות", "רוצה בוט",
		"אני רוצה להתחיל", "רוצה להתחיל", "איך אפשר להתחיל", "איך מתחילים",
		"אני רוצה לעשות בוט", "רוצה לעשות בוט", "מעוניינת לקנות",
	},
	English: []string{
		"i want to buy", "want to buy", "want to purchase", "i want to purchase",
		"i want to order", "want to order", "want your service", "want a bot",
		"i want to get started", "how do i get started", "how to get started",
		"i want to create a bot", "want to create a bot", "want a chatbot",
	},
}

var buyingIntentExclusions = RuleSet{
	Label: "info_only",
	Hebrew: []string{
		"רק רוצה מידע", "רק רוצה לדעת", "רק רוצה להבין", "רוצה לשמוע",
		"מעוניין לשמוע", "כמה זה עולה", "מה המחיר", "מה העלות",
	},
	English: []string{
		"just want info", "just want to know", "just want to understand",
		"want to hear", "interested to hear", "how much does it cost",
		"what's the price", "pricing",
	},
}

var positiveEngagementPhrases = RuleSet{
	Label: "positive_engagement",
	Hebrew: []string{
		"זה נשמע טוב", "זה מעניין", "אני מעוניין", "זה בדיוק מה שאני צריך",
		"זה יכול לעזור", "זה נראה טוב", "זה נהדר", "זה מושלם",
		"בטח", "למה לא", "בואו ננסה", "אני רוצה לנסות",
	},
	English: []string{
		"sounds good", "interesting", "i'm interested", "this is exactly what i need",
		"this could help", "this looks good", "this is great", "this is perfect",
		"sure", "why not", "let's try", "i want to try",
	},
}

var businessTypeSets = []RuleSet{
	{
		Label:   "restaurant",
		Hebrew:  []string{"מסעדה", "בר", "קפה", "תפריט", "הזמנות שולחן", "שולחנות"},
		English: []string{"restaurant", "cafe", "bar", "menu", "reservations", "tables"},
	},
	{
		Label:   "beauty",
		Hebrew:  []string{"מאפרת", "מאפר", "איפור", "קוסמטיקה", "סלון יופי", "טיפוח"},
		English: []string{"makeup artist", "makeup", "cosmetics", "beauty salon", "stylist"},
	},
	{
		Label:   "retail",
		Hebrew:  []string{"חנות", "קמעונאות", "מלאי", "מבצעים", "קניות"},
		English: []string{"store", "retail", "shop", "inventory", "shopping"},
	},
	{
		Label:   "medical",
		Hebrew:  []string{"קליניקה", "רופא", "מרפאה", "תורים", "מטופלים"},
		English: []string{"clinic", "doctor", "medical", "appointments", "patients"},
	},
	{
		Label:   "real_estate",
		Hebrew:  []string{"נדל\"ן", "דירות", "השכרה", "נכסים", "סיורים"},
		English: []string{"real estate", "apartments", "rental", "property", "listings"},
	},
	{
		Label:   "education",
		Hebrew:  []string{"מורה", "בית ספר", "תלמידים", "לימודים"},
		English: []string{"teacher", "school", "students", "education"},
	},
}

var useCaseSets = []RuleSet{
	{
		Label: "recruitment",
		Hebrew: []string{
			"מגייס עובדים", "גיוס עובדים", "מחפש עובדים", "רוצה לגייס",
			"מקבל טלפונים", "הרבה טלפונים", "לסנן מועמדים", "סינון",
		},
		English: []string{
			"recruiting", "hiring", "human resources", "filter candidates",
			"screen applicants", "too many calls", "unqualified",
		},
	},
	{
		Label:   "reservations",
		Hebrew:  []string{"הזמנות", "מקומות", "שולחנות", "תורים"},
		English: []string{"reservations", "booking", "tables", "appointments"},
	},
	{
		Label:   "customer_support",
		Hebrew:  []string{"שאלות נפוצות", "שירות לקוחות", "מענה ללקוחות"},
		English: []string{"faq", "customer support", "customer service", "answering customers"},
	},
}

// Phrases whose presence marks a generated answer as a non-answer. Two or
// more of these (or one in a very short answer) means the answer is vague.
var vaguePhrases = []string{
	"i don't know anything about",
	"i have no information about",
	"i cannot help you with this",
	"i'm not able to assist",
	"אין לי שום מידע על",
	"לא יכול לעזור עם זה",
	"לא מוכר לי",
}

// Lead sub-flow exit phrases: the user wants out of contact collection.
var leadExitPhrases = RuleSet{
	Label:   "lead_exit",
	Hebrew:  []string{"עזוב", "לא עכשיו", "שכח מזה", "לא רוצה", "תודה לא", "די", "סגור"},
	English: []string{"never mind", "not now", "forget it", "no thanks", "don't want", "stop"},
}

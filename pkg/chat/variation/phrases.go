package variation

// Phrase categories. The orchestrator picks the category from conversation
// context; the tracker only guarantees non-repetition within it.
const (
	CategoryGeneralHelp      = "general_help"
	CategoryAssistanceOffer  = "assistance_offer"
	CategoryPricingFollow    = "pricing_follow"
	CategoryTechnicalFollow  = "technical_follow"
	CategoryCasualEnding     = "casual_ending"
	CategoryLeadConfirmation = "lead_confirmation"
	CategoryLeadRequest      = "lead_request"
	CategoryLeadExitAck      = "lead_exit_ack"
)

var pools = map[string]map[string][]string{
	CategoryGeneralHelp: {
		"he": {
			"אשמח לעזור עם כל שאלה נוספת.",
			"יש עוד משהו שמעניין אותך?",
			"אם יש עוד שאלות, אני כאן.",
			"מה עוד תרצה לדעת?",
		},
		"en": {
			"Happy to help with anything else.",
			"Is there anything else you'd like to know?",
			"I'm here if you have more questions.",
			"What else can I tell you?",
		},
	},
	CategoryAssistanceOffer: {
		"he": {
			"רוצה שאספר לך איך זה יכול לעבוד אצלך בעסק?",
			"אשמח להראות לך איך זה מתאים לעסק שלך.",
			"רוצה לשמוע איך עסקים דומים משתמשים בזה?",
		},
		"en": {
			"Want me to show how this could work for your business?",
			"I'd be glad to walk you through how this fits your business.",
			"Want to hear how similar businesses use this?",
		},
	},
	CategoryPricingFollow: {
		"he": {
			"רוצה לשמוע פרטים על התמחור?",
			"אשמח לפרט על המסלולים והמחירים.",
			"מעניין אותך לדעת כמה זה עולה?",
		},
		"en": {
			"Want to hear more about pricing?",
			"I can break down the plans and prices for you.",
			"Curious what it would cost?",
		},
	},
	CategoryTechnicalFollow: {
		"he": {
			"רוצה שאסביר איך ההטמעה עובדת?",
			"אשמח לפרט על הצד הטכני.",
			"יש לך שאלות על האינטגרציה?",
		},
		"en": {
			"Want me to explain how setup works?",
			"I can go into the technical side if you like.",
			"Any questions about the integration?",
		},
	},
	CategoryCasualEnding: {
		"he": {
			"מקווה שעזרתי!",
			"אני כאן לכל שאלה.",
			"בשמחה לעזור עוד.",
		},
		"en": {
			"Hope that helps!",
			"I'm here if you need anything.",
			"Glad to help with more.",
		},
	},
	CategoryLeadConfirmation: {
		"he": {
			"מעולה, קיבלתי את הפרטים! ניצור איתך קשר בהקדם.",
			"תודה! הפרטים נשמרו ונחזור אליך ממש בקרוב.",
			"הפרטים התקבלו, מישהו מהצוות יחזור אליך בהקדם.",
		},
		"en": {
			"Great, got your details! We'll be in touch shortly.",
			"Thanks! Your details are saved and we'll get back to you very soon.",
			"Details received, someone from the team will reach out shortly.",
		},
	},
	CategoryLeadRequest: {
		"he": {
			"כדי שנוכל להתקדם, אשמח לשם מלא, טלפון ומייל.",
			"תוכל להשאיר שם, טלפון ומייל ונחזור אליך?",
			"רק צריך שם מלא, מספר טלפון וכתובת מייל ונמשיך משם.",
		},
		"en": {
			"To move forward, could you share your full name, phone and email?",
			"Leave your name, phone and email and we'll get back to you.",
			"I just need a full name, phone number and email address to continue.",
		},
	},
	CategoryLeadExitAck: {
		"he": {
			"אין בעיה, נמשיך. במה עוד אפשר לעזור?",
			"בסדר גמור. יש עוד משהו שתרצה לדעת?",
		},
		"en": {
			"No problem, let's continue. What else can I help with?",
			"That's fine. Anything else you'd like to know?",
		},
	},
}

// EndingCategory maps a follow-up topic hint to the ending pool to draw from.
func EndingCategory(followUpTopic string) string {
	switch followUpTopic {
	case "pricing":
		return CategoryPricingFollow
	case "how_it_works", "implementation", "features":
		return CategoryTechnicalFollow
	default:
		return CategoryCasualEnding
	}
}

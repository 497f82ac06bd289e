package crawling

// RelevantKeywords select company-informational pages.
var RelevantKeywords = []string{
	"about", "about-us", "who-we-are", "our-story", "history",
	"mission", "vision", "values", "philosophy", "principles",
	"leadership", "management", "team", "board", "founders",
	"careers", "career", "jobs", "join-us", "openings", "hiring",
	"work-with-us", "culture", "life-at", "diversity", "inclusion",
	"press", "media", "news", "announcements",
	"investors", "investor-relations", "financials",
	"contact", "contact-us", "reach-us", "get-in-touch", "support",
	"faq", "help-center", "help",
}

// LegalKeywords select terms, privacy and cookie pages.
var LegalKeywords = []string{
	"terms", "terms-of-service", "terms-of-use", "terms-and-conditions",
	"privacy", "privacy-policy",
	"legal", "policies", "policy",
	"cookies", "cookie-policy",
}

// LegalPathGuesses are tried when a homepage links to no legal page.
var LegalPathGuesses = []string{
	"/terms",
	"/terms-of-service",
	"/terms-of-use",
	"/terms-and-conditions",
	"/privacy",
	"/privacy-policy",
	"/legal",
	"/policies",
	"/cookie-policy",
}

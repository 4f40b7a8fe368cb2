package slug

// defaultReservedWords covers infrastructure paths, auth routes, generic
// marketplace nouns, and terms too ambiguous to hand to a single owner.
// Keep sorted by theme so review diffs stay readable.
var defaultReservedWords = []string{
	// infrastructure and routing
	"api", "app", "apps", "www", "cdn", "ftp", "smtp", "mail", "email",
	"static", "assets", "public", "private", "media", "files", "file",
	"img", "images", "css", "js", "fonts", "upload", "uploads",
	"download", "downloads", "webhook", "webhooks", "callback",
	"healthz", "readyz", "health", "status", "metrics", "internal",
	"sys", "system", "root", "admin", "administrator", "superuser",

	// auth and account routes
	"auth", "login", "logout", "signin", "signout", "signup", "register",
	"account", "accounts", "password", "reset", "confirm", "verify",
	"verified", "verification", "oauth", "token", "tokens", "session",
	"sessions", "sso", "me", "you", "anonymous", "guest",

	// product surfaces
	"home", "index", "dashboard", "portal", "console", "settings",
	"profile", "profiles", "user", "users", "search", "explore",
	"discover", "trending", "popular", "featured", "new", "news",
	"blog", "docs", "documentation", "help", "support", "contact",
	"about", "terms", "privacy", "legal", "security", "abuse",
	"feedback", "report", "reports", "notifications", "notification",
	"messages", "message", "chat", "inbox",

	// billing
	"billing", "payments", "payment", "pay", "checkout", "cart",
	"orders", "order", "invoice", "invoices", "subscription",
	"subscriptions", "plans", "pricing", "free", "premium",
	"enterprise", "trial",

	// marketplace nouns
	"marketplace", "market", "store", "shop", "services", "service",
	"projects", "project", "jobs", "job", "gigs", "gig", "talent",
	"hire", "hiring", "work", "freelancer", "freelancers", "vendor",
	"vendors", "provider", "providers", "client", "clients", "customer",
	"customers", "partner", "partners", "organization", "organizations",
	"company", "companies", "team", "teams", "org", "orgs", "agency",
	"agencies",

	// environments and sentinel values
	"dev", "developer", "developers", "test", "testing", "staging",
	"production", "demo", "sandbox", "example", "null", "undefined",
	"none", "true", "false", "official",
}

// defaultBlockedTerms is intentionally small; it is matched as a substring
// and extended through policy configuration, not code.
var defaultBlockedTerms = []string{
	"fuck", "shit", "bitch", "porn", "nsfw", "xxx", "nazi", "rape",
}

package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultGeminiModel = "gemini-pro-latest"

	DefaultValueInputOption = "RAW"

	DefaultServerAddr              = ":8080"
	DefaultServerReadHeaderTimeout = 10 * time.Second

	DefaultSessionIdleTimeout   = 30 * time.Minute
	DefaultSessionSweepInterval = time.Minute

	DefaultUITitle       = "Dr. Huberman AI"
	DefaultUIIcon        = "🧠"
	DefaultUIPlaceholder = "Ask about neuroscience, habits, or health:"

	DefaultTelegramWelcome = "🧠 Hi! I'm Dr. Huberman AI. Ask me about neuroscience, habits, or health."
)

// DefaultSystemPrompt is the fixed instruction placed ahead of every user turn.
const DefaultSystemPrompt = `You are Dr. Huberman AI.
You give science-backed, practical, concise explanations about neuroscience, psychology, health, and behavior.
Avoid pseudoscience, cite mechanisms when relevant, and sound calm and confident.`

// DefaultSheetsScopes are the OAuth scopes requested for the service account.
var DefaultSheetsScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

package constant

// Context keys shared by middleware and handlers.
const (
	DbField        = "_securo_db"
	UserField      = "_securo_user"
	JWTSecretField = "_securo_jwt_secret"
	LangField      = "_securo_lang"
)

// Session keys.
const (
	SessionUsername         = "username"
	SessionPendingEmergency = "pending_emergency"
)

const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	ProviderAnalyst = "analyst"
	ProviderExpert  = "expert"
)

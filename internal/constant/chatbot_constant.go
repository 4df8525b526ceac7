package constant

// Response messages returned by the HTTP API.
const (
	MsgUserRegistered     = "User registered successfully"
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccessGranted      = "Access granted"
	MsgTokenExpired       = "Token expired"
	MsgInvalidToken       = "Invalid token"
	MsgMissingToken       = "Missing token"
	MsgNoMessage          = "No message provided"
	MsgInvalidRequest     = "Invalid request body"
	MsgPreferencesSaved   = "Preferences updated"
	MsgEmailRequired      = "email is required"
)

// Locals keys set by middleware.
const (
	LocalsUser = "user"
)

package models

// Session identifies the wallet behind an authenticated request.
type Session struct {
	Address string `json:"address"`
}

// SessionKey is the echo context key holding the *Session.
const SessionKey = "session"

package pkg

import "github.com/google/uuid"

// GenerateSessionID mints the identifier a session is stored under.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GeneratePlayerID mints an identifier for a client that connected without
// one.
func GeneratePlayerID() string {
	return uuid.NewString()
}

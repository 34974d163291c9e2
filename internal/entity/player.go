package entity

// Player binds a connected client to its live session. Hot-seat play means
// the player owns the whole session rather than one mark.
type Player struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id,omitempty"`
}

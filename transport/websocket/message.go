package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/ninarow-backend/internal/entity"
)

// Message is the envelope of the protocol. Replies carry the action of
// the request they answer.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries the fields of any request or response. Absent fields are
// omitted on the wire.
type Payload struct {
	Player  *entity.Player  `json:"player,omitempty"`
	Session *entity.Session `json:"session,omitempty"`
	Status  *entity.Status  `json:"status,omitempty"`
	Rules   *entity.Rules   `json:"rules,omitempty"`

	Cell      *int  `json:"cell,omitempty"`
	Move      *int  `json:"move,omitempty"`
	Size      *int  `json:"size,omitempty"`
	WinLength *int  `json:"win_length,omitempty"`
	Highlight *bool `json:"highlight,omitempty"`

	Error string `json:"error,omitempty"`
}

func decodeMessage(raw []byte) (*Message, error) {
	var message Message
	if err := json.Unmarshal(raw, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &message, nil
}

func decodePayload(msg *Message) (*Payload, error) {
	var payload Payload
	if len(msg.Payload) == 0 {
		return &payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return &payload, nil
}

// sessionPayload - assembles the session response sent after every
// session operation. The status is derived from the current board, so a
// client sees the outcome of a jump or a move without a second request.
func sessionPayload(player *entity.Player, session *entity.Session) *Payload {
	status := session.Status()

	return &Payload{
		Player:  player,
		Session: session,
		Status:  &status,
	}
}

func (that *Server) sendMessage(conn *websocket.Conn, action string, payload *Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := Message{Action: action, Payload: raw}
	if err = conn.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *websocket.Conn, action, text string) error {
	return that.sendMessage(conn, action, &Payload{Error: text})
}

// sendRejected - answers a session operation the rules refused. The reply
// carries the untouched session next to the error so the client can stay
// in sync without a state request.
func (that *Server) sendRejected(conn *websocket.Conn, action string, session *entity.Session, reason error) error {
	status := session.Status()

	return that.sendMessage(conn, action, &Payload{
		Session: session,
		Status:  &status,
		Error:   reason.Error(),
	})
}

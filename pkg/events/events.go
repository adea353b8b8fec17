// Package events holds the JSON frames exchanged over the chat websocket.
package events

import "time"

const (
	TypeMessage = "message"
	TypeHistory = "history"
	TypeError   = "error"
)

// Inbound is what a visitor socket sends.
type Inbound struct {
	Body string `json:"body"`
}

// ChatFrame is pushed to every socket of a session.
type ChatFrame struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id,omitempty"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// HistoryFrame is sent once when a socket joins a session.
type HistoryFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Messages  []ChatFrame `json:"messages"`
}

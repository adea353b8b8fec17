package models

import "time"

const (
	SenderVisitor = "visitor"
	SenderAgent   = "agent"
)

type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/events"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/notify"
	"github.com/bitirgenalperen/ilkevim-sub000/types"
	"github.com/bitirgenalperen/ilkevim-sub000/websocket"

	"github.com/gin-gonic/gin"
)

const (
	maxChatMessage = 2000
	historyLimit   = 100
)

// chatInputError is shown to the visitor as is. Other errors are not.
type chatInputError string

func (e chatInputError) Error() string { return string(e) }

const (
	errEmptyMessage   = chatInputError("message is empty")
	errMessageTooLong = chatInputError("message is too long")
	errMalformed      = chatInputError("message must be JSON like {\"body\": \"...\"}")
)

// ChatHandler relays visitor chat to the agency. It backs the visitor socket and
// the admin endpoints.
type ChatHandler struct {
	store    ChatStore
	hub      *websocket.Hub
	notifier notify.Notifier
}

func NewChatHandler(store ChatStore, hub *websocket.Hub, notifier notify.Notifier) *ChatHandler {
	return &ChatHandler{store: store, hub: hub, notifier: notifier}
}

func toFrame(m *models.ChatMessage) events.ChatFrame {
	return events.ChatFrame{
		Type:      events.TypeMessage,
		ID:        m.ID,
		SessionID: m.SessionID,
		Sender:    m.Sender,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func messageBody(raw string) (string, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return "", errEmptyMessage
	}
	if utf8.RuneCountInString(body) > maxChatMessage {
		return "", errMessageTooLong
	}
	return body, nil
}

func (h *ChatHandler) Joined(ctx context.Context, sessionID string) ([]byte, error) {
	msgs, err := h.store.GetSessionMessages(ctx, sessionID, historyLimit)
	if err != nil {
		return nil, err
	}
	frame := events.HistoryFrame{Type: events.TypeHistory, SessionID: sessionID, Messages: make([]events.ChatFrame, 0, len(msgs))}
	for _, m := range msgs {
		frame.Messages = append(frame.Messages, toFrame(m))
	}
	return json.Marshal(frame)
}

func (h *ChatHandler) Received(ctx context.Context, sessionID string, raw []byte) ([]byte, error) {
	var in events.Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, errMalformed
	}
	body, err := messageBody(in.Body)
	if err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{SessionID: sessionID, Sender: models.SenderVisitor, Body: body}
	if err := h.store.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store chat message: %w", err)
	}
	notify.Async(h.notifier, fmt.Sprintf("Chat %s: %s", sessionID, body))
	return json.Marshal(toFrame(msg))
}

func (h *ChatHandler) ErrorFrame(sessionID string, err error) []byte {
	text := "message could not be delivered"
	var input chatInputError
	if errors.As(err, &input) {
		text = input.Error()
	}
	b, _ := json.Marshal(events.ChatFrame{Type: events.TypeError, SessionID: sessionID, Body: text})
	return b
}

func sessionParam(c *gin.Context) (string, bool) {
	session := c.Param("session")
	if !websocket.ValidSessionID(session) {
		badRequest(c, "invalid session")
		return "", false
	}
	return session, true
}

func (h *ChatHandler) History(c *gin.Context) {
	session, ok := sessionParam(c)
	if !ok {
		return
	}
	msgs, err := h.store.GetSessionMessages(c.Request.Context(), session, historyLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(msgs))
}

// Reply stores an agent message and pushes it to the visitor's open sockets.
func (h *ChatHandler) Reply(c *gin.Context) {
	session, ok := sessionParam(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	body, err := messageBody(req.Body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	msg := &models.ChatMessage{SessionID: session, Sender: models.SenderAgent, Body: body}
	if err := h.store.AppendMessage(c.Request.Context(), msg); err != nil {
		respondError(c, err)
		return
	}
	if frame, err := json.Marshal(toFrame(msg)); err == nil {
		h.hub.Broadcast(session, frame)
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(msg))
}

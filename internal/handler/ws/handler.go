package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	chatService "github.com/alpacachat/alpaca/backend/internal/service/chat"
)

const (
	typeSubmit     = "submit"
	typeSave       = "save"
	typeLoad       = "load"
	typeClear      = "clear"
	typeHistory    = "history"
	typeTurn       = "turn"
	typeTranscript = "transcript"
	typeStatus     = "status"
	typeError      = "error"
)

// Handler serves the chat shell over a WebSocket connection.
type Handler struct {
	session  *chatService.Session
	upgrader websocket.Upgrader
}

// New creates a WebSocket handler bound to the session.
func New(session *chatService.Session) *Handler {
	return &Handler{
		session: session,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Turn      *chat.Turn  `json:"turn,omitempty"`
	Turns     []chat.Turn `json:"turns,omitempty"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened session=%s", h.session.ID())

	if err := conn.WriteJSON(h.transcript()); err != nil {
		log.Printf("[ws] failed to send transcript: %v", err)
		return
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			break
		}

		for _, out := range h.dispatch(r.Context(), msg) {
			if err := conn.WriteJSON(out); err != nil {
				log.Printf("[ws] write error: %v", err)
				return
			}
		}
	}

	log.Printf("[ws] connection closed session=%s", h.session.ID())
}

// dispatch runs one shell command to completion and returns the frames to send back.
func (h *Handler) dispatch(ctx context.Context, msg inboundMessage) []outgoingMessage {
	switch msg.Type {
	case typeSubmit:
		turn, err := h.session.Submit(ctx, msg.Content)
		if err != nil {
			if errors.Is(err, chatService.ErrEmptyMessage) {
				return []outgoingMessage{h.errorFrame(err)}
			}
			return []outgoingMessage{h.errorFrame(err), h.transcript()}
		}
		return []outgoingMessage{h.frame(outgoingMessage{Type: typeTurn, Turn: &turn})}
	case typeSave:
		if err := h.session.Save(); err != nil {
			return []outgoingMessage{h.errorFrame(err)}
		}
		return []outgoingMessage{h.status("Chat history saved successfully!")}
	case typeLoad:
		state, err := h.session.Load()
		if err != nil {
			return []outgoingMessage{h.errorFrame(err)}
		}
		notice := "Chat history loaded."
		if state == chatService.StateEmpty {
			notice = "No saved chat history found."
		}
		return []outgoingMessage{h.status(notice), h.transcript()}
	case typeClear:
		h.session.Clear()
		return []outgoingMessage{h.transcript()}
	case typeHistory:
		return []outgoingMessage{h.transcript()}
	default:
		return []outgoingMessage{h.errorFrame(errors.New("unknown message type: " + msg.Type))}
	}
}

func (h *Handler) frame(msg outgoingMessage) outgoingMessage {
	msg.SessionID = h.session.ID()
	msg.Timestamp = time.Now().UnixMilli()
	return msg
}

func (h *Handler) transcript() outgoingMessage {
	return h.frame(outgoingMessage{Type: typeTranscript, Turns: h.session.Turns()})
}

func (h *Handler) status(message string) outgoingMessage {
	return h.frame(outgoingMessage{Type: typeStatus, Message: message})
}

func (h *Handler) errorFrame(err error) outgoingMessage {
	return h.frame(outgoingMessage{Type: typeError, Error: err.Error()})
}

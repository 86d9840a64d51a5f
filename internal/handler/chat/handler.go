package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alpacachat/alpaca/backend/internal/model/chat"
	"github.com/alpacachat/alpaca/backend/internal/service/ai"
	chatService "github.com/alpacachat/alpaca/backend/internal/service/chat"
	"github.com/alpacachat/alpaca/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	session *chatService.Session
}

// New 创建聊天处理器
func New(session *chatService.Session) *Handler {
	return &Handler{session: session}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/transcript", h.handleGetTranscript)
	r.Post("/messages", h.handleSubmit)
	r.Post("/transcript/save", h.handleSave)
	r.Post("/transcript/load", h.handleLoad)
	r.Post("/transcript/clear", h.handleClear)
}

type transcriptResponse struct {
	SessionID string      `json:"sessionId"`
	Turns     []chat.Turn `json:"turns"`
	Message   string      `json:"message,omitempty"`
}

type submitResponse struct {
	Turn  chat.Turn   `json:"turn"`
	Turns []chat.Turn `json:"turns"`
}

func (h *Handler) transcript(message string) transcriptResponse {
	return transcriptResponse{
		SessionID: h.session.ID(),
		Turns:     h.session.Turns(),
		Message:   message,
	}
}

func (h *Handler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.transcript(""))
}

// handleSubmit 提交用户消息并返回助手回复
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.session.Submit(r.Context(), payload.Content)
	if err != nil {
		var callErr *ai.ProviderCallError
		switch {
		case errors.Is(err, chatService.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &callErr):
			utils.RespondError(w, http.StatusBadGateway, err.Error())
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, submitResponse{Turn: turn, Turns: h.session.Turns()})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.transcript("Chat history saved successfully!"))
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	state, err := h.session.Load()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Chat history loaded."
	if state == chatService.StateEmpty {
		message = "No saved chat history found."
	}
	utils.RespondJSON(w, http.StatusOK, h.transcript(message))
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	h.session.Clear()
	utils.RespondJSON(w, http.StatusOK, h.transcript("Chat history cleared."))
}

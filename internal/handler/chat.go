package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

type ChatHandler struct {
	chatService    service.ChatService
	messageService service.MessageService
}

func NewChatHandler(chatService service.ChatService, messageService service.MessageService) *ChatHandler {
	return &ChatHandler{chatService: chatService, messageService: messageService}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chats", h.listChats).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats", h.createChat).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{id}/messages", h.listMessages).Methods("GET", "OPTIONS")
	router.HandleFunc("/chats/{id}/messages", h.sendMessage).Methods("POST", "OPTIONS")
	router.HandleFunc("/chats/{id}/read", h.markRead).Methods("POST", "OPTIONS")
}

func chatIDFromPath(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// @Summary List chats
// @Description Chat summaries for the current user, newest activity first
// @ID list-chats
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} map[string][]service.ChatSummary
// @Failure 401 {object} httputils.ErrorResponse
// @Router /chats [get]
func (h *ChatHandler) listChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chatService.ListChats(r.Context(), UserID(r))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"chats": chats})
}

type CreateChatRequest struct {
	OtherUserID uint   `json:"other_user_id"`
	IsGroup     bool   `json:"is_group"`
	GroupName   string `json:"group_name"`
}

type CreateChatResponse struct {
	Success  bool `json:"success"`
	ChatID   uint `json:"chat_id"`
	Existing bool `json:"existing,omitempty"`
}

// @Summary Create chat
// @Description Open (or reuse) a direct chat, or create a group chat
// @ID create-chat
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chatData body CreateChatRequest true "Chat data"
// @Success 200 {object} CreateChatResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Router /chats [post]
func (h *ChatHandler) createChat(w http.ResponseWriter, r *http.Request) {
	var request CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	if request.IsGroup {
		chatID, err := h.chatService.CreateGroupChat(r.Context(), UserID(r), request.GroupName)
		if err != nil {
			httputils.ResponseAppError(w, err)
			return
		}
		httputils.ResponseJSON(w, http.StatusOK, CreateChatResponse{Success: true, ChatID: chatID})
		return
	}

	chatID, existing, err := h.chatService.GetOrCreateDirectChat(r.Context(), UserID(r), request.OtherUserID)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, CreateChatResponse{Success: true, ChatID: chatID, Existing: existing})
}

// @Summary List messages
// @Description Messages of a chat in send order; fetching acknowledges them
// @ID list-messages
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Chat ID"
// @Success 200 {object} map[string][]service.MessageView
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{id}/messages [get]
func (h *ChatHandler) listMessages(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	messages, err := h.messageService.List(r.Context(), chatID, UserID(r))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type SendMessageRequest struct {
	MessageText string `json:"message_text"`
	MessageType string `json:"message_type"`
	FileURL     string `json:"file_url"`
}

type SendMessageResponse struct {
	Success   bool   `json:"success"`
	MessageID uint   `json:"message_id"`
	CreatedAt string `json:"created_at"`
}

// @Summary Send message
// @Description Append a message to a chat
// @ID send-message
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Chat ID"
// @Param messageData body SendMessageRequest true "Message data"
// @Success 200 {object} SendMessageResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{id}/messages [post]
func (h *ChatHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var request SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	message, err := h.messageService.Append(r.Context(), chatID, UserID(r),
		request.MessageText, request.MessageType, request.FileURL)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, SendMessageResponse{
		Success:   true,
		MessageID: message.ID,
		CreatedAt: message.CreatedAt.Format(time.RFC3339Nano),
	})
}

type MarkReadRequest struct {
	ThroughMessageID uint `json:"through_message_id"`
}

// @Summary Mark read
// @Description Acknowledge messages up to an id without fetching them
// @ID mark-read
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Chat ID"
// @Param readData body MarkReadRequest true "Acknowledge boundary, 0 for all"
// @Success 200
// @Failure 403 {object} httputils.ErrorResponse
// @Router /chats/{id}/read [post]
func (h *ChatHandler) markRead(w http.ResponseWriter, r *http.Request) {
	chatID, ok := chatIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var request MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	if err := h.messageService.MarkRead(r.Context(), chatID, UserID(r), request.ThroughMessageID); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

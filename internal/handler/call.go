package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

type CallHandler struct {
	callService service.CallService
}

func NewCallHandler(callService service.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

func (h *CallHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/calls", h.startCall).Methods("POST", "OPTIONS")
	router.HandleFunc("/calls/active", h.pollActiveCall).Methods("GET", "OPTIONS")
	router.HandleFunc("/calls/{id}/signal", h.updateSignal).Methods("POST", "OPTIONS")
	router.HandleFunc("/calls/{id}/end", h.endCall).Methods("POST", "OPTIONS")
}

func callIDFromPath(r *http.Request) (uint, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

type StartCallRequest struct {
	ChatID     uint   `json:"chat_id"`
	ReceiverID uint   `json:"receiver_id"`
	CallType   string `json:"call_type"`
}

// @Summary Start call
// @Description Start a call session in the chat; one live call per chat
// @ID start-call
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param callData body StartCallRequest true "Call data"
// @Success 200
// @Failure 403 {object} httputils.ErrorResponse
// @Failure 409 {object} httputils.ErrorResponse
// @Router /calls [post]
func (h *CallHandler) startCall(w http.ResponseWriter, r *http.Request) {
	var request StartCallRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	callID, err := h.callService.Start(r.Context(), request.ChatID, UserID(r), request.ReceiverID, request.CallType)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"success": true, "call_id": callID})
}

// @Summary Poll active call
// @Description The most recent live call session of the chat, or null
// @ID poll-active-call
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param chat_id query int true "Chat ID"
// @Success 200 {object} map[string]service.CallView
// @Failure 403 {object} httputils.ErrorResponse
// @Router /calls/active [get]
func (h *CallHandler) pollActiveCall(w http.ResponseWriter, r *http.Request) {
	rawChatID := r.URL.Query().Get("chat_id")
	chatID, err := strconv.Atoi(rawChatID)
	if err != nil || chatID <= 0 {
		httputils.ResponseError(w, http.StatusBadRequest, "chat_id required")
		return
	}

	call, err := h.callService.Poll(r.Context(), uint(chatID), UserID(r))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"call": call})
}

type UpdateSignalRequest struct {
	SignalData json.RawMessage `json:"signal_data"`
}

// @Summary Update call signal
// @Description Store the latest offer/answer/ICE bundle for the session
// @ID update-call-signal
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Call session ID"
// @Param signalData body UpdateSignalRequest true "Signal payload"
// @Success 200
// @Failure 404 {object} httputils.ErrorResponse
// @Router /calls/{id}/signal [post]
func (h *CallHandler) updateSignal(w http.ResponseWriter, r *http.Request) {
	callID, ok := callIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid call id")
		return
	}

	var request UpdateSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	if err := h.callService.UpdateSignal(r.Context(), callID, request.SignalData); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// @Summary End call
// @Description End the call session; ending twice is harmless
// @ID end-call
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path int true "Call session ID"
// @Success 200
// @Router /calls/{id}/end [post]
func (h *CallHandler) endCall(w http.ResponseWriter, r *http.Request) {
	callID, ok := callIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid call id")
		return
	}

	if err := h.callService.End(r.Context(), callID); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

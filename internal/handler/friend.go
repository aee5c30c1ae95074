package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

type FriendHandler struct {
	friendService service.FriendService
}

func NewFriendHandler(friendService service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/friends/requests", h.listRequests).Methods("GET", "OPTIONS")
	router.HandleFunc("/friends/request", h.sendRequest).Methods("POST", "OPTIONS")
	router.HandleFunc("/friends/accept", h.acceptRequest).Methods("POST", "OPTIONS")
	router.HandleFunc("/friends/reject", h.rejectRequest).Methods("POST", "OPTIONS")
}

// @Summary Pending friend requests
// @Description Incoming pending requests, newest first
// @ID list-friend-requests
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} map[string][]service.FriendRequestView
// @Failure 401 {object} httputils.ErrorResponse
// @Router /friends/requests [get]
func (h *FriendHandler) listRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.friendService.ListPendingIncoming(r.Context(), UserID(r))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

type SendFriendRequestRequest struct {
	Username string `json:"username"`
}

// @Summary Send friend request
// @Description Send a friend request by username
// @ID send-friend-request
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param requestData body SendFriendRequestRequest true "Target username"
// @Success 200
// @Failure 404 {object} httputils.ErrorResponse
// @Failure 409 {object} httputils.ErrorResponse
// @Router /friends/request [post]
func (h *FriendHandler) sendRequest(w http.ResponseWriter, r *http.Request) {
	var request SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	requestID, err := h.friendService.SendRequest(r.Context(), UserID(r), request.Username)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"success": true, "request_id": requestID})
}

type FriendDecisionRequest struct {
	RequestID uint `json:"request_id"`
}

// @Summary Accept friend request
// @Description Accept a pending request and open the shared direct chat
// @ID accept-friend-request
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param requestData body FriendDecisionRequest true "Request id"
// @Success 200
// @Failure 404 {object} httputils.ErrorResponse
// @Router /friends/accept [post]
func (h *FriendHandler) acceptRequest(w http.ResponseWriter, r *http.Request) {
	var request FriendDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	chatID, err := h.friendService.Accept(r.Context(), request.RequestID, UserID(r))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"success": true, "chat_id": chatID})
}

// @Summary Reject friend request
// @Description Reject a pending request; repeated calls are a no-op
// @ID reject-friend-request
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param requestData body FriendDecisionRequest true "Request id"
// @Success 200
// @Router /friends/reject [post]
func (h *FriendHandler) rejectRequest(w http.ResponseWriter, r *http.Request) {
	var request FriendDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	if err := h.friendService.Reject(r.Context(), request.RequestID, UserID(r)); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

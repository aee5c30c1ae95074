package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/auth"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/httputils"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

type UserHandler struct {
	userService     service.UserService
	presenceService service.PresenceService
}

func NewUserHandler(userService service.UserService, presenceService service.PresenceService) *UserHandler {
	return &UserHandler{userService: userService, presenceService: presenceService}
}

func (h *UserHandler) RegisterRoutes(public, protected *mux.Router) {
	public.HandleFunc("/register", h.registerUser).Methods("POST", "OPTIONS")
	public.HandleFunc("/login", h.loginUser).Methods("POST", "OPTIONS")
	protected.HandleFunc("/logout", h.logoutUser).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/search", h.searchUsers).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/profile", h.getProfile).Methods("GET", "OPTIONS")
	protected.HandleFunc("/users/profile", h.updateProfile).Methods("POST", "OPTIONS")
	protected.HandleFunc("/users/heartbeat", h.heartbeat).Methods("POST", "OPTIONS")
}

type TokenResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Register
// @Description Register an account
// @ID register
// @Accept json
// @Produce json
// @Success 201 {object} TokenResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 409 {object} httputils.ErrorResponse
// @Failure 500 {object} httputils.ErrorResponse
// @Param registerData body RegisterRequest true "Register data"
// @Router /register [post]
func (h *UserHandler) registerUser(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	user, err := h.userService.Register(r.Context(), request.Username, request.Nickname, request.Email, request.Password)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}

	if err := h.presenceService.MarkOnline(r.Context(), user.ID); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	httputils.ResponseJSON(w, http.StatusCreated, TokenResponse{Token: token, User: user})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// @Summary Login
// @Description Log into an account
// @ID login
// @Accept json
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 400 {object} httputils.ErrorResponse
// @Failure 401 {object} httputils.ErrorResponse
// @Failure 500 {object} httputils.ErrorResponse
// @Param loginData body LoginRequest true "Login data"
// @Router /login [post]
func (h *UserHandler) loginUser(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	user, err := h.userService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}

	if err := h.presenceService.MarkOnline(r.Context(), user.ID); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, TokenResponse{Token: token, User: user})
}

// @Summary Logout
// @Description Mark the current user offline
// @ID logout
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200
// @Failure 401 {object} httputils.ErrorResponse
// @Router /logout [post]
func (h *UserHandler) logoutUser(w http.ResponseWriter, r *http.Request) {
	if err := h.presenceService.MarkOffline(r.Context(), UserID(r)); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// @Summary Heartbeat
// @Description Keep the current user's online flag alive
// @ID heartbeat
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200
// @Failure 401 {object} httputils.ErrorResponse
// @Router /users/heartbeat [post]
func (h *UserHandler) heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.presenceService.Heartbeat(r.Context(), UserID(r)); err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// @Summary Search users
// @Description Case-insensitive search over usernames and nicknames
// @ID search-users
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param query query string true "Search query"
// @Success 200 {object} map[string][]model.User
// @Failure 400 {object} httputils.ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) searchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), UserID(r), r.URL.Query().Get("query"))
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"users": users})
}

// @Summary Get profile
// @Description Get a user's profile; defaults to the current user
// @ID get-profile
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param user_id query int false "User ID"
// @Success 200 {object} map[string]model.User
// @Failure 404 {object} httputils.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	var profileID uint
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputils.ResponseError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		profileID = uint(parsed)
	}

	user, err := h.userService.Profile(r.Context(), UserID(r), profileID)
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]any{"user": user})
}

type UpdateProfileRequest struct {
	Nickname    *string `json:"nickname"`
	AvatarURL   *string `json:"avatar_url"`
	StatusText  *string `json:"status_text"`
	StatusEmoji *string `json:"status_emoji"`
}

// @Summary Update profile
// @Description Update own nickname, avatar or status
// @ID update-profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param profileData body UpdateProfileRequest true "Fields to update"
// @Success 200
// @Failure 400 {object} httputils.ErrorResponse
// @Router /users/profile [post]
func (h *UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var request UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid request format")
		return
	}
	r.Body.Close()

	err := h.userService.UpdateProfile(r.Context(), UserID(r), repository.ProfileUpdate{
		Nickname:    request.Nickname,
		AvatarURL:   request.AvatarURL,
		StatusText:  request.StatusText,
		StatusEmoji: request.StatusEmoji,
	})
	if err != nil {
		httputils.ResponseAppError(w, err)
		return
	}
	httputils.ResponseJSON(w, http.StatusOK, map[string]bool{"success": true})
}

package app

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/handler"
)

func newTestServer() *Server {
	return NewServer(
		zap.NewNop(),
		&handler.UserHandler{},
		&handler.ChatHandler{},
		&handler.FriendHandler{},
		&handler.CallHandler{},
		&handler.FileHandler{},
	)
}

func TestCORSPreflightRequest(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("OPTIONS", "/api/chats", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %v, want *", got)
	}

	// Для preflight gorilla/handlers заполняет Allow-Headers из запроса
	if rr.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("Access-Control-Allow-Headers should not be empty for OPTIONS request")
	}
}

func TestCORSWithActualRequest(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://example.com")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %v, want *", got)
	}
	if rr.Code != 200 {
		t.Errorf("ping status = %d, want 200", rr.Code)
	}
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/api/chats", nil)
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != 401 {
		t.Errorf("unauthenticated request status = %d, want 401", rr.Code)
	}
}

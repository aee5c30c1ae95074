package app

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/handler"
)

type Server struct {
	router *mux.Router
	log    *zap.Logger
}

func NewServer(
	log *zap.Logger,
	userHandler *handler.UserHandler,
	chatHandler *handler.ChatHandler,
	friendHandler *handler.FriendHandler,
	callHandler *handler.CallHandler,
	fileHandler *handler.FileHandler,
) *Server {
	router := mux.NewRouter()
	router.Use(handler.RequestLogger(log))

	router.HandleFunc("/ping", handler.Ping).Methods("GET", "OPTIONS")

	// Регистрация и вход доступны без токена, остальное за Auth
	public := router.PathPrefix("/api").Subrouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(handler.Auth)

	userHandler.RegisterRoutes(public, protected)
	chatHandler.RegisterRoutes(protected)
	friendHandler.RegisterRoutes(protected)
	callHandler.RegisterRoutes(protected)
	fileHandler.RegisterRoutes(protected)

	swaggerHandler := httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	)
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
	router.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	return &Server{router: router, log: log}
}

func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
	)
	return cors(s.router)
}

func (s *Server) Run(port string) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	s.log.Info("server starting", zap.String("port", port))
	return srv.ListenAndServe()
}

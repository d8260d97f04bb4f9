package server

import (
	"fmt"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/saurabh-eg/Tasksync/internal/service"
)

type Server struct {
	svc *service.Service
}

func New(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// Handler — собирает все маршруты; отдельно от Start, чтобы в тестах
// поднимать сервер через httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/register", s.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", s.handleLogin)       // POST
	mux.HandleFunc("/api/auth/me", s.withAuth(s.handleMe)) // GET

	mux.HandleFunc("/api/tasks", s.withAuth(s.handleTasks))                     // GET список, POST создание
	mux.HandleFunc("/api/tasks/stats/summary", s.withAuth(s.handleStats))       // GET
	mux.HandleFunc("/api/tasks/", s.withAuth(s.handleTaskByID))                 // GET, PUT, DELETE (/api/tasks/{id})
	mux.HandleFunc("/api/health", s.handleHealth)                               // GET

	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return withCORS(mux)
}

func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	fmt.Println("[web] сервер стартовал на", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// CORS как у старого сервера: открыто всем, preflight отвечаем сразу.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

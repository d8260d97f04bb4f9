// @title Tasksync API
// @version 1.0
// @description Task manager backend with JWT authorization
// @BasePath /api
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/store"
)

// RegisterRequest — тело запроса при регистрации
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest — тело запроса для входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse — токен + профиль, как его ждёт клиент
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        model.User `json:"user"`
}

// TaskCreateRequest — тело запроса при создании задачи
type TaskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user model.User)

// Middleware-проверка JWT: достаём bearer-токен, проверяем подпись и
// что пользователь ещё существует.
func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		user, err := s.svc.VerifyToken(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r, user)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// Регистрация нового пользователя
// handleRegister godoc
// @Summary      Register
// @Description  Creates user and returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        data body RegisterRequest true "New user"
// @Success      200 {object} TokenResponse
// @Failure      400 {string} string "invalid json / email already registered"
// @Router       /auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	token, user, err := s.svc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			http.Error(w, "email already registered", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Вход по email и паролю
// handleLogin godoc
// @Summary      Login
// @Description  Authenticates user and returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "User credentials"
// @Success      200 {object} TokenResponse
// @Failure      401 {string} string "invalid email or password"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	token, user, err := s.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	writeJSON(w, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// Текущий пользователь
// handleMe godoc
// @Summary      Current user
// @Produce      json
// @Success      200 {object} model.User
// @Security     BearerAuth
// @Router       /auth/me [get]
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user model.User) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, user)
}

// Список задач и создание новой
// handleTasks godoc
// @Summary      List or create tasks
// @Description  GET returns tasks filtered by completed/search/sort_by/order, POST creates a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        completed query bool false "completed filter"
// @Param        search query string false "substring search"
// @Param        sort_by query string false "created_at | updated_at | due_date | title"
// @Param        order query string false "asc | desc"
// @Success      200 {array} model.Task
// @Security     BearerAuth
// @Router       /tasks [get]
// @Router       /tasks [post]
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request, user model.User) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()

		f := model.FilterAll
		switch q.Get("completed") {
		case "true":
			f = model.FilterCompleted
		case "false":
			f = model.FilterPending
		}
		by := model.SortField(q.Get("sort_by"))
		order := model.SortOrder(q.Get("order"))

		list, err := s.svc.ListTasks(r.Context(), user.ID, f, q.Get("search"), by, order)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)

	case http.MethodPost:
		var req TaskCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			http.Error(w, "title required", http.StatusBadRequest)
			return
		}
		t, err := s.svc.CreateTask(r.Context(), user.ID, req.Title, req.Description, req.DueDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, t)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Работа с одной задачей по ID (просмотр, обновление, удаление)
// handleTaskByID godoc
// @Summary      Task by ID
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        data body model.TaskUpdate true "Fields to update"
// @Success      200 {object} model.Task
// @Failure      404 {string} string "not found"
// @Security     BearerAuth
// @Router       /tasks/{id} [get]
// @Router       /tasks/{id} [put]
// @Router       /tasks/{id} [delete]
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request, user model.User) {
	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/tasks/"))
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		t, err := s.svc.GetTask(r.Context(), user.ID, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, t)

	case http.MethodPut:
		var upd model.TaskUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t, err := s.svc.UpdateTask(r.Context(), user.ID, id, upd)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, t)

	case http.MethodDelete:
		if err := s.svc.DeleteTask(r.Context(), user.ID, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "task not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"message": "Task deleted successfully"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Сводка по задачам пользователя
// handleStats godoc
// @Summary      Task stats
// @Produce      json
// @Success      200 {object} model.TaskStats
// @Security     BearerAuth
// @Router       /tasks/stats/summary [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, user model.User) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st, err := s.svc.Stats(r.Context(), user.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, st)
}

// handleHealth godoc
// @Summary      Health check
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

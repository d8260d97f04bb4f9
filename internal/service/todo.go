package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/auth"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/store"
)

// Service — серверная бизнес-логика: регистрация, аутентификация и CRUD
// задач поверх хранилища. Выдаёт JWT, шлёт события в аудит (если он есть).
type Service struct {
	store    store.Store
	secret   string
	tokenTTL time.Duration
	audit    AuditLogger
}

func New(st store.Store, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		store:    st,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// SetAuditLogger — подключает аудит; nil значит «выключен»
func (s *Service) SetAuditLogger(l AuditLogger) { s.audit = l }

// Register — заводит пользователя и сразу выдаёт токен
func (s *Service) Register(ctx context.Context, email, password, name string) (string, model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || !strings.Contains(email, "@") {
		return "", model.User{}, fmt.Errorf("invalid email")
	}
	if password == "" {
		return "", model.User{}, fmt.Errorf("empty password")
	}
	if name == "" {
		return "", model.User{}, fmt.Errorf("empty name")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", model.User{}, err
	}
	rec := store.UserRecord{
		User: model.User{
			ID:        newID(),
			Email:     email,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		},
		HashedPassword: hash,
	}
	if err := s.store.InsertUser(ctx, rec); err != nil {
		return "", model.User{}, err
	}
	token, err := auth.NewToken(s.secret, rec.ID, s.tokenTTL)
	if err != nil {
		return "", model.User{}, err
	}
	return token, rec.User, nil
}

// Authenticate — проверяет пару email/пароль и выдаёт токен
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, model.User, error) {
	rec, err := s.store.UserByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil || !auth.CheckPassword(password, rec.HashedPassword) {
		// одинаковый ответ и на «нет такого», и на «пароль не тот»
		return "", model.User{}, ErrBadCredentials
	}
	token, err := auth.NewToken(s.secret, rec.ID, s.tokenTTL)
	if err != nil {
		return "", model.User{}, err
	}
	return token, rec.User, nil
}

// VerifyToken — проверяет токен и возвращает его владельца
func (s *Service) VerifyToken(ctx context.Context, token string) (model.User, error) {
	userID, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return model.User{}, ErrBadCredentials
	}
	rec, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return model.User{}, ErrBadCredentials
	}
	return rec.User, nil
}

func (s *Service) CreateTask(ctx context.Context, userID, title, description string, due *time.Time) (model.Task, error) {
	t, err := model.NewTask(title, description, userID)
	if err != nil {
		return model.Task{}, err
	}
	if due != nil {
		d := *due
		t.DueDate = &d
	}
	if err := s.store.InsertTask(ctx, t); err != nil {
		return model.Task{}, err
	}
	s.logEvent(ctx, Event{Op: "create", TaskID: t.ID, UserID: userID, At: time.Now().UTC(), After: &t})
	return t, nil
}

// ListTasks — список задач пользователя с той же проекцией, что у клиента:
// статус → поиск → стабильная сортировка.
func (s *Service) ListTasks(ctx context.Context, userID string, f model.StatusFilter, search string, by model.SortField, order model.SortOrder) ([]model.Task, error) {
	tasks, err := s.store.TasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// кривые параметры не валим, а откатываем на дефолты — как старый сервер
	if !f.Valid() {
		f = model.FilterAll
	}
	if !by.Valid() {
		by = model.SortByCreatedAt
	}
	if !order.Valid() {
		order = model.OrderDesc
	}
	return model.Project(tasks, f, search, by, order), nil
}

func (s *Service) GetTask(ctx context.Context, userID, id string) (model.Task, error) {
	return s.store.TaskByID(ctx, id, userID)
}

func (s *Service) UpdateTask(ctx context.Context, userID, id string, upd model.TaskUpdate) (model.Task, error) {
	before, err := s.store.TaskByID(ctx, id, userID)
	if err != nil {
		return model.Task{}, err
	}
	after := upd.Apply(before, time.Now().UTC())
	if err := s.store.ReplaceTask(ctx, after); err != nil {
		return model.Task{}, err
	}
	s.logEvent(ctx, Event{Op: "update", TaskID: id, UserID: userID, At: time.Now().UTC(), Before: &before, After: &after})
	return after, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	before, err := s.store.TaskByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id, userID); err != nil {
		return err
	}
	s.logEvent(ctx, Event{Op: "delete", TaskID: id, UserID: userID, At: time.Now().UTC(), Before: &before})
	return nil
}

// Stats — агрегированные счётчики по задачам пользователя
func (s *Service) Stats(ctx context.Context, userID string) (model.TaskStats, error) {
	tasks, err := s.store.TasksByUser(ctx, userID)
	if err != nil {
		return model.TaskStats{}, err
	}
	return model.ComputeStats(tasks, time.Now()), nil
}

func (s *Service) logEvent(ctx context.Context, e Event) {
	s.bumpCounter(e.Op)
	if s.audit == nil {
		return
	}
	if err := s.audit.LogEvent(ctx, e); err != nil {
		// аудит не должен ронять основную операцию
		fmt.Println("[audit] ошибка записи события:", err)
	}
}

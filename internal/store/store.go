package store

import (
	"context"
	"errors"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

var (
	ErrNotFound   = errors.New("store: not found")
	ErrEmailTaken = errors.New("store: email already registered")
)

// UserRecord — пользователь вместе с хэшем пароля.
// Наружу (в API) хэш никогда не отдаём, только model.User.
type UserRecord struct {
	model.User
	HashedPassword string `json:"hashed_password"`
}

// UserStore — хранилище пользователей
type UserStore interface {
	InsertUser(ctx context.Context, u UserRecord) error
	UserByEmail(ctx context.Context, email string) (UserRecord, error)
	UserByID(ctx context.Context, id string) (UserRecord, error)
}

// TaskStore — хранилище задач. Фильтрация/сортировка списка делается
// выше, в сервисе — адаптеры остаются тонкими.
type TaskStore interface {
	InsertTask(ctx context.Context, t model.Task) error
	TasksByUser(ctx context.Context, userID string) ([]model.Task, error)
	TaskByID(ctx context.Context, id, userID string) (model.Task, error)
	ReplaceTask(ctx context.Context, t model.Task) error
	DeleteTask(ctx context.Context, id, userID string) error
}

// Store — полное серверное хранилище
type Store interface {
	UserStore
	TaskStore
}

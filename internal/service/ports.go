package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// ErrBadCredentials — неправильная пара email/пароль или битый токен.
// Наружу всегда один и тот же, чтобы не подсказывать, что именно не так.
var ErrBadCredentials = errors.New("service: invalid credentials")

// Event — событие аудита для мутаций задач
type Event struct {
	Op     string      `json:"op"` // "create", "update", "delete"
	TaskID string      `json:"task_id"`
	UserID string      `json:"user_id"`
	At     time.Time   `json:"at"`
	Before *model.Task `json:"before,omitempty"`
	After  *model.Task `json:"after,omitempty"`
}

// AuditLogger — куда писать события мутаций
type AuditLogger interface {
	LogEvent(ctx context.Context, e Event) error
}

func newID() string { return uuid.NewString() }

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task — задача в том виде, в котором её отдаёт сервер
// (и в котором мы её зеркалим в локальном кэше).
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"` // дедлайн, необязательный
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      string     `json:"user_id"`
}

// NewTask — создаёт новую задачу с базовыми полями, id генерим сами
func NewTask(title, description, userID string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, errors.New("title is empty")
	}
	now := time.Now().UTC()
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}, nil
}

// TaskUpdate — частичное обновление: nil-поле значит «не трогать».
// Очистить due_date через него нельзя, так исторически работает сервер.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// Empty — true если обновление ничего не меняет
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.DueDate == nil && u.Completed == nil
}

// Apply — накладывает частичное обновление на задачу и штампует UpdatedAt,
// чтобы локальные и серверные версии задачи сравнивались по времени одинаково.
func (u TaskUpdate) Apply(t Task, now time.Time) Task {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		t.Description = strings.TrimSpace(*u.Description)
	}
	if u.DueDate != nil {
		d := *u.DueDate
		t.DueDate = &d
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	t.UpdatedAt = now
	return t
}

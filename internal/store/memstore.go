package store

import (
	"context"
	"strings"
	"sync"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// MemStore — хранилище в памяти: для тестов и для запуска без базы.
type MemStore struct {
	mu    sync.Mutex
	users map[string]UserRecord // по id
	tasks map[string]model.Task // по id
	order []string              // порядок вставки задач, чтобы листинг был детерминированным
}

func NewMemStore() *MemStore {
	return &MemStore{
		users: make(map[string]UserRecord),
		tasks: make(map[string]model.Task),
	}
}

func (s *MemStore) InsertUser(_ context.Context, u UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemStore) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

func (s *MemStore) UserByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return u, nil
}

func (s *MemStore) InsertTask(_ context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *MemStore) TasksByUser(_ context.Context, userID string) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Task, 0)
	for _, id := range s.order {
		t, ok := s.tasks[id]
		if ok && t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *MemStore) TaskByID(_ context.Context, id, userID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (s *MemStore) ReplaceTask(_ context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *MemStore) DeleteTask(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// JSONStore — файловое хранилище сервера: всё в одном JSON-файле,
// целиком перечитывается при старте и целиком переписывается после
// каждой мутации (tmp + rename). Для одного пользователя и небольших
// списков этого за глаза.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	users map[string]UserRecord
	tasks map[string]model.Task
	order []string
}

type jsonDoc struct {
	Users []UserRecord `json:"users"`
	Tasks []model.Task `json:"tasks"`
}

func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, errors.New("empty store path")
	}
	s := &JSONStore{
		path:  path,
		users: make(map[string]UserRecord),
		tasks: make(map[string]model.Task),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	for _, u := range doc.Users {
		s.users[u.ID] = u
	}
	for _, t := range doc.Tasks {
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return nil
}

// persist — вызывается под мьютексом
func (s *JSONStore) persist() error {
	doc := jsonDoc{
		Users: make([]UserRecord, 0, len(s.users)),
		Tasks: make([]model.Task, 0, len(s.tasks)),
	}
	for _, u := range s.users {
		doc.Users = append(doc.Users, u)
	}
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok {
			doc.Tasks = append(doc.Tasks, t)
		}
	}

	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONStore) InsertUser(_ context.Context, u UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	s.users[u.ID] = u
	return s.persist()
}

func (s *JSONStore) UserByEmail(_ context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return UserRecord{}, ErrNotFound
}

func (s *JSONStore) UserByID(_ context.Context, id string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return UserRecord{}, ErrNotFound
	}
	return u, nil
}

func (s *JSONStore) InsertTask(_ context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return s.persist()
}

func (s *JSONStore) TasksByUser(_ context.Context, userID string) ([]model.Task, error) {
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

func (s *JSONStore) TaskByID(_ context.Context, id, userID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (s *JSONStore) ReplaceTask(_ context.Context, t model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	s.tasks[t.ID] = t
	return s.persist()
}

func (s *JSONStore) DeleteTask(_ context.Context, id, userID string) error {
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
	return s.persist()
}

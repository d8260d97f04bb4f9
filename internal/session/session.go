package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saurabh-eg/Tasksync/internal/kvstore"
	"github.com/saurabh-eg/Tasksync/internal/model"
)

// Manager владеет аутентифицированной сессией: токен + профиль.
// Хранилище вкалывается через конструктор, никаких глобальных синглтонов —
// в тестах поднимаем сколько угодно независимых экземпляров.
//
// Инвариант: либо есть и токен, и пользователь, либо нет ни того ни другого.
type Manager struct {
	kv    kvstore.Store
	token string
	user  *model.User
}

func NewManager(kv kvstore.Store) *Manager {
	return &Manager{kv: kv}
}

// Login — сначала пишем обе записи в хранилище, память трогаем только
// если запись прошла. При ошибке состояние в памяти не меняется.
func (m *Manager) Login(ctx context.Context, token string, user model.User) error {
	if err := m.kv.Set(ctx, kvstore.KeyAuthToken, []byte(token)); err != nil {
		return err
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}
	if err := m.kv.Set(ctx, kvstore.KeyUserData, raw); err != nil {
		return err
	}
	m.token = token
	u := user
	m.user = &u
	return nil
}

// Logout — убирает обе записи из хранилища, потом чистит память.
// Контракт ошибок тот же, что у Login: неудача — память не трогаем.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.kv.Delete(ctx, kvstore.KeyAuthToken); err != nil {
		return err
	}
	if err := m.kv.Delete(ctx, kvstore.KeyUserData); err != nil {
		return err
	}
	m.token = ""
	m.user = nil
	return nil
}

// LoadAuthData — стартовое чтение сессии. Всегда оставляет безопасное
// состояние: если чего-то нет или чтение сломалось — остаёмся
// неаутентифицированными. Ошибку возвращаем, но вызывающий на старте
// обычно просто логирует её и едет дальше.
func (m *Manager) LoadAuthData(ctx context.Context) error {
	m.token = ""
	m.user = nil

	rawToken, okToken, err := m.kv.Get(ctx, kvstore.KeyAuthToken)
	if err != nil {
		return err
	}
	rawUser, okUser, err := m.kv.Get(ctx, kvstore.KeyUserData)
	if err != nil {
		return err
	}
	if !okToken || !okUser {
		return nil
	}

	var u model.User
	if err := json.Unmarshal(rawUser, &u); err != nil {
		return fmt.Errorf("session: unmarshal user: %w", err)
	}
	m.token = string(rawToken)
	m.user = &u
	return nil
}

// UpdateUser — заменяет только профиль, токен не трогает.
func (m *Manager) UpdateUser(ctx context.Context, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}
	if err := m.kv.Set(ctx, kvstore.KeyUserData, raw); err != nil {
		return err
	}
	u := user
	m.user = &u
	return nil
}

func (m *Manager) IsAuthenticated() bool {
	return m.token != "" && m.user != nil
}

func (m *Manager) Token() string { return m.token }

// User — текущий профиль; второй результат false если сессии нет
func (m *Manager) User() (model.User, bool) {
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

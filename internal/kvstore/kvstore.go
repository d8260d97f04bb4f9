package kvstore

import (
	"context"
	"fmt"
)

// Ключи, под которыми клиентское ядро держит свои данные
const (
	KeyAuthToken    = "auth_token"
	KeyUserData     = "user_data"
	KeyOfflineTasks = "offline_tasks"
)

// Store — абстракция долговременного key-value хранилища.
// Get возвращает (nil, false, nil), если ключа нет.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PersistenceError — ошибка чтения или записи durable-хранилища.
// Кто её глотает, а кто пробрасывает — решает вызывающий код.
type PersistenceError struct {
	Op  string // "get", "set", "delete"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("kvstore: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

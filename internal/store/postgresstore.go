package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/saurabh-eg/Tasksync/internal/model"
)

// PostgresStore — хранилище в Postgres. Схему создаём сами при старте,
// чтобы не таскать отдельные миграции.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id              TEXT PRIMARY KEY,
			email           TEXT NOT NULL UNIQUE,
			name            TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL,
			hashed_password TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			due_date    TIMESTAMPTZ,
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL,
			user_id     TEXT NOT NULL
		);
	`)
	return err
}

func (s *PostgresStore) InsertUser(ctx context.Context, u UserRecord) error {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`, u.Email).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, created_at, hashed_password)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.Name, u.CreatedAt, u.HashedPassword)
	return err
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at, hashed_password
		FROM users WHERE lower(email) = lower($1)
	`, email))
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at, hashed_password
		FROM users WHERE id = $1
	`, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt, &u.HashedPassword)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserRecord{}, ErrNotFound
		}
		return UserRecord{}, err
	}
	return u, nil
}

func (s *PostgresStore) InsertTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, due_date, completed, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Title, t.Description, t.DueDate, t.Completed, t.CreatedAt, t.UpdatedAt, t.UserID)
	return err
}

func (s *PostgresStore) TasksByUser(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, due_date, completed, created_at, updated_at, user_id
		FROM tasks WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Task, 0)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
			&t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *PostgresStore) TaskByID(ctx context.Context, id, userID string) (model.Task, error) {
	var t model.Task
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, due_date, completed, created_at, updated_at, user_id
		FROM tasks WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt, &t.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return t, nil
}

func (s *PostgresStore) ReplaceTask(ctx context.Context, t model.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, due_date = $4, completed = $5, updated_at = $6
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.DueDate, t.Completed, t.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/kvstore"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/session"
)

type fakeKV struct {
	data     map[string][]byte
	setErrOn string // ключ, на котором Set падает
	getErr   error
	delErr   error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	raw, ok := f.data[key]
	return raw, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value []byte) error {
	if key == f.setErrOn {
		return errors.New("write failed")
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	f.data[key] = cp
	return nil
}

func (f *fakeKV) Delete(_ context.Context, key string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.data, key)
	return nil
}

func sampleUser() model.User {
	return model.User{
		ID: "u1", Email: "a@b.c", Name: "Анна",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestLogin_PersistsAndPublishes(t *testing.T) {
	kv := newFakeKV()
	m := session.NewManager(kv)
	ctx := context.Background()

	if m.IsAuthenticated() {
		t.Fatal("fresh manager must be unauthenticated")
	}
	if err := m.Login(ctx, "tok123", sampleUser()); err != nil {
		t.Fatalf("Login err: %v", err)
	}

	if !m.IsAuthenticated() {
		t.Fatal("expected authenticated after login")
	}
	if m.Token() != "tok123" {
		t.Fatalf("token = %q", m.Token())
	}
	u, ok := m.User()
	if !ok || u.ID != "u1" {
		t.Fatalf("user = %+v ok=%v", u, ok)
	}
	if string(kv.data[kvstore.KeyAuthToken]) != "tok123" {
		t.Fatal("token not persisted")
	}
	if _, ok := kv.data[kvstore.KeyUserData]; !ok {
		t.Fatal("user not persisted")
	}
}

func TestLogin_TokenWriteFails(t *testing.T) {
	kv := newFakeKV()
	kv.setErrOn = kvstore.KeyAuthToken
	m := session.NewManager(kv)

	if err := m.Login(context.Background(), "tok", sampleUser()); err == nil {
		t.Fatal("expected error")
	}
	if m.IsAuthenticated() {
		t.Fatal("failed login must not authenticate")
	}
}

func TestLogin_UserWriteFails(t *testing.T) {
	kv := newFakeKV()
	kv.setErrOn = kvstore.KeyUserData
	m := session.NewManager(kv)

	if err := m.Login(context.Background(), "tok", sampleUser()); err == nil {
		t.Fatal("expected error")
	}
	// всё-или-ничего: память не трогаем, пока обе записи не прошли
	if m.IsAuthenticated() || m.Token() != "" {
		t.Fatal("failed login must leave memory untouched")
	}
	if _, ok := m.User(); ok {
		t.Fatal("failed login must not publish user")
	}
}

func TestLogout(t *testing.T) {
	kv := newFakeKV()
	m := session.NewManager(kv)
	ctx := context.Background()

	_ = m.Login(ctx, "tok", sampleUser())
	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout err: %v", err)
	}
	if m.IsAuthenticated() || m.Token() != "" {
		t.Fatal("expected unauthenticated after logout")
	}
	if len(kv.data) != 0 {
		t.Fatalf("expected storage wiped, left %d keys", len(kv.data))
	}
}

func TestLogout_DeleteFails(t *testing.T) {
	kv := newFakeKV()
	m := session.NewManager(kv)
	ctx := context.Background()

	_ = m.Login(ctx, "tok", sampleUser())
	kv.delErr = errors.New("storage down")
	if err := m.Logout(ctx); err == nil {
		t.Fatal("expected error")
	}
	// память не трогаем при неудаче — сессия остаётся живой
	if !m.IsAuthenticated() {
		t.Fatal("failed logout must keep session")
	}
}

func TestLoadAuthData_RoundTrip(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	_ = session.NewManager(kv).Login(ctx, "tok", sampleUser())

	m := session.NewManager(kv)
	if err := m.LoadAuthData(ctx); err != nil {
		t.Fatalf("LoadAuthData err: %v", err)
	}
	if !m.IsAuthenticated() || m.Token() != "tok" {
		t.Fatal("expected restored session")
	}
	u, _ := m.User()
	if u.Email != "a@b.c" || u.Name != "Анна" {
		t.Fatalf("restored user mismatch: %+v", u)
	}
}

func TestLoadAuthData_MissingKeys(t *testing.T) {
	ctx := context.Background()

	// нет вообще ничего
	m := session.NewManager(newFakeKV())
	if err := m.LoadAuthData(ctx); err != nil {
		t.Fatalf("LoadAuthData err: %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("empty storage must not authenticate")
	}

	// есть токен, но нет профиля — половинка сессии не считается
	kv := newFakeKV()
	kv.data[kvstore.KeyAuthToken] = []byte("tok")
	m = session.NewManager(kv)
	if err := m.LoadAuthData(ctx); err != nil {
		t.Fatalf("LoadAuthData err: %v", err)
	}
	if m.IsAuthenticated() {
		t.Fatal("token without user must not authenticate")
	}
}

func TestLoadAuthData_ReadError(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()
	_ = session.NewManager(kv).Login(ctx, "tok", sampleUser())

	kv.getErr = errors.New("storage down")
	m := session.NewManager(kv)
	if err := m.LoadAuthData(ctx); err == nil {
		t.Fatal("expected error")
	}
	if m.IsAuthenticated() {
		t.Fatal("read failure must leave manager unauthenticated")
	}
}

func TestLoadAuthData_CorruptUser(t *testing.T) {
	kv := newFakeKV()
	kv.data[kvstore.KeyAuthToken] = []byte("tok")
	kv.data[kvstore.KeyUserData] = []byte("{oops")

	m := session.NewManager(kv)
	if err := m.LoadAuthData(context.Background()); err == nil {
		t.Fatal("expected error on corrupt user data")
	}
	if m.IsAuthenticated() {
		t.Fatal("corrupt user data must not authenticate")
	}
}

func TestUpdateUser_KeepsToken(t *testing.T) {
	kv := newFakeKV()
	m := session.NewManager(kv)
	ctx := context.Background()

	_ = m.Login(ctx, "tok", sampleUser())

	updated := sampleUser()
	updated.Name = "Анна К."
	if err := m.UpdateUser(ctx, updated); err != nil {
		t.Fatalf("UpdateUser err: %v", err)
	}
	if m.Token() != "tok" {
		t.Fatal("token must survive profile update")
	}
	u, _ := m.User()
	if u.Name != "Анна К." {
		t.Fatalf("user not updated: %+v", u)
	}

	// перезагрузка видит новый профиль
	m2 := session.NewManager(kv)
	_ = m2.LoadAuthData(ctx)
	u2, _ := m2.User()
	if u2.Name != "Анна К." {
		t.Fatalf("persisted user not updated: %+v", u2)
	}
}

func TestUpdateUser_WriteFails(t *testing.T) {
	kv := newFakeKV()
	m := session.NewManager(kv)
	ctx := context.Background()

	_ = m.Login(ctx, "tok", sampleUser())
	kv.setErrOn = kvstore.KeyUserData

	updated := sampleUser()
	updated.Name = "Новое имя"
	if err := m.UpdateUser(ctx, updated); err == nil {
		t.Fatal("expected error")
	}
	u, _ := m.User()
	if u.Name != "Анна" {
		t.Fatal("failed update must not change in-memory profile")
	}
}

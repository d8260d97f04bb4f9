package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/server"
	"github.com/saurabh-eg/Tasksync/internal/service"
	"github.com/saurabh-eg/Tasksync/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(store.NewMemStore(), "test-secret", time.Hour)
	ts := httptest.NewServer(server.New(svc).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func registerUser(t *testing.T, ts *httptest.Server, email string) server.TokenResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", server.RegisterRequest{
		Email: email, Password: "pass123", Name: "Тест",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	return decode[server.TokenResponse](t, resp)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	reg := registerUser(t, ts, "a@b.c")
	if reg.AccessToken == "" || reg.TokenType != "bearer" || reg.User.Email != "a@b.c" {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", server.LoginRequest{
		Email: "a@b.c", Password: "pass123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	login := decode[server.TokenResponse](t, resp)
	if login.AccessToken == "" || login.User.ID != reg.User.ID {
		t.Fatalf("unexpected login response: %+v", login)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, "a@b.c")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", server.RegisterRequest{
		Email: "a@b.c", Password: "x", Name: "y",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerUser(t, ts, "a@b.c")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", server.LoginRequest{
		Email: "a@b.c", Password: "wrong",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	// без токена
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	// с мусорным токеном
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks", "garbage", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", reg.AccessToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status %d", resp.StatusCode)
	}
	me := decode[model.User](t, resp)
	if me.ID != reg.User.ID || me.Email != "a@b.c" {
		t.Fatalf("me = %+v", me)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")
	tok := reg.AccessToken

	// создание
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", tok, server.TaskCreateRequest{
		Title: "Купить молоко", Description: "2 литра",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	created := decode[model.Task](t, resp)
	if created.ID == "" || created.Title != "Купить молоко" {
		t.Fatalf("created = %+v", created)
	}

	// чтение по id
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks/"+created.ID, tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", resp.StatusCode)
	}
	got := decode[model.Task](t, resp)
	if got.ID != created.ID {
		t.Fatalf("got = %+v", got)
	}

	// частичное обновление
	done := true
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/tasks/"+created.ID, tok, model.TaskUpdate{Completed: &done})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}
	updated := decode[model.Task](t, resp)
	if !updated.Completed || updated.Title != "Купить молоко" {
		t.Fatalf("updated = %+v", updated)
	}

	// удаление с фирменным сообщением
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/tasks/"+created.ID, tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	msg := decode[map[string]string](t, resp)
	if msg["message"] != "Task deleted successfully" {
		t.Fatalf("delete message = %q", msg["message"])
	}

	// после удаления — 404
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks/"+created.ID, tok, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCreateTask_EmptyTitle(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", reg.AccessToken, server.TaskCreateRequest{Title: "   "})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListTasks_QueryParams(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")
	tok := reg.AccessToken

	mk := func(title string) model.Task {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", tok, server.TaskCreateRequest{Title: title})
		return decode[model.Task](t, resp)
	}
	alpha := mk("Alpha")
	beta := mk("Beta")

	done := true
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/tasks/"+beta.ID, tok, model.TaskUpdate{Completed: &done})
	resp.Body.Close()

	// completed=false — только незакрытые
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?completed=false", tok, nil)
	pending := decode[[]model.Task](t, resp)
	if len(pending) != 1 || pending[0].ID != alpha.ID {
		t.Fatalf("pending = %+v", pending)
	}

	// completed=true — только закрытые
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?completed=true", tok, nil)
	completed := decode[[]model.Task](t, resp)
	if len(completed) != 1 || completed[0].ID != beta.ID {
		t.Fatalf("completed = %+v", completed)
	}

	// поиск регистронезависимый
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?search=ALPH", tok, nil)
	found := decode[[]model.Task](t, resp)
	if len(found) != 1 || found[0].ID != alpha.ID {
		t.Fatalf("search = %+v", found)
	}

	// сортировка по названию по возрастанию
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks?sort_by=title&order=asc", tok, nil)
	sorted := decode[[]model.Task](t, resp)
	if len(sorted) != 2 || sorted[0].Title != "Alpha" || sorted[1].Title != "Beta" {
		t.Fatalf("sorted = %+v", sorted)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")
	tok := reg.AccessToken

	now := time.Now()
	due := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/tasks", tok, server.TaskCreateRequest{Title: "сегодня", DueDate: &due})
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/tasks/stats/summary", tok, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}
	st := decode[model.TaskStats](t, resp)
	if st.TotalTasks != 1 || st.PendingTasks != 1 || st.DueToday != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "healthy" {
		t.Fatalf("health body = %+v", body)
	}
	if _, ok := body["timestamp"]; !ok {
		t.Fatal("health body missing timestamp")
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/tasks", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestTaskByID_BadPath(t *testing.T) {
	ts := newTestServer(t)
	reg := registerUser(t, ts, "a@b.c")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/tasks/abc/def", reg.AccessToken, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for nested path, got %d", resp.StatusCode)
	}
}

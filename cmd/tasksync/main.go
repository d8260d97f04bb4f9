package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/saurabh-eg/Tasksync/internal/api"
	"github.com/saurabh-eg/Tasksync/internal/auth"
	"github.com/saurabh-eg/Tasksync/internal/cache"
	"github.com/saurabh-eg/Tasksync/internal/kvstore"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/session"

	"github.com/google/uuid"
)

// app — всё, что нужно интерактивному клиенту в одном месте
type app struct {
	sess   *session.Manager
	cache  *cache.Cache
	client *api.Client
}

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// локальные данные: по умолчанию файлы, через REDIS_ADDR — общий Redis
	var kv kvstore.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			db, _ = strconv.Atoi(raw)
		}
		kv = kvstore.NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), db, "tasksync:client")
	} else {
		dir := os.Getenv("DATA_DIR")
		if dir == "" {
			dir = "data"
		}
		kv = kvstore.NewFileStore(dir)
	}

	a := &app{
		sess:   session.NewManager(kv),
		cache:  cache.New(kv),
		client: api.NewClient(baseURL),
	}

	ctx := context.Background()

	// Стартовые чтения не должны блокировать запуск: ошибку логируем
	// и остаёмся с безопасным состоянием.
	if err := a.sess.LoadAuthData(ctx); err != nil {
		fmt.Println("[сессия] не удалось прочитать сохранённую сессию:", err)
	}
	if err := a.cache.LoadOfflineTasks(ctx); err != nil {
		fmt.Println("[кэш] не удалось прочитать офлайн-копию:", err)
	}

	if a.sess.IsAuthenticated() {
		if auth.TokenExpired(a.sess.Token()) {
			fmt.Println("[сессия] сохранённый токен истёк, нужно войти заново")
			a.forceLogout(ctx)
		} else {
			a.client.SetToken(a.sess.Token())
			if u, ok := a.sess.User(); ok {
				fmt.Println("Привет,", u.Name)
			}
			a.refresh(ctx) // подтянуть свежий снимок, офлайн-копия уже на экране
		}
	}

	in := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("== Tasksync ==")
		if a.sess.IsAuthenticated() {
			if u, ok := a.sess.User(); ok {
				fmt.Println("(вы вошли как", u.Email+")")
			}
		} else {
			fmt.Println("(офлайн / не авторизованы)")
		}
		fmt.Println("1)  Войти")
		fmt.Println("2)  Регистрация")
		fmt.Println("3)  Обновить список с сервера")
		fmt.Println("4)  Показать задачи")
		fmt.Println("5)  Фильтр / поиск / сортировка")
		fmt.Println("6)  Добавить задачу")
		fmt.Println("7)  Обновить задачу")
		fmt.Println("8)  Удалить задачу")
		fmt.Println("9)  Статистика")
		fmt.Println("10) Выйти из аккаунта")
		fmt.Println("11) Выход")
		fmt.Print("Выбор: ")

		switch readLine(in) {
		case "1":
			a.handleLogin(ctx, in)
		case "2":
			a.handleRegister(ctx, in)
		case "3":
			a.refresh(ctx)
		case "4":
			printTasks(a.cache.Filtered())
		case "5":
			a.handleProjection(in)
		case "6":
			a.handleAdd(ctx, in)
		case "7":
			a.handleUpdate(ctx, in)
		case "8":
			a.handleDelete(ctx, in)
		case "9":
			a.handleStats(ctx)
		case "10":
			a.handleLogout(ctx)
		case "11":
			fmt.Println("Пока!")
			return
		default:
			fmt.Println("неизвестная команда")
		}
	}
}

func (a *app) handleLogin(ctx context.Context, in *bufio.Scanner) {
	fmt.Print("Email: ")
	email := strings.TrimSpace(readLine(in))
	fmt.Print("Пароль: ")
	password := readLine(in)

	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		fmt.Println("ошибка входа:", err)
		return
	}
	// смена личности — ошибку персиста пробрасываем, с полусохранённой
	// сессией жить нельзя
	if err := a.sess.Login(ctx, resp.AccessToken, resp.User); err != nil {
		fmt.Println("не удалось сохранить сессию:", err)
		return
	}
	a.client.SetToken(resp.AccessToken)
	fmt.Println("OK, добро пожаловать,", resp.User.Name)
	a.refresh(ctx)
}

func (a *app) handleRegister(ctx context.Context, in *bufio.Scanner) {
	fmt.Print("Email: ")
	email := strings.TrimSpace(readLine(in))
	fmt.Print("Имя: ")
	name := strings.TrimSpace(readLine(in))
	fmt.Print("Пароль: ")
	password := readLine(in)

	resp, err := a.client.Register(ctx, email, password, name)
	if err != nil {
		fmt.Println("ошибка регистрации:", err)
		return
	}
	if err := a.sess.Login(ctx, resp.AccessToken, resp.User); err != nil {
		fmt.Println("не удалось сохранить сессию:", err)
		return
	}
	a.client.SetToken(resp.AccessToken)
	fmt.Println("OK, аккаунт создан")
}

// refresh — тянет авторитетный снимок с сервера и целиком заменяет кэш
func (a *app) refresh(ctx context.Context) {
	if !a.sess.IsAuthenticated() {
		fmt.Println("сначала войдите")
		return
	}
	tasks, err := a.client.ListTasks(ctx, api.ListOptions{})
	if err != nil {
		if a.checkUnauthorized(ctx, err) {
			return
		}
		fmt.Println("[офлайн] сервер недоступен, показываем локальную копию:", err)
		return
	}
	if err := a.cache.SetTasks(ctx, tasks); err != nil {
		fmt.Println("[кэш] не удалось сохранить офлайн-копию:", err)
	}
	fmt.Printf("OK, задач: %d\n", len(tasks))
}

func (a *app) handleProjection(in *bufio.Scanner) {
	fmt.Println("Фильтр: 1) все 2) невыполненные 3) выполненные (пусто — не менять)")
	fmt.Print("Выбор: ")
	switch strings.TrimSpace(readLine(in)) {
	case "1":
		a.cache.SetFilter(model.FilterAll)
	case "2":
		a.cache.SetFilter(model.FilterPending)
	case "3":
		a.cache.SetFilter(model.FilterCompleted)
	}

	fmt.Print("Поиск (пусто — сбросить): ")
	a.cache.SetSearchQuery(strings.TrimSpace(readLine(in)))

	fmt.Println("Сортировка: 1) создана 2) обновлена 3) срок 4) заголовок (пусто — не менять)")
	fmt.Print("Выбор: ")
	by, _ := a.cache.Sorting()
	switch strings.TrimSpace(readLine(in)) {
	case "1":
		by = model.SortByCreatedAt
	case "2":
		by = model.SortByUpdatedAt
	case "3":
		by = model.SortByDueDate
	case "4":
		by = model.SortByTitle
	}
	fmt.Print("Порядок (asc/desc, пусто — desc): ")
	order := model.OrderDesc
	if strings.TrimSpace(readLine(in)) == "asc" {
		order = model.OrderAsc
	}
	a.cache.SetSorting(by, order)

	printTasks(a.cache.Filtered())
}

func (a *app) handleAdd(ctx context.Context, in *bufio.Scanner) {
	fmt.Print("Заголовок: ")
	title := strings.TrimSpace(readLine(in))
	if title == "" {
		fmt.Println("пустой заголовок")
		return
	}
	fmt.Print("Описание (необязательно): ")
	desc := strings.TrimSpace(readLine(in))

	var due *time.Time
	fmt.Print("Дедлайн (DD-MM-YYYY, пусто — без срока): ")
	if s := strings.TrimSpace(readLine(in)); s != "" {
		d, err := parseDMYDate(s)
		if err != nil {
			fmt.Println("дата некорректна:", err)
		} else {
			due = &d
		}
	}

	t, err := a.client.CreateTask(ctx, api.TaskCreate{Title: title, Description: desc, DueDate: due})
	if err != nil {
		if a.checkUnauthorized(ctx, err) {
			return
		}
		// оптимистичная правка: сервер недоступен, пишем только локально,
		// следующий успешный refresh всё равно всё перезатрёт
		fmt.Println("[офлайн] сервер недоступен, сохраняем локально:", err)
		now := time.Now().UTC()
		t = model.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: desc,
			DueDate:     due,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if u, ok := a.sess.User(); ok {
			t.UserID = u.ID
		}
	}
	if err := a.cache.AddTask(ctx, t); err != nil {
		fmt.Println("[кэш] не удалось сохранить офлайн-копию:", err)
	}
	fmt.Println("OK, id =", t.ID)
}

func (a *app) handleUpdate(ctx context.Context, in *bufio.Scanner) {
	fmt.Print("ID задачи: ")
	id := strings.TrimSpace(readLine(in))
	if id == "" {
		fmt.Println("отмена")
		return
	}

	var upd model.TaskUpdate
	fmt.Print("Новый заголовок (пусто — пропустить): ")
	if s := strings.TrimSpace(readLine(in)); s != "" {
		upd.Title = &s
	}
	fmt.Print("Новое описание (пусто — пропустить): ")
	if s := strings.TrimSpace(readLine(in)); s != "" {
		upd.Description = &s
	}
	fmt.Print("Выполнена? (y/n, пусто — пропустить): ")
	switch strings.ToLower(strings.TrimSpace(readLine(in))) {
	case "y", "yes":
		v := true
		upd.Completed = &v
	case "n", "no":
		v := false
		upd.Completed = &v
	}
	fmt.Print("Дедлайн (DD-MM-YYYY, пусто — пропустить): ")
	if s := strings.TrimSpace(readLine(in)); s != "" {
		d, err := parseDMYDate(s)
		if err != nil {
			fmt.Println("дата некорректна:", err)
		} else {
			upd.DueDate = &d
		}
	}
	if upd.Empty() {
		fmt.Println("нечего менять")
		return
	}

	if _, err := a.client.UpdateTask(ctx, id, upd); err != nil {
		if a.checkUnauthorized(ctx, err) {
			return
		}
		fmt.Println("[офлайн] сервер недоступен, правим локально:", err)
	}
	if err := a.cache.UpdateTask(ctx, id, upd); err != nil {
		fmt.Println("[кэш] не удалось сохранить офлайн-копию:", err)
	}
	fmt.Println("OK")
}

func (a *app) handleDelete(ctx context.Context, in *bufio.Scanner) {
	fmt.Print("ID задачи: ")
	id := strings.TrimSpace(readLine(in))
	if id == "" {
		fmt.Println("отмена")
		return
	}
	if err := a.client.DeleteTask(ctx, id); err != nil {
		if a.checkUnauthorized(ctx, err) {
			return
		}
		fmt.Println("[офлайн] сервер недоступен, удаляем локально:", err)
	}
	if err := a.cache.RemoveTask(ctx, id); err != nil {
		fmt.Println("[кэш] не удалось сохранить офлайн-копию:", err)
	}
	fmt.Println("OK (удалено)")
}

func (a *app) handleStats(ctx context.Context) {
	st, err := a.client.Stats(ctx)
	if err != nil {
		if a.checkUnauthorized(ctx, err) {
			return
		}
		// статистику сами не считаем — показываем последний снимок, если был
		cached, ok := a.cache.Stats()
		if !ok {
			fmt.Println("статистика недоступна:", err)
			return
		}
		fmt.Println("[офлайн] показываем последний известный снимок")
		st = cached
	} else {
		a.cache.SetStats(st)
	}
	fmt.Println("Всего:       ", st.TotalTasks)
	fmt.Println("Выполнено:   ", st.CompletedTasks)
	fmt.Println("В работе:    ", st.PendingTasks)
	fmt.Println("Срок сегодня:", st.DueToday)
	fmt.Println("Просрочено:  ", st.Overdue)
}

func (a *app) handleLogout(ctx context.Context) {
	if err := a.sess.Logout(ctx); err != nil {
		fmt.Println("не удалось выйти:", err)
		return
	}
	a.client.ClearToken()
	if err := a.cache.ClearOfflineData(ctx); err != nil {
		fmt.Println("[кэш] не удалось стереть офлайн-копию:", err)
	}
	fmt.Println("OK, до встречи")
}

// checkUnauthorized — 401 от сервера значит что сессия умерла: чистим её
func (a *app) checkUnauthorized(ctx context.Context, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	fmt.Println("сессия истекла, войдите заново")
	a.forceLogout(ctx)
	return true
}

func (a *app) forceLogout(ctx context.Context) {
	if err := a.sess.Logout(ctx); err != nil {
		fmt.Println("не удалось сбросить сессию:", err)
	}
	a.client.ClearToken()
}

// вывод задач таблицей
func printTasks(list []model.Task) {
	if len(list) == 0 {
		fmt.Println("(пусто)")
		return
	}
	fmt.Println("ID | Title | Done | Due | Updated | Desc")
	for _, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("02-01-2006")
		}
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Printf("%s | %s | [%s] | %s | %s | %s\n",
			shortID(t.ID), t.Title, done, due,
			t.UpdatedAt.Format("2006-01-02 15:04"),
			trunc(t.Description, 40),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func trunc(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// парсит дату формата DD-MM-YYYY, типо чтобы нормально работало с человеком
func parseDMYDate(input string) (time.Time, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, fmt.Errorf("пустая дата")
	}

	digits := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits = append(digits, ch)
		}
	}
	if len(digits) == 8 {
		day, _ := strconv.Atoi(string(digits[0:2]))
		month, _ := strconv.Atoi(string(digits[2:4]))
		year, _ := strconv.Atoi(string(digits[4:8]))
		return makeDateChecked(year, month, day)
	}

	s = strings.ReplaceAll(s, ".", "-")
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("нужно DD-MM-YYYY или DDMMYYYY")
	}
	day, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	month, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, _ := strconv.Atoi(strings.TrimSpace(parts[2]))
	return makeDateChecked(year, month, day)
}

// проверяет дату и возвращает начало дня
func makeDateChecked(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("некорректная дата")
	}
	return t, nil
}

func readLine(in *bufio.Scanner) string {
	if in.Scan() {
		return in.Text()
	}
	return ""
}

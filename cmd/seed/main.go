package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/service"
	"github.com/saurabh-eg/Tasksync/internal/store"
)

// Утилита для разработки: наполняет хранилище демо-пользователем
// и пачкой задач, чтобы было что показывать.
func main() {
	_ = godotenv.Load()

	email := flag.String("email", "demo@example.com", "email демо-пользователя")
	password := flag.String("password", "demo1234", "пароль демо-пользователя")
	name := flag.String("name", "Демо", "имя демо-пользователя")
	count := flag.Int("count", 8, "сколько задач создать")
	flag.Parse()

	path := os.Getenv("TASKS_FILE")
	if path == "" {
		path = "data/server.json"
	}
	st, err := store.NewJSONStore(path)
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	svc := service.New(st, "seed", time.Hour)
	ctx := context.Background()

	_, user, err := svc.Register(ctx, *email, *password, *name)
	if err != nil {
		log.Fatalf("не удалось создать пользователя: %v", err)
	}
	fmt.Println("пользователь:", user.Email, "/", *password)

	now := time.Now()
	for i := 0; i < *count; i++ {
		title := fmt.Sprintf("Демо-задача %d", i+1)
		var due *time.Time
		// у каждой второй задачи есть срок, разбросанный вокруг сегодня
		if i%2 == 0 {
			d := now.AddDate(0, 0, i-2)
			due = &d
		}
		t, err := svc.CreateTask(ctx, user.ID, title, "создана сидером", due)
		if err != nil {
			log.Fatalf("не удалось создать задачу: %v", err)
		}
		// треть задач сразу закрываем
		if i%3 == 0 {
			done := true
			if _, err := svc.UpdateTask(ctx, user.ID, t.ID, model.TaskUpdate{Completed: &done}); err != nil {
				log.Fatalf("не удалось закрыть задачу: %v", err)
			}
		}
	}
	fmt.Printf("OK, создано задач: %d (файл %s)\n", *count, path)
}

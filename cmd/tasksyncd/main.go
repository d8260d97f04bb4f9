package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saurabh-eg/Tasksync/internal/audit"
	"github.com/saurabh-eg/Tasksync/internal/server"
	"github.com/saurabh-eg/Tasksync/internal/service"
	"github.com/saurabh-eg/Tasksync/internal/store"
)

func main() {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	ttl := 30 * time.Minute
	if raw := os.Getenv("TOKEN_TTL_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Minute
		}
	}
	port := 8080
	if raw := os.Getenv("PORT"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			port = n
		}
	}

	st, err := pickStore()
	if err != nil {
		log.Fatalf("store init error: %v", err)
	}

	svc := service.New(st, secret, ttl)

	// аудит включается только если задан Redis
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		db := 0
		if raw := os.Getenv("REDIS_DB"); raw != "" {
			db, _ = strconv.Atoi(raw)
		}
		svc.SetAuditLogger(audit.NewRedisLogger(addr, os.Getenv("REDIS_PASSWORD"), db, 7*24*time.Hour, "tasksync:audit"))
		log.Println("[audit] аудит в Redis включён:", addr)
	}

	if os.Getenv("DEBUG") == "1" {
		service.Debug = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nПолучен сигнал завершения, останавливаем сервис...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		service.LogActivity(ctx, 10*time.Second)
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.New(svc).Handler(),
	}

	go func() {
		log.Println("[web] сервер стартовал на", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown error:", err)
	}
	wg.Wait()
	fmt.Println("Все горутины завершены. Пока!")
}

// pickStore — выбирает хранилище по окружению: Mongo, потом Postgres,
// потом JSON-файл, иначе память (только для разработки).
func pickStore() (store.Store, error) {
	if uri := os.Getenv("MONGO_URL"); uri != "" {
		db := os.Getenv("DB_NAME")
		if db == "" {
			db = "tasksync"
		}
		log.Println("[store] MongoDB:", db)
		return store.NewMongoStore(uri, db)
	}
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		log.Println("[store] Postgres")
		return store.NewPostgresStore(connStr)
	}
	if path := os.Getenv("TASKS_FILE"); path != "" {
		log.Println("[store] JSON-файл:", path)
		return store.NewJSONStore(path)
	}
	log.Println("[store] память (данные пропадут при рестарте!)")
	return store.NewMemStore(), nil
}

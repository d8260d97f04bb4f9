package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Debug — включает подробный вывод фонового логгера
var Debug = false

// счётчики мутаций с момента старта процесса
type activityCounters struct {
	created atomic.Int64
	updated atomic.Int64
	deleted atomic.Int64
}

var counters activityCounters

func (s *Service) bumpCounter(op string) {
	switch op {
	case "create":
		counters.created.Add(1)
	case "update":
		counters.updated.Add(1)
	case "delete":
		counters.deleted.Add(1)
	}
}

// LogActivity — каждые interval смотрит, не накопились ли новые мутации,
// и пишет дельты в лог. Крутится пока не отменят контекст.
func LogActivity(ctx context.Context, interval time.Duration) {
	prevCreated, prevUpdated, prevDeleted := int64(0), int64(0), int64(0)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			curCreated := counters.created.Load()
			curUpdated := counters.updated.Load()
			curDeleted := counters.deleted.Load()

			if !Debug {
				// просто обновляем счётчики без вывода
				prevCreated, prevUpdated, prevDeleted = curCreated, curUpdated, curDeleted
				continue
			}

			if curCreated > prevCreated {
				fmt.Printf("[активность] создано задач: %d\n", curCreated-prevCreated)
				prevCreated = curCreated
			}
			if curUpdated > prevUpdated {
				fmt.Printf("[активность] обновлено задач: %d\n", curUpdated-prevUpdated)
				prevUpdated = curUpdated
			}
			if curDeleted > prevDeleted {
				fmt.Printf("[активность] удалено задач: %d\n", curDeleted-prevDeleted)
				prevDeleted = curDeleted
			}

		case <-ctx.Done():
			if Debug {
				fmt.Println("[активность] остановлен")
			}
			return
		}
	}
}

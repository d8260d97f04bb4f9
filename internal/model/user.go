package model

import "time"

// User — профиль пользователя (без пароля, хэш живёт только в хранилище)
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskStats — агрегированные счётчики по задачам. Клиент их не считает сам,
// а держит как снимок того, что прислал сервер (снимок может устареть).
type TaskStats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	DueToday       int `json:"due_today"`
	Overdue        int `json:"overdue"`
}

// ComputeStats — считает счётчики на серверной стороне.
// due_today: невыполненные со сроком сегодня [00:00, 24:00),
// overdue: невыполненные со сроком раньше сегодняшних 00:00.
func ComputeStats(tasks []Task, now time.Time) TaskStats {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var st TaskStats
	for _, t := range tasks {
		st.TotalTasks++
		if t.Completed {
			st.CompletedTasks++
			continue
		}
		st.PendingTasks++
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		switch {
		case due.Before(dayStart):
			st.Overdue++
		case due.Before(dayEnd):
			st.DueToday++
		}
	}
	return st
}

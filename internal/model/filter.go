package model

import (
	"sort"
	"strings"
	"time"
)

// StatusFilter — фильтр по состоянию задачи
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// Проверяет что фильтр нормальный, без левых значений
func (f StatusFilter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted:
		return true
	default:
		return false
	}
}

// SortField — по какому полю сортируем
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
	SortByDueDate   SortField = "due_date"
	SortByTitle     SortField = "title"
)

func (s SortField) Valid() bool {
	switch s {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle:
		return true
	default:
		return false
	}
}

// SortOrder — направление сортировки
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == OrderAsc || o == OrderDesc
}

// Project — чистая функция проекции: фильтр по статусу, потом поиск по
// подстроке, потом стабильная сортировка. Исходный срез не трогается,
// один и тот же вход всегда даёт один и тот же выход.
func Project(tasks []Task, f StatusFilter, query string, by SortField, order SortOrder) []Task {
	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f == FilterPending && t.Completed {
			continue
		}
		if f == FilterCompleted && !t.Completed {
			continue
		}
		result = append(result, t)
	}

	// поиск: регистронезависимая подстрока в title или description
	q := strings.ToLower(strings.TrimSpace(query))
	if q != "" {
		matched := make([]Task, 0, len(result))
		for _, t := range result {
			if strings.Contains(strings.ToLower(t.Title), q) ||
				strings.Contains(strings.ToLower(t.Description), q) {
				matched = append(matched, t)
			}
		}
		result = matched
	}

	// desc переворачивает сравнение пары, а не весь срез — при стабильной
	// сортировке равные элементы так сохраняют исходный порядок
	sort.SliceStable(result, func(i, j int) bool {
		c := compareTasks(result[i], result[j], by)
		if order == OrderDesc {
			return c > 0
		}
		return c < 0
	})
	return result
}

func compareTasks(a, b Task, by SortField) int {
	switch by {
	case SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortByDueDate:
		return dueOrEarliest(a).Compare(dueOrEarliest(b))
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Задачи без срока сортируются как «самые ранние» (нулевое время).
// Так вела себя старая версия, оставляем для совместимости.
func dueOrEarliest(t Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

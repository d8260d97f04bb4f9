package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saurabh-eg/Tasksync/internal/kvstore"
	"github.com/saurabh-eg/Tasksync/internal/model"
)

// Cache — локальный кэш задач. Держит канонический список (то, что в
// последний раз прислал сервер плюс оптимистичные правки), производную
// проекцию для показа и снимок статистики. Канонический список зеркалится
// в durable-хранилище после каждой мутации.
//
// Ошибки персиста мутации возвращают наверх, но состояние в памяти уже
// применено: пока процесс жив, память главнее диска. Логировать или
// пробрасывать — решает вызывающий.
type Cache struct {
	kv kvstore.Store

	tasks    []model.Task // канонический список
	filtered []model.Task // проекция, всегда пересчитывается из tasks
	stats    *model.TaskStats

	filter model.StatusFilter
	query  string
	sortBy model.SortField
	order  model.SortOrder
}

func New(kv kvstore.Store) *Cache {
	c := &Cache{
		kv:     kv,
		filter: model.FilterAll,
		sortBy: model.SortByCreatedAt,
		order:  model.OrderDesc,
	}
	c.recompute()
	return c
}

// SetTasks — замена всего канонического списка (пришёл свежий снимок
// с сервера). Проигравший в гонке с локальной правкой просто затирается —
// побеждает последний, разруливания конфликтов тут нет.
func (c *Cache) SetTasks(ctx context.Context, tasks []model.Task) error {
	c.tasks = append([]model.Task(nil), tasks...)
	c.recompute()
	return c.persist(ctx)
}

// AddTask — добавляет задачу в начало списка (новые всегда сверху,
// независимо от текущей сортировки проекции).
func (c *Cache) AddTask(ctx context.Context, t model.Task) error {
	c.tasks = append([]model.Task{t}, c.tasks...)
	c.recompute()
	return c.persist(ctx)
}

// UpdateTask — вливает частичное обновление в задачу и штампует UpdatedAt.
// Если задачи нет — тихий no-op.
func (c *Cache) UpdateTask(ctx context.Context, id string, upd model.TaskUpdate) error {
	idx := -1
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	c.tasks[idx] = upd.Apply(c.tasks[idx], time.Now().UTC())
	c.recompute()
	return c.persist(ctx)
}

// RemoveTask — удаляет задачу; если её нет — тихий no-op.
func (c *Cache) RemoveTask(ctx context.Context, id string) error {
	idx := -1
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	c.tasks = append(c.tasks[:idx], c.tasks[idx+1:]...)
	c.recompute()
	return c.persist(ctx)
}

// SetFilter — меняет только параметры проекции, канонический список и
// его копию на диске не трогает.
func (c *Cache) SetFilter(f model.StatusFilter) {
	if !f.Valid() {
		return
	}
	c.filter = f
	c.recompute()
}

func (c *Cache) SetSearchQuery(query string) {
	c.query = query
	c.recompute()
}

func (c *Cache) SetSorting(by model.SortField, order model.SortOrder) {
	if !by.Valid() || !order.Valid() {
		return
	}
	c.sortBy = by
	c.order = order
	c.recompute()
}

// SetStats — заменяет снимок статистики, на проекцию не влияет.
func (c *Cache) SetStats(st model.TaskStats) {
	s := st
	c.stats = &s
}

// Stats — последний снимок статистики; false если его ещё не было
func (c *Cache) Stats() (model.TaskStats, bool) {
	if c.stats == nil {
		return model.TaskStats{}, false
	}
	return *c.stats, true
}

// Tasks — копия канонического списка
func (c *Cache) Tasks() []model.Task {
	return append([]model.Task(nil), c.tasks...)
}

// Filtered — копия текущей проекции
func (c *Cache) Filtered() []model.Task {
	return append([]model.Task(nil), c.filtered...)
}

func (c *Cache) Filter() model.StatusFilter { return c.filter }
func (c *Cache) SearchQuery() string        { return c.query }

func (c *Cache) Sorting() (model.SortField, model.SortOrder) {
	return c.sortBy, c.order
}

// SaveOfflineTasks — сериализует канонический список под офлайн-ключ.
func (c *Cache) SaveOfflineTasks(ctx context.Context) error {
	return c.persist(ctx)
}

// LoadOfflineTasks — стартовая загрузка офлайн-копии, до первого ответа
// сервера. Если копии нет или она битая — остаёмся с тем, что было.
func (c *Cache) LoadOfflineTasks(ctx context.Context) error {
	raw, ok, err := c.kv.Get(ctx, kvstore.KeyOfflineTasks)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return fmt.Errorf("cache: unmarshal offline tasks: %w", err)
	}
	c.tasks = tasks
	c.recompute()
	return nil
}

// ClearOfflineData — стирает офлайн-копию и сбрасывает кэш в пустой.
// Память чистим в любом случае, даже если удаление с диска не удалось.
func (c *Cache) ClearOfflineData(ctx context.Context) error {
	c.tasks = nil
	c.stats = nil
	c.recompute()
	return c.kv.Delete(ctx, kvstore.KeyOfflineTasks)
}

// проекция — чистая функция от (tasks, filter, query, sortBy, order)
func (c *Cache) recompute() {
	c.filtered = model.Project(c.tasks, c.filter, c.query, c.sortBy, c.order)
}

func (c *Cache) persist(ctx context.Context) error {
	raw, err := json.Marshal(c.tasks)
	if err != nil {
		return fmt.Errorf("cache: marshal tasks: %w", err)
	}
	return c.kv.Set(ctx, kvstore.KeyOfflineTasks, raw)
}

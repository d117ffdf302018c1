package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр исполнителей шагов по имени.
//
// Потокобезопасен: один реестр разделяется всеми pipeline матрицы задач.
type Registry struct {
	mu        sync.RWMutex
	executors map[string]Executor
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]Executor),
	}
}

// Register регистрирует исполнителя для имени шага.
// Повторная регистрация перезаписывает предыдущего исполнителя.
func (r *Registry) Register(name string, executor Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

// Get возвращает исполнителя по имени шага.
// Возвращает ErrUnknownStep, если исполнитель не зарегистрирован.
func (r *Registry) Get(name string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	executor, exists := r.executors[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
	}
	return executor, nil
}

// Has проверяет, зарегистрирован ли исполнитель.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.executors[name]
	return exists
}

// Names возвращает отсортированный список зарегистрированных шагов.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.executors))
	for name := range r.executors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// CompletionTracker накапливает отчёты агентов из jobs.completed.
//
// Диспетчер опрашивает трекер по идентификатору задания так же, как
// опрашивал бы планировщик очереди, поэтому удалённый бэкенд
// встраивается в общий цикл ожидания.
type CompletionTracker struct {
	consumer *Consumer
	logger   *slog.Logger

	mu      sync.RWMutex
	results map[uuid.UUID]JobCompletedPayload
}

// NewCompletionTracker создаёт трекер поверх соединения.
func NewCompletionTracker(conn *Connection, logger *slog.Logger) *CompletionTracker {
	t := &CompletionTracker{
		logger:  logger,
		results: make(map[uuid.UUID]JobCompletedPayload),
	}

	t.consumer = NewConsumer(conn, logger, ConsumerConfig{
		Queue:   QueueJobsCompleted,
		Handler: t.handle,
	})

	return t
}

// Start запускает потребление отчётов в фоне и сразу возвращает
// управление: цикл потребления живёт до отмены контекста, а вызывающий
// тем временем опрашивает Lookup.
func (t *CompletionTracker) Start(ctx context.Context) {
	go func() {
		if err := t.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			t.logger.Error("completion consumer stopped", "error", err)
		}
	}()
}

// Lookup возвращает отчёт по заданию, если он уже получен.
func (t *CompletionTracker) Lookup(jobID uuid.UUID) (JobCompletedPayload, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	payload, ok := t.results[jobID]
	return payload, ok
}

func (t *CompletionTracker) handle(_ context.Context, d *Delivery) error {
	if d.Message.Type != MessageTypeJobCompleted {
		return fmt.Errorf("unexpected message type %s", d.Message.Type)
	}

	payload, err := ParsePayload[JobCompletedPayload](&d.Message)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.results[payload.JobID] = payload
	t.mu.Unlock()

	t.logger.Info("job completion received",
		"job_id", payload.JobID,
		"success", payload.Success,
		"host", payload.Host,
	)

	return nil
}

package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Sweep — один проход пакетного запуска.
//
// Проход идемпотентен благодаря чекпоинтам: завершённые единицы
// пропускаются, поэтому повторные проходы подхватывают только новые
// структуры и недоделанную работу.
type Sweep func(ctx context.Context) error

// Config — конфигурация Watcher.
type Config struct {
	// CronExpr — cron-выражение расписания; пустое значение включает
	// интервальный режим.
	CronExpr string

	// Interval — период интервального режима; значения меньше минуты
	// заменяются на час.
	Interval time.Duration

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

// Watcher периодически повторяет проход пакетного запуска.
type Watcher struct {
	cronExpr string
	interval time.Duration
	logger   *slog.Logger
	sweep    Sweep
}

// New создаёт Watcher, валидируя расписание.
func New(cfg Config, sweep Sweep) (*Watcher, error) {
	if cfg.CronExpr != "" {
		if err := ValidateCronExpr(cfg.CronExpr); err != nil {
			return nil, err
		}
	}

	interval := cfg.Interval
	if interval < time.Minute {
		interval = time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		cronExpr: cfg.CronExpr,
		interval: interval,
		logger:   logger,
		sweep:    sweep,
	}, nil
}

// Run выполняет проходы по расписанию до отмены контекста.
//
// Первый проход выполняется сразу. Ошибка прохода логируется и не
// останавливает расписание.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		started := time.Now()
		w.logger.Info("sweep started")
		if err := w.sweep(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("sweep failed", "error", err)
		} else {
			w.logger.Info("sweep finished", "duration", time.Since(started))
		}

		next, err := w.nextAfter(time.Now())
		if err != nil {
			return err
		}
		w.logger.Info("next sweep scheduled", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// nextAfter возвращает время следующего прохода.
func (w *Watcher) nextAfter(from time.Time) (time.Time, error) {
	if w.cronExpr != "" {
		return Next(w.cronExpr, from)
	}
	if w.interval <= 0 {
		return time.Time{}, fmt.Errorf("watcher has neither cron expression nor interval")
	}
	return from.Add(w.interval), nil
}

package matrix

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/telemetry"
)

// UnitFunc обрабатывает одну единицу работы и возвращает её результат.
type UnitFunc func(ctx context.Context, unit domain.WorkUnit) *domain.Result

// Scheduler выполняет единицы матрицы задач ограниченным пулом.
//
// Единицы изолированы: провал или паника одной не влияет на остальные,
// её результат просто помечается неуспешным.
type Scheduler struct {
	limit  int
	logger *slog.Logger
}

// NewScheduler создаёт Scheduler с пределом одновременных единиц.
func NewScheduler(limit int, logger *slog.Logger) *Scheduler {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{limit: limit, logger: logger}
}

// Run обрабатывает все единицы и возвращает результаты в исходном порядке.
//
// Отмена контекста не прерывает начатые единицы; ещё не начатые
// получают результат с ошибкой контекста.
func (s *Scheduler) Run(ctx context.Context, units []domain.WorkUnit, fn UnitFunc) []domain.Result {
	results := make([]domain.Result, len(units))

	sem := make(chan struct{}, s.limit)
	var wg sync.WaitGroup

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			r := domain.NewResult(unit)
			r.MarkFailed(fmt.Sprintf("not started: %v", err))
			results[i] = *r
			continue
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(i int, unit domain.WorkUnit) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = *s.runUnit(ctx, unit, fn)
		}(i, unit)
	}

	wg.Wait()

	summary := domain.Summarize(results)
	s.logger.Info("task matrix finished",
		"total", summary.Total, "succeeded", summary.Succeeded, "failed", summary.Failed)

	return results
}

// runUnit выполняет одну единицу с перехватом паники.
func (s *Scheduler) runUnit(ctx context.Context, unit domain.WorkUnit, fn UnitFunc) (result *domain.Result) {
	logger := telemetry.WithUnitID(s.logger, unit.ID.String()).
		With("structure", unit.Name, "pressure", unit.Pressure)

	telemetry.ActiveUnits.Inc()
	defer telemetry.ActiveUnits.Dec()

	defer func() {
		if r := recover(); r != nil {
			res := domain.NewResult(unit)
			res.MarkFailed(fmt.Sprintf("panic: %v", r))
			result = res
			logger.Error("work unit panicked", "panic", r)
		}

		status := "failed"
		if result != nil && result.Success {
			status = "success"
		}
		telemetry.UnitsTotal.WithLabelValues(status).Inc()
	}()

	logger.Info("work unit started", "work_dir", unit.WorkDir)
	result = fn(ctx, unit)
	if result == nil {
		res := domain.NewResult(unit)
		res.MarkFailed("unit function returned no result")
		result = res
	}

	if result.Success {
		logger.Info("work unit succeeded", "duration", result.Duration())
	} else {
		logger.Error("work unit failed", "error", result.Error)
	}
	return result
}

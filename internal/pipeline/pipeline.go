package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Crucible/internal/checkpoint"
	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/telemetry"
)

// Executor — исполнитель одного шага pipeline.
//
// Исполнитель возвращает nil при успехе и ошибку при провале.
// Паника исполнителя перехватывается на границе pipeline и
// трактуется как провал шага.
type Executor interface {
	Execute(ctx context.Context, st *State) error
}

// ExecutorFunc — адаптер функции к интерфейсу Executor.
type ExecutorFunc func(ctx context.Context, st *State) error

// Execute реализует интерфейс Executor.
func (f ExecutorFunc) Execute(ctx context.Context, st *State) error {
	return f(ctx, st)
}

// Config — конфигурация pipeline.
type Config struct {
	// WorkDir — рабочий каталог единицы работы.
	WorkDir string

	// Structure — путь к исходному файлу структуры.
	Structure string

	// Steps — упорядоченный список имён шагов.
	Steps []string

	// CheckpointFile — имя файла чекпоинта в WorkDir.
	// Пустое значение — checkpoint.DefaultFilename.
	CheckpointFile string

	// PrepareOnly — режим "только подготовка".
	PrepareOnly bool

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

// Pipeline — машина состояний шагов одной единицы работы.
//
// Pipeline выполняет шаги строго по порядку: шаг N+1 не начинается,
// пока шаг N не достиг финального статуса. Первый провалившийся шаг
// останавливает весь pipeline. Финальные статусы сохраняются в
// чекпоинт, поэтому повторный запуск пропускает уже выполненные шаги;
// RUNNING на диск не попадает никогда.
type Pipeline struct {
	steps    []string
	registry *Registry
	store    *checkpoint.Store
	state    *State
	logger   *slog.Logger

	statuses map[string]domain.StepStatus
}

// New создаёт Pipeline и валидирует конфигурацию: пустой список шагов,
// дубликаты и шаги без исполнителя отклоняются сразу, а не в середине
// запуска.
func New(cfg Config, registry *Registry) (*Pipeline, error) {
	if len(cfg.Steps) == 0 {
		return nil, ErrNoSteps
	}

	seen := make(map[string]bool, len(cfg.Steps))
	for _, name := range cfg.Steps {
		if seen[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStep, name)
		}
		seen[name] = true
		if !registry.Has(name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	statuses := make(map[string]domain.StepStatus, len(cfg.Steps))
	for _, name := range cfg.Steps {
		statuses[name] = domain.StepStatusPending
	}

	return &Pipeline{
		steps:    cfg.Steps,
		registry: registry,
		store:    checkpoint.NewStore(cfg.WorkDir, cfg.CheckpointFile),
		state:    NewState(cfg.WorkDir, cfg.Structure, cfg.PrepareOnly),
		logger:   logger,
		statuses: statuses,
	}, nil
}

// State возвращает общее состояние pipeline.
func (p *Pipeline) State() *State {
	return p.state
}

// Statuses возвращает копию статусов шагов после запуска.
func (p *Pipeline) Statuses() map[string]domain.StepStatus {
	out := make(map[string]domain.StepStatus, len(p.statuses))
	for k, v := range p.statuses {
		out[k] = v
	}
	return out
}

// Run выполняет шаги по порядку с чекпоинтированным resume.
//
// Шаг со статусом SUCCESS в чекпоинте помечается SKIPPED, его
// исполнитель не вызывается. Остальные шаги проходят
// RUNNING → SUCCESS|FAILED; в чекпоинт записывается только финальный
// статус шага.
// На первом FAILED выполнение останавливается и возвращается ошибка,
// обёрнутая в ErrStepFailed.
func (p *Pipeline) Run(ctx context.Context) error {
	rec := p.store.Load()

	// Данные уже выполненных шагов доступны последующим шагам при resume.
	for _, name := range p.steps {
		if rec.Status(name) == domain.StepStatusSuccess {
			p.state.seed(rec.Data(name))
		}
	}

	for _, name := range p.steps {
		logger := telemetry.WithStep(p.logger, name)

		if rec.Status(name) == domain.StepStatusSuccess {
			p.statuses[name] = domain.StepStatusSkipped
			logger.Info("step already complete, skipping")
			continue
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStepFailed, name, err)
		}

		// RUNNING живёт только в памяти: в чекпоинт попадают лишь
		// финальные статусы, и после рестарта шаг начинается с PENDING.
		p.statuses[name] = domain.StepStatusRunning

		logger.Info("step started")
		err := p.execute(ctx, name)
		produced := p.state.takeProduced()

		if err != nil {
			p.statuses[name] = domain.StepStatusFailed
			telemetry.StepsTotal.WithLabelValues(name, "failed").Inc()
			if saveErr := p.store.Save(name, domain.StepStatusFailed, nil); saveErr != nil {
				logger.Error("failed to checkpoint failed step", "error", saveErr)
			}
			logger.Error("step failed", "error", err)
			return fmt.Errorf("%w: %s: %w", ErrStepFailed, name, err)
		}

		p.statuses[name] = domain.StepStatusSuccess
		telemetry.StepsTotal.WithLabelValues(name, "success").Inc()
		if err := p.store.Save(name, domain.StepStatusSuccess, produced); err != nil {
			return fmt.Errorf("checkpoint step %s: %w", name, err)
		}
		logger.Info("step succeeded")
	}

	return nil
}

// execute вызывает исполнителя шага, перехватывая паники.
func (p *Pipeline) execute(ctx context.Context, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrStepPanicked, name, r)
		}
	}()

	executor, err := p.registry.Get(name)
	if err != nil {
		return err
	}
	return executor.Execute(ctx, p.state)
}

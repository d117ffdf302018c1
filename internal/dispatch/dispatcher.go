package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/remote"
	"github.com/shaiso/Crucible/internal/telemetry"
)

// runner выполняет внешнюю команду в каталоге и возвращает её
// объединённый вывод. Инжектируется в тестах вместо exec.
type runner func(ctx context.Context, dir, name string, args ...string) (string, error)

func execRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// JobPublisher публикует задания для удалённых агентов.
type JobPublisher interface {
	PublishJobReady(ctx context.Context, payload remote.JobReadyPayload) error
}

// CompletionLookup отдаёт накопленные отчёты о завершении заданий.
type CompletionLookup interface {
	Lookup(jobID uuid.UUID) (remote.JobCompletedPayload, bool)
}

// Config — конфигурация диспетчера.
type Config struct {
	// Backend — система запуска заданий.
	Backend domain.Backend

	// PollInterval — период опроса очереди; значения меньше секунды
	// заменяются на 30 секунд.
	PollInterval time.Duration

	// WaitTimeout — предел ожидания задания; 0 — без предела.
	WaitTimeout time.Duration

	// Publisher, Lookup — транспорт remote-бэкенда; для остальных
	// backend'ов не используются.
	Publisher JobPublisher
	Lookup    CompletionLookup

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

// Dispatcher отправляет скрипты в систему запуска и ждёт завершения.
//
// Один диспетчер обслуживает все единицы работы запуска и безопасен
// для конкурентного использования.
type Dispatcher struct {
	backend      domain.Backend
	pollInterval time.Duration
	waitTimeout  time.Duration
	publisher    JobPublisher
	lookup       CompletionLookup
	logger       *slog.Logger
	run          runner
}

// New создаёт Dispatcher, валидируя конфигурацию.
//
// Backend remote требует сконфигурированного транспорта: отправка без
// него отклоняется здесь, а не в середине пакетного запуска.
func New(cfg Config) (*Dispatcher, error) {
	if _, err := domain.ParseBackend(string(cfg.Backend)); err != nil {
		return nil, err
	}
	if cfg.Backend == domain.BackendRemote && (cfg.Publisher == nil || cfg.Lookup == nil) {
		return nil, fmt.Errorf("%w: remote backend requires broker transport", ErrBackendNotConfigured)
	}

	poll := cfg.PollInterval
	if poll < time.Second {
		poll = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		backend:      cfg.Backend,
		pollInterval: poll,
		waitTimeout:  cfg.WaitTimeout,
		publisher:    cfg.Publisher,
		lookup:       cfg.Lookup,
		logger:       logger,
		run:          execRunner,
	}, nil
}

// Backend возвращает backend диспетчера.
func (d *Dispatcher) Backend() domain.Backend {
	return d.backend
}

// Шаблоны идентификаторов заданий в выводе команд отправки.
var (
	slurmJobID = regexp.MustCompile(`Submitted batch job (\d+)`)
	lsfJobID   = regexp.MustCompile(`Job <(\d+)>`)
)

// Submit отправляет скрипт в систему запуска.
//
// Для bash выполнение синхронное: к моменту возврата задание уже
// завершилось, а код выхода лежит в handle. Для очередей возвращается
// handle с распарсенным идентификатором задания.
func (d *Dispatcher) Submit(ctx context.Context, script, workDir string) (domain.JobHandle, error) {
	handle := domain.JobHandle{Backend: d.backend, Script: script}

	switch d.backend {
	case domain.BackendBash:
		handle.ID = uuid.New().String()
		out, err := d.run(ctx, workDir, "bash", script)
		if err != nil {
			handle.ExitError = fmt.Sprintf("%v: %s", err, tail(out))
		}

	case domain.BackendSlurm:
		out, err := d.run(ctx, workDir, "sbatch", script)
		if err != nil {
			return handle, fmt.Errorf("%w: sbatch: %v: %s", ErrSubmitFailed, err, tail(out))
		}
		m := slurmJobID.FindStringSubmatch(out)
		if m == nil {
			return handle, fmt.Errorf("%w: sbatch output %q", ErrNoJobID, tail(out))
		}
		handle.ID = m[1]

	case domain.BackendPBS:
		out, err := d.run(ctx, workDir, "qsub", script)
		if err != nil {
			return handle, fmt.Errorf("%w: qsub: %v: %s", ErrSubmitFailed, err, tail(out))
		}
		fields := strings.Fields(out)
		if len(fields) == 0 {
			return handle, fmt.Errorf("%w: empty qsub output", ErrNoJobID)
		}
		handle.ID = fields[0]

	case domain.BackendLSF:
		// bsub читает скрипт со stdin.
		out, err := d.run(ctx, workDir, "bash", "-c", "bsub < "+script)
		if err != nil {
			return handle, fmt.Errorf("%w: bsub: %v: %s", ErrSubmitFailed, err, tail(out))
		}
		m := lsfJobID.FindStringSubmatch(out)
		if m == nil {
			return handle, fmt.Errorf("%w: bsub output %q", ErrNoJobID, tail(out))
		}
		handle.ID = m[1]

	case domain.BackendRemote:
		jobID := uuid.New()
		payload := remote.JobReadyPayload{JobID: jobID, Script: script, WorkDir: workDir}
		if err := d.publisher.PublishJobReady(ctx, payload); err != nil {
			return handle, fmt.Errorf("%w: publish: %v", ErrSubmitFailed, err)
		}
		handle.ID = jobID.String()

	default:
		return handle, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, d.backend)
	}

	telemetry.JobsSubmitted.WithLabelValues(string(d.backend)).Inc()
	d.logger.Info("job submitted", "backend", d.backend, "job_id", handle.ID, "script", script)
	return handle, nil
}

// Wait блокируется до завершения задания.
//
// Очереди опрашиваются с периодом PollInterval; превышение WaitTimeout
// возвращает ErrWaitTimeout, не отменяя само задание. Для bash и
// prepare-only handle возврат немедленный.
func (d *Dispatcher) Wait(ctx context.Context, handle domain.JobHandle, workDir string) error {
	if handle.Prepared() {
		return nil
	}

	start := time.Now()
	defer func() {
		telemetry.JobWaitSeconds.Observe(time.Since(start).Seconds())
	}()

	if d.backend == domain.BackendBash {
		if handle.ExitError != "" {
			return fmt.Errorf("%w: %s", ErrJobFailed, handle.ExitError)
		}
		return nil
	}

	var deadline <-chan time.Time
	if d.waitTimeout > 0 {
		timer := time.NewTimer(d.waitTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		done, err := d.poll(ctx, handle, workDir)
		if done {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			d.logger.Warn("job wait timed out, job left running",
				"backend", d.backend, "job_id", handle.ID, "timeout", d.waitTimeout)
			return fmt.Errorf("%w: job %s after %s", ErrWaitTimeout, handle.ID, d.waitTimeout)
		case <-ticker.C:
		}
	}
}

// poll делает один опрос состояния задания.
// Возвращает done=true, когда задание покинуло очередь.
func (d *Dispatcher) poll(ctx context.Context, handle domain.JobHandle, workDir string) (bool, error) {
	switch d.backend {
	case domain.BackendSlurm:
		// Пустой вывод squeue — задание ушло из очереди.
		out, err := d.run(ctx, workDir, "squeue", "-h", "-j", handle.ID)
		if err != nil || strings.TrimSpace(out) == "" {
			return true, nil
		}
		return false, nil

	case domain.BackendPBS:
		// qstat возвращает ошибку, когда задания больше нет.
		if _, err := d.run(ctx, workDir, "qstat", handle.ID); err != nil {
			return true, nil
		}
		return false, nil

	case domain.BackendLSF:
		out, err := d.run(ctx, workDir, "bjobs", handle.ID)
		if err != nil {
			return true, nil
		}
		if strings.Contains(out, "DONE") || strings.Contains(out, "EXIT") {
			return true, nil
		}
		return false, nil

	case domain.BackendRemote:
		jobID, err := uuid.Parse(handle.ID)
		if err != nil {
			return true, fmt.Errorf("parse job id %q: %w", handle.ID, err)
		}
		payload, ok := d.lookup.Lookup(jobID)
		if !ok {
			return false, nil
		}
		if !payload.Success {
			return true, fmt.Errorf("%w: on %s: %s", ErrJobFailed, payload.Host, payload.Error)
		}
		return true, nil

	default:
		return true, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, d.backend)
	}
}

// tail возвращает последние строки вывода для сообщения об ошибке.
func tail(out string) string {
	out = strings.TrimSpace(out)
	if len(out) <= 200 {
		return out
	}
	return "..." + out[len(out)-200:]
}

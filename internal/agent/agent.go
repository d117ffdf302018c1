package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/shaiso/Crucible/internal/remote"
	"github.com/shaiso/Crucible/internal/telemetry"
)

// defaultPrefetch — сколько заданий агент берёт из очереди заранее.
const defaultPrefetch = 1

// Agent исполняет задания с общей файловой системы.
//
// Agent — stateless компонент, который:
//   - Получает задания из очереди jobs.ready
//   - Выполняет скрипт через bash в рабочем каталоге задания
//   - Публикует отчёт в jobs.completed
//
// Агенты масштабируются горизонтально: несколько экземпляров на разных
// машинах потребляют из одной очереди.
type Agent struct {
	conn      *remote.Connection
	publisher *remote.Publisher
	consumer  *remote.Consumer

	host     string
	prefetch int

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Agent.
type Config struct {
	// Conn — соединение с брокером.
	Conn *remote.Connection

	// Prefetch — окно предвыборки; значения меньше 1 означают 1.
	Prefetch int

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

// New создаёт Agent.
func New(cfg Config) *Agent {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	prefetch := cfg.Prefetch
	if prefetch < 1 {
		prefetch = defaultPrefetch
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	return &Agent{
		conn:      cfg.Conn,
		publisher: remote.NewPublisher(cfg.Conn, logger),
		host:      host,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает потребление заданий.
func (a *Agent) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancelFunc = cancel

	a.logger.Info("starting agent", "host", a.host, "prefetch", a.prefetch)

	a.consumer = remote.NewConsumer(a.conn, a.logger, remote.ConsumerConfig{
		Queue:    remote.QueueJobsReady,
		Handler:  a.handleJobReady,
		Prefetch: a.prefetch,
	})

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("consumer stopped", "error", err)
		}
	}()

	return nil
}

// Stop останавливает агента и ждёт завершения текущего задания.
func (a *Agent) Stop() {
	a.logger.Info("stopping agent")
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.wg.Wait()
	a.logger.Info("agent stopped")
}

// handleJobReady исполняет одно задание и публикует отчёт.
//
// Ошибка выполнения скрипта — не ошибка обработки сообщения: отчёт о
// провале публикуется, а сообщение подтверждается, чтобы задание не
// крутилось в retry.
func (a *Agent) handleJobReady(ctx context.Context, d *remote.Delivery) error {
	if d.Message.Type != remote.MessageTypeJobReady {
		return fmt.Errorf("unexpected message type %s", d.Message.Type)
	}

	payload, err := remote.ParsePayload[remote.JobReadyPayload](&d.Message)
	if err != nil {
		return err
	}

	logger := telemetry.WithJobID(a.logger, payload.JobID.String()).With("script", payload.Script)
	logger.Info("job started", "work_dir", payload.WorkDir)

	report := remote.JobCompletedPayload{
		JobID:   payload.JobID,
		Success: true,
		Host:    a.host,
	}

	if err := a.runScript(ctx, payload); err != nil {
		report.Success = false
		report.Error = err.Error()
		logger.Error("job failed", "error", err)
	} else {
		logger.Info("job finished")
	}

	if err := a.publisher.PublishJobCompleted(ctx, report); err != nil {
		// Отчёт не ушёл — возвращаем задание в очередь целиком.
		return fmt.Errorf("publish completion: %w", err)
	}
	return nil
}

// runScript выполняет скрипт задания в его рабочем каталоге.
func (a *Agent) runScript(ctx context.Context, payload remote.JobReadyPayload) error {
	if _, err := os.Stat(payload.Script); err != nil {
		return fmt.Errorf("job script unavailable: %w", err)
	}

	cmd := exec.CommandContext(ctx, "bash", payload.Script)
	cmd.Dir = payload.WorkDir

	out, err := cmd.CombinedOutput()
	if err != nil {
		tail := string(out)
		if len(tail) > 500 {
			tail = "..." + tail[len(tail)-500:]
		}
		return fmt.Errorf("%v: %s", err, tail)
	}
	return nil
}

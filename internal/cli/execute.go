package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Crucible/internal/combo"
	"github.com/shaiso/Crucible/internal/config"
	"github.com/shaiso/Crucible/internal/dispatch"
	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/history"
	"github.com/shaiso/Crucible/internal/inputs"
	"github.com/shaiso/Crucible/internal/matrix"
	"github.com/shaiso/Crucible/internal/pipeline"
	"github.com/shaiso/Crucible/internal/remote"
	"github.com/shaiso/Crucible/internal/stages"
	"github.com/shaiso/Crucible/internal/telemetry"
	"github.com/shaiso/Crucible/internal/vaspio"
)

// runtime — зависимости одного запуска, собранные из конфигурации.
type runtime struct {
	cfg        config.Config
	dispatcher *dispatch.Dispatcher
	potcar     *vaspio.PotcarLibrary
	conn       *remote.Connection
	logger     *slog.Logger
}

// newRuntime собирает диспетчер, библиотеку POTCAR и, для remote
// бэкенда, AMQP-транспорт.
func newRuntime(ctx context.Context, cfg config.Config, interactive bool, logger *slog.Logger) (*runtime, error) {
	backend, err := domain.ParseBackend(cfg.JobSystem)
	if err != nil {
		return nil, err
	}

	dcfg := dispatch.Config{
		Backend:      backend,
		PollInterval: time.Duration(cfg.PollIntervalSec) * time.Second,
		WaitTimeout:  time.Duration(cfg.WaitTimeoutSec) * time.Second,
		Logger:       logger,
	}

	var conn *remote.Connection
	if backend == domain.BackendRemote {
		conn, err = remote.NewConnection(remote.BrokerURL(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to broker: %w", err)
		}
		if err := remote.SetupTopology(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("setup broker topology: %w", err)
		}

		tracker := remote.NewCompletionTracker(conn, logger)
		tracker.Start(ctx)
		dcfg.Publisher = remote.NewPublisher(conn, logger)
		dcfg.Lookup = tracker
	}

	dispatcher, err := dispatch.New(dcfg)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}

	var resolver vaspio.Resolver
	if interactive {
		resolver = vaspio.Interactive{In: os.Stdin, Out: os.Stderr}
	}

	return &runtime{
		cfg:        cfg,
		dispatcher: dispatcher,
		potcar: &vaspio.PotcarLibrary{
			Root:      cfg.PotcarLib,
			SourceDir: cfg.PotcarDir,
			Type:      cfg.PotcarType,
			Resolver:  resolver,
			Logger:    logger,
		},
		conn:   conn,
		logger: logger,
	}, nil
}

// close освобождает сетевые ресурсы запуска.
func (r *runtime) close() {
	if r.conn != nil {
		r.conn.Close()
	}
}

// pipelineFactory возвращает фабрику pipeline для combo-оркестратора.
//
// Реестр стадий собирается на каждую единицу заново: давление единицы
// входит в параметры INCAR.
func (r *runtime) pipelineFactory() combo.PipelineFactory {
	return func(unit domain.WorkUnit, structure string, steps []string, checkpointFile string) (*pipeline.Pipeline, error) {
		logger := telemetry.WithUnitID(r.logger, unit.ID.String()).With("structure", unit.Name)

		deps := stages.Deps{
			Dispatcher: r.dispatcher,
			Potcar:     r.potcar,
			Logger:     logger,
		}
		scfg := stages.Config{
			KSpacing: r.cfg.KSpacing,
			Params: inputs.Params{
				Encut:        r.cfg.Encut,
				Pressure:     unit.Pressure,
				NSW:          r.cfg.NSW,
				Potim:        r.cfg.Potim,
				Tebeg:        r.cfg.Tebeg,
				Teend:        r.cfg.Teend,
				PhononMethod: r.cfg.Method,
			},
			Resources: dispatch.Resources{
				Launcher:  r.cfg.Launcher(),
				Command:   r.cfg.Command,
				Partition: r.cfg.Partition,
				Nodes:     r.cfg.Nodes,
				Tasks:     r.cfg.NTasks,
				WallTime:  r.cfg.WallTime,
			},
		}

		return pipeline.New(pipeline.Config{
			WorkDir:        unit.WorkDir,
			Structure:      structure,
			Steps:          steps,
			CheckpointFile: checkpointFile,
			PrepareOnly:    !r.cfg.Submit,
			Logger:         logger,
		}, stages.NewRegistry(deps, scfg))
	}
}

// runSweep выполняет развёртку матрицы задач и печатает итоги.
//
// Провал единственной единицы — ошибка команды; в пакетном режиме
// команда завершается успешно, если сама развёртка дошла до конца,
// а провалы единиц отражаются в сводке.
func runSweep(ctx context.Context, cfg config.Config, groups combo.Groups, interactive bool, out *Output) error {
	logger := slog.Default()

	structures, err := discoverStructures(cfg)
	if err != nil {
		return err
	}
	units := matrix.Expand(structures, cfg.Pressures, cfg.WorkRoot)
	logger.Info("task matrix expanded",
		"structures", len(structures), "pressures", len(cfg.Pressures), "units", len(units))

	rt, err := newRuntime(ctx, cfg, interactive, logger)
	if err != nil {
		return err
	}
	defer rt.close()

	if cfg.MetricsAddr != "" {
		startMetricsOnce(cfg.MetricsAddr, logger)
	}

	var repo *history.Repo
	var batchID uuid.UUID
	if history.Enabled() {
		pool, err := history.NewPool(ctx)
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer pool.Close()
			repo = history.NewRepo(pool)
			batchID, err = repo.CreateBatch(ctx, strings.Join(os.Args[1:], " "), cfg.JobSystem)
			if err != nil {
				logger.Warn("history disabled", "error", err)
				repo = nil
			} else {
				logger = telemetry.WithBatchID(logger, batchID.String())
			}
		}
	}

	orch := combo.NewOrchestrator(rt.pipelineFactory(), groups, !cfg.Submit, logger)
	sched := matrix.NewScheduler(cfg.Parallel, logger)
	results := sched.Run(ctx, units, orch.RunUnit)

	summaryPath := filepath.Join(cfg.WorkRoot, matrix.SummaryFilename)
	if err := matrix.WriteSummary(summaryPath, results); err != nil {
		logger.Error("write summary report", "error", err)
	} else {
		out.Success("Summary written: " + summaryPath)
	}

	if repo != nil {
		for i := range results {
			if err := repo.RecordResult(ctx, batchID, &results[i]); err != nil {
				logger.Warn("record result", "unit", results[i].Name, "error", err)
			}
		}
		if err := repo.FinishBatch(ctx, batchID, domain.Summarize(results)); err != nil {
			logger.Warn("finish batch", "error", err)
		}
	}

	out.Results(results)

	if len(results) == 1 && !results[0].Success {
		return fmt.Errorf("unit %s failed: %s", results[0].Name, results[0].Error)
	}
	return nil
}

// discoverStructures возвращает список файлов структур: один файл или
// содержимое каталога в пакетном режиме.
func discoverStructures(cfg config.Config) ([]string, error) {
	batch, err := vaspio.DetectBatchMode(cfg.Input)
	if err != nil {
		return nil, err
	}
	if !batch {
		return []string{cfg.Input}, nil
	}
	return vaspio.ScanStructures(cfg.Input, cfg.StructureExts)
}

var metricsOnce sync.Once

// startMetricsOnce поднимает эндпоинт /metrics один раз на процесс:
// watch-режим вызывает развёртку повторно, и второй listener на том же
// адресе упал бы с "address already in use". Возвращает true, если
// сервер запущен этим вызовом.
func startMetricsOnce(addr string, logger *slog.Logger) bool {
	started := false
	metricsOnce.Do(func() {
		started = true
		go serveMetrics(addr, logger)
	})
	return started
}

// serveMetrics поднимает HTTP-эндпоинт /metrics.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server error", "error", err)
	}
}

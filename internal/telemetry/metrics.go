package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики движка. Регистрируются в глобальном реестре prometheus
// при инициализации пакета и отдаются через promhttp.

var (
	// UnitsTotal — количество обработанных рабочих единиц по статусам.
	UnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crucible_units_total",
		Help: "Total number of processed work units by status.",
	}, []string{"status"})

	// StepsTotal — количество выполненных шагов конвейера по статусам.
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crucible_steps_total",
		Help: "Total number of executed pipeline steps by step name and status.",
	}, []string{"step", "status"})

	// JobsSubmitted — количество отправленных задач по типу бэкенда.
	JobsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crucible_jobs_submitted_total",
		Help: "Total number of submitted jobs by backend.",
	}, []string{"backend"})

	// JobWaitSeconds — время ожидания завершения задачи в секундах.
	JobWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crucible_job_wait_seconds",
		Help:    "Time spent waiting for job completion in seconds.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// ActiveUnits — количество рабочих единиц, обрабатываемых в данный момент.
	ActiveUnits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crucible_active_units",
		Help: "Number of work units currently being processed.",
	})
)

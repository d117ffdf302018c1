package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shaiso/Crucible/internal/domain"
)

// Config — полная конфигурация запуска.
//
// Источники в порядке приоритета: флаги CLI, JSON-файл, значения по
// умолчанию. Никакого глобального состояния: собранный Config явно
// передаётся всем компонентам.
type Config struct {
	// Input — файл структуры или каталог структур (пакетный режим).
	Input string `json:"input"`

	// WorkRoot — корень рабочих каталогов.
	WorkRoot string `json:"work_root"`

	// Pressures — список давлений, ГПа. Пустой список — одно нулевое.
	Pressures []float64 `json:"pressures"`

	// StructureExts — расширения файлов структур для сканирования.
	StructureExts []string `json:"structure_exts"`

	// KSpacing — плотность сетки k-точек.
	KSpacing float64 `json:"kspacing"`

	// Encut — обрезка плоских волн, эВ; 0 — значение по умолчанию.
	Encut float64 `json:"encut"`

	// JobSystem — бэкенд запуска: bash, slurm, pbs, lsf, remote.
	JobSystem string `json:"job_system"`

	// MPIProcs — число MPI-процессов или готовая launcher-строка.
	MPIProcs string `json:"mpi_procs"`

	// Command — команда расчёта, запускаемая в скрипте.
	Command string `json:"command"`

	// Submit — отправлять задания; false означает prepare-only.
	Submit bool `json:"submit"`

	// PotcarDir — исходная библиотека псевдопотенциалов.
	PotcarDir string `json:"potcar_dir"`

	// PotcarType — тип псевдопотенциала (PBE, LDA, PW91).
	PotcarType string `json:"potcar_type"`

	// PotcarLib — каталог кэша выбранных псевдопотенциалов.
	PotcarLib string `json:"potcar_lib"`

	// Method — метод фононного расчёта: disp или dfpt.
	Method string `json:"method"`

	// Potim, Tebeg, Teend, NSW — параметры молекулярной динамики.
	Potim float64 `json:"potim"`
	Tebeg float64 `json:"tebeg"`
	Teend float64 `json:"teend"`
	NSW   int     `json:"nsw"`

	// Partition — очередь/партиция планировщика; пустая не пишется
	// в заголовок скрипта.
	Partition string `json:"partition"`

	// Nodes, NTasks — узлы и процессы задания для заголовка скрипта.
	Nodes  int `json:"nodes"`
	NTasks int `json:"ntasks"`

	// WallTime — лимит времени задания в формате планировщика.
	WallTime string `json:"walltime"`

	// Parallel — предел одновременных единиц работы в матрице задач.
	Parallel int `json:"tasks"`

	// PollIntervalSec — период опроса очереди, секунды.
	PollIntervalSec int `json:"poll_interval_sec"`

	// WaitTimeoutSec — предел ожидания задания, секунды; 0 — без предела.
	WaitTimeoutSec int `json:"wait_timeout_sec"`

	// MetricsAddr — адрес HTTP-эндпоинта /metrics; пусто — выключено.
	MetricsAddr string `json:"metrics_addr"`
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		WorkRoot:        ".",
		KSpacing:        0.3,
		Pressures:       []float64{0},
		StructureExts:   []string{"vasp"},
		JobSystem:       "bash",
		Command:         "vasp_std",
		PotcarType:      "PBE",
		PotcarLib:       "potcar_lib",
		Method:          "disp",
		Nodes:           1,
		NTasks:          1,
		Parallel:        1,
		PollIntervalSec: 30,
	}
}

// LoadFile накладывает JSON-файл на base и возвращает результат.
//
// В файле задаются только нужные ключи; отсутствующие не трогают base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}

	var overlay overlay
	if err := json.Unmarshal(data, &overlay); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	overlay.apply(&base)
	return base, nil
}

// Validate проверяет согласованность конфигурации.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if _, err := domain.ParseBackend(c.JobSystem); err != nil {
		return err
	}
	if c.KSpacing <= 0 {
		return fmt.Errorf("kspacing must be positive, got %g", c.KSpacing)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

// Launcher возвращает префикс запуска расчёта.
//
// Числовое значение MPIProcs разворачивается в "mpirun -np N";
// нечисловое трактуется как готовая launcher-строка; пустое — без MPI.
func (c Config) Launcher() string {
	procs := strings.TrimSpace(c.MPIProcs)
	if procs == "" {
		return ""
	}
	if n, err := strconv.Atoi(procs); err == nil {
		return fmt.Sprintf("mpirun -np %d", n)
	}
	return procs
}

// overlay — представление JSON-файла с опциональными полями.
type overlay struct {
	Input           *string    `json:"input"`
	WorkRoot        *string    `json:"work_root"`
	Pressures       *[]float64 `json:"pressures"`
	StructureExts   *[]string  `json:"structure_exts"`
	KSpacing        *float64   `json:"kspacing"`
	Encut           *float64   `json:"encut"`
	JobSystem       *string    `json:"job_system"`
	MPIProcs        *string    `json:"mpi_procs"`
	Command         *string    `json:"command"`
	Submit          *bool      `json:"submit"`
	PotcarDir       *string    `json:"potcar_dir"`
	PotcarType      *string    `json:"potcar_type"`
	PotcarLib       *string    `json:"potcar_lib"`
	Method          *string    `json:"method"`
	Potim           *float64   `json:"potim"`
	Tebeg           *float64   `json:"tebeg"`
	Teend           *float64   `json:"teend"`
	NSW             *int       `json:"nsw"`
	Partition       *string    `json:"partition"`
	Nodes           *int       `json:"nodes"`
	NTasks          *int       `json:"ntasks"`
	WallTime        *string    `json:"walltime"`
	Parallel        *int       `json:"tasks"`
	PollIntervalSec *int       `json:"poll_interval_sec"`
	WaitTimeoutSec  *int       `json:"wait_timeout_sec"`
	MetricsAddr     *string    `json:"metrics_addr"`
}

func (o *overlay) apply(c *Config) {
	if o.Input != nil {
		c.Input = *o.Input
	}
	if o.WorkRoot != nil {
		c.WorkRoot = *o.WorkRoot
	}
	if o.Pressures != nil {
		c.Pressures = *o.Pressures
	}
	if o.StructureExts != nil {
		c.StructureExts = *o.StructureExts
	}
	if o.KSpacing != nil {
		c.KSpacing = *o.KSpacing
	}
	if o.Encut != nil {
		c.Encut = *o.Encut
	}
	if o.JobSystem != nil {
		c.JobSystem = *o.JobSystem
	}
	if o.MPIProcs != nil {
		c.MPIProcs = *o.MPIProcs
	}
	if o.Command != nil {
		c.Command = *o.Command
	}
	if o.Submit != nil {
		c.Submit = *o.Submit
	}
	if o.PotcarDir != nil {
		c.PotcarDir = *o.PotcarDir
	}
	if o.PotcarType != nil {
		c.PotcarType = *o.PotcarType
	}
	if o.PotcarLib != nil {
		c.PotcarLib = *o.PotcarLib
	}
	if o.Method != nil {
		c.Method = *o.Method
	}
	if o.Potim != nil {
		c.Potim = *o.Potim
	}
	if o.Tebeg != nil {
		c.Tebeg = *o.Tebeg
	}
	if o.Teend != nil {
		c.Teend = *o.Teend
	}
	if o.NSW != nil {
		c.NSW = *o.NSW
	}
	if o.Partition != nil {
		c.Partition = *o.Partition
	}
	if o.Nodes != nil {
		c.Nodes = *o.Nodes
	}
	if o.NTasks != nil {
		c.NTasks = *o.NTasks
	}
	if o.WallTime != nil {
		c.WallTime = *o.WallTime
	}
	if o.Parallel != nil {
		c.Parallel = *o.Parallel
	}
	if o.PollIntervalSec != nil {
		c.PollIntervalSec = *o.PollIntervalSec
	}
	if o.WaitTimeoutSec != nil {
		c.WaitTimeoutSec = *o.WaitTimeoutSec
	}
	if o.MetricsAddr != nil {
		c.MetricsAddr = *o.MetricsAddr
	}
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Crucible/internal/config"
)

// options — значения флагов одной команды.
//
// Флаги объявляются с нулевыми значениями, а в итоговую конфигурацию
// попадают только изменённые (cmd.Flags().Changed): приоритет
// флаги > JSON-файл > значения по умолчанию.
type options struct {
	input        string
	configPath   string
	workRoot     string
	tasks        int
	kspacing     float64
	encut        float64
	pressures    []float64
	structureExt string
	jobSystem    string
	mpiProcs     string
	command      string
	submit       bool
	potcarDir    string
	potcarType   string
	potcarLib    string
	method       string
	potim        float64
	tebeg        float64
	teend        float64
	nsw          int
	partition    string
	nodes        int
	ntasks       int
	wallTime     string
	pollInterval int
	waitTimeout  int
	metricsAddr  string
	interactive  bool
}

// bind объявляет общие флаги команды запуска расчётов.
func (o *options) bind(cmd *cobra.Command) {
	f := cmd.Flags()

	f.StringVarP(&o.input, "input", "i", "", "Structure file or directory (batch mode)")
	f.StringVar(&o.configPath, "json", "", "JSON config file path")
	f.StringVar(&o.workRoot, "work-root", "", "Root directory for work units")
	f.IntVar(&o.tasks, "tasks", 0, "Maximum concurrent structures (default serial)")
	f.Float64Var(&o.kspacing, "kspacing", 0, "K-point mesh spacing")
	f.Float64Var(&o.encut, "encut", 0, "Plane-wave cutoff (eV)")
	f.Float64SliceVarP(&o.pressures, "pressure", "p", nil, "External pressure in GPa (repeatable)")
	f.StringVar(&o.structureExt, "structure-ext", "", "Comma-separated structure extensions for directory input")
	f.StringVarP(&o.jobSystem, "job-system", "j", "", "Job backend: bash, slurm, pbs, lsf, remote")
	f.StringVar(&o.mpiProcs, "mpi-procs", "", "MPI process count or full launcher prefix")
	f.StringVar(&o.command, "command", "", "Calculation command to run in the job script")
	f.BoolVar(&o.submit, "submit", false, "Submit jobs (default prepares inputs and scripts only)")
	f.StringVar(&o.potcarDir, "potcar-dir", "", "Pseudopotential catalog directory")
	f.StringVar(&o.potcarType, "potcar-type", "", "Pseudopotential type (PBE, LDA, PW91)")
	f.StringVar(&o.potcarLib, "potcar-lib", "", "Cache directory for chosen pseudopotentials")
	f.StringVar(&o.partition, "partition", "", "Scheduler queue/partition")
	f.IntVar(&o.nodes, "nodes", 0, "Nodes per job")
	f.IntVar(&o.ntasks, "ntasks", 0, "Processes per job")
	f.StringVar(&o.wallTime, "walltime", "", "Job wall-time limit in scheduler format")
	f.IntVar(&o.pollInterval, "poll-interval", 0, "Queue poll interval, seconds")
	f.IntVar(&o.waitTimeout, "wait-timeout", 0, "Job wait limit, seconds (0 is unlimited)")
	f.StringVar(&o.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVar(&o.interactive, "interactive", false, "Prompt when several pseudopotentials match an element")
}

// bindPhonon объявляет флаги фононного расчёта.
func (o *options) bindPhonon(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.method, "method", "", "Phonon method: disp or dfpt")
}

// bindMD объявляет флаги молекулярной динамики.
func (o *options) bindMD(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.potim, "potim", 0, "MD time step (fs)")
	f.Float64Var(&o.tebeg, "tebeg", 0, "MD initial temperature (K)")
	f.Float64Var(&o.teend, "teend", 0, "MD final temperature (K)")
	f.IntVar(&o.nsw, "nsw", 0, "MD step count")
}

// resolve собирает итоговую конфигурацию: значения по умолчанию,
// поверх них JSON-файл, поверх него изменённые флаги.
func (o *options) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("input") {
		cfg.Input = o.input
	}
	if changed("work-root") {
		cfg.WorkRoot = o.workRoot
	}
	if changed("tasks") {
		cfg.Parallel = o.tasks
	}
	if changed("kspacing") {
		cfg.KSpacing = o.kspacing
	}
	if changed("encut") {
		cfg.Encut = o.encut
	}
	if changed("pressure") {
		cfg.Pressures = o.pressures
	}
	if changed("structure-ext") {
		cfg.StructureExts = splitExts(o.structureExt)
	}
	if changed("job-system") {
		cfg.JobSystem = o.jobSystem
	}
	if changed("mpi-procs") {
		cfg.MPIProcs = o.mpiProcs
	}
	if changed("command") {
		cfg.Command = o.command
	}
	if changed("submit") {
		cfg.Submit = o.submit
	}
	if changed("potcar-dir") {
		cfg.PotcarDir = o.potcarDir
	}
	if changed("potcar-type") {
		cfg.PotcarType = o.potcarType
	}
	if changed("potcar-lib") {
		cfg.PotcarLib = o.potcarLib
	}
	if changed("method") {
		cfg.Method = o.method
	}
	if changed("potim") {
		cfg.Potim = o.potim
	}
	if changed("tebeg") {
		cfg.Tebeg = o.tebeg
	}
	if changed("teend") {
		cfg.Teend = o.teend
	}
	if changed("nsw") {
		cfg.NSW = o.nsw
	}
	if changed("partition") {
		cfg.Partition = o.partition
	}
	if changed("nodes") {
		cfg.Nodes = o.nodes
	}
	if changed("ntasks") {
		cfg.NTasks = o.ntasks
	}
	if changed("walltime") {
		cfg.WallTime = o.wallTime
	}
	if changed("poll-interval") {
		cfg.PollIntervalSec = o.pollInterval
	}
	if changed("wait-timeout") {
		cfg.WaitTimeoutSec = o.waitTimeout
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}

	return cfg, cfg.Validate()
}

// splitExts разбирает список расширений через запятую.
func splitExts(s string) []string {
	parts := strings.Split(s, ",")
	exts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), ".")
		if p != "" {
			exts = append(exts, p)
		}
	}
	return exts
}

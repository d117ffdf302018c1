package stages

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shaiso/Crucible/internal/dispatch"
	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/inputs"
	"github.com/shaiso/Crucible/internal/pipeline"
	"github.com/shaiso/Crucible/internal/vaspio"
)

// Фиксированные каталоги стадий внутри рабочего каталога единицы.
//
// Нумерация отражает порядок внутри pipeline; phonon и md живут в
// собственных pipeline, поэтому нумеруются с 01.
var stageDirs = map[string]string{
	domain.StageRelax:  "01_relax",
	domain.StageSCF:    "02_scf",
	domain.StageDOS:    "03_dos",
	domain.StageBand:   "04_band",
	domain.StageELF:    "05_elf",
	domain.StageCOHP:   "06_cohp",
	domain.StageBader:  "07_bader",
	domain.StageFermi:  "08_fermisurface",
	domain.StagePhonon: "01_phonon",
	domain.StageMD:     "01_md",
}

// Dir возвращает каталог стадии внутри рабочего каталога единицы.
func Dir(workDir, stage string) (string, error) {
	sub, ok := stageDirs[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownStage, stage)
	}
	return filepath.Join(workDir, sub), nil
}

// Symmetry — итог анализа симметрии структуры.
type Symmetry struct {
	// Primitive — путь к примитивной ячейке.
	Primitive string

	// Conventional — путь к стандартной ячейке.
	Conventional string

	// Spacegroup — метка пространственной группы.
	Spacegroup string
}

// Finder — внешний анализатор симметрии.
//
// Анализ симметрии не входит в ядро: коллаборатор инжектируется, а
// nil означает, что стадия релаксации пропускает анализ.
type Finder interface {
	Analyze(ctx context.Context, poscar, outputDir string) (Symmetry, error)
}

// JobDispatcher — контракт отправки заданий, реализуемый
// dispatch.Dispatcher.
type JobDispatcher interface {
	WriteScript(workDir string, res dispatch.Resources) (string, error)
	Submit(ctx context.Context, script, workDir string) (domain.JobHandle, error)
	Wait(ctx context.Context, handle domain.JobHandle, workDir string) error
}

// Deps — зависимости исполнителей стадий.
type Deps struct {
	// Dispatcher — отправка и ожидание заданий.
	Dispatcher JobDispatcher

	// Potcar — сборка POTCAR из кэша псевдопотенциалов.
	Potcar *vaspio.PotcarLibrary

	// Symmetry — анализатор симметрии; nil отключает анализ.
	Symmetry Finder

	// Logger — логгер; nil заменяется на slog.Default().
	Logger *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Config — параметры стадий одной единицы работы.
//
// Конфигурация фиксируется на единицу: давление входит в Params,
// поэтому реестр стадий собирается заново для каждой единицы матрицы.
type Config struct {
	// KSpacing — плотность сетки k-точек.
	KSpacing float64

	// Params — параметры INCAR, включая давление единицы.
	Params inputs.Params

	// Resources — ресурсы скрипта задания; JobName выставляется
	// именем стадии.
	Resources dispatch.Resources
}

// run выполняет общий цикл стадии: каталог, входные файлы, скрипт,
// отправка и ожидание. Возвращает каталог стадии.
//
// В prepare-only режиме цикл останавливается после генерации скрипта.
func run(ctx context.Context, deps Deps, cfg Config, stage string, st *pipeline.State) (string, error) {
	stageDir, err := Dir(st.WorkDir, stage)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return "", fmt.Errorf("create stage directory: %w", err)
	}

	logger := deps.logger().With("stage", stage, "dir", stageDir)

	poscar := filepath.Join(stageDir, "POSCAR")
	if err := vaspio.EnsurePOSCAR(st.BestStructure(), poscar); err != nil {
		return "", err
	}
	if err := inputs.WriteINCAR(filepath.Join(stageDir, "INCAR"), stage, cfg.Params); err != nil {
		return "", err
	}
	if err := inputs.WriteKPOINTS(filepath.Join(stageDir, "KPOINTS"), poscar, cfg.KSpacing, logger); err != nil {
		return "", err
	}
	if err := deps.Potcar.Prepare(poscar, filepath.Join(stageDir, "POTCAR")); err != nil {
		return "", err
	}

	res := cfg.Resources
	res.JobName = stage
	script, err := deps.Dispatcher.WriteScript(stageDir, res)
	if err != nil {
		return "", err
	}

	if st.PrepareOnly {
		logger.Info("inputs prepared, submission skipped")
		return stageDir, nil
	}

	handle, err := deps.Dispatcher.Submit(ctx, script, stageDir)
	if err != nil {
		return "", err
	}
	if err := deps.Dispatcher.Wait(ctx, handle, stageDir); err != nil {
		return "", err
	}

	if !vaspio.IsStageComplete(stageDir) {
		return "", fmt.Errorf("stage %s did not complete in %s", stage, stageDir)
	}

	logger.Info("stage calculation complete")
	return stageDir, nil
}

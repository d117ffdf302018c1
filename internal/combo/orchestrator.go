package combo

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/pipeline"
	"github.com/shaiso/Crucible/internal/stages"
	"github.com/shaiso/Crucible/internal/vaspio"
)

// PipelineFactory собирает pipeline для единицы работы.
//
// structure — файл структуры, с которого pipeline начинает;
// для веток за релаксацией это лучшая структура из её состояния.
type PipelineFactory func(unit domain.WorkUnit, structure string, steps []string, checkpointFile string) (*pipeline.Pipeline, error)

// Orchestrator выполняет combo для одной единицы работы: релаксация
// как предпосылка, затем конкурентные ветки (фононы, электронные
// свойства, молекулярная динамика) поверх релаксированной структуры.
type Orchestrator struct {
	factory     PipelineFactory
	groups      Groups
	prepareOnly bool
	logger      *slog.Logger
}

// NewOrchestrator создаёт Orchestrator.
func NewOrchestrator(factory PipelineFactory, groups Groups, prepareOnly bool, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		factory:     factory,
		groups:      groups,
		prepareOnly: prepareOnly,
		logger:      logger,
	}
}

// RunUnit выполняет combo для единицы и возвращает её результат.
//
// Провал релаксации блокирует все ветки. Провал одной ветки не
// прерывает остальные: они доводятся до конца, а результат единицы
// собирает все ошибки. В prepare-only режиме готовится только
// релаксация, ветки пропускаются.
func (o *Orchestrator) RunUnit(ctx context.Context, unit domain.WorkUnit) *domain.Result {
	result := domain.NewResult(unit)
	logger := o.logger.With("structure", unit.Name, "pressure", unit.Pressure)

	relax, err := o.factory(unit, unit.Structure, []string{domain.StageRelax}, RelaxCheckpoint)
	if err != nil {
		result.MarkFailed(fmt.Sprintf("build relax pipeline: %v", err))
		return result
	}
	if err := relax.Run(ctx); err != nil {
		result.MarkFailed(fmt.Sprintf("relax: %v", err))
		return result
	}

	if o.prepareOnly {
		logger.Info("prepare-only: relax inputs ready, downstream groups skipped")
		result.MarkSucceeded()
		return result
	}

	if relaxDir, err := stages.Dir(unit.WorkDir, domain.StageRelax); err == nil {
		if energy, err := vaspio.FinalEnergy(relaxDir); err == nil {
			result.Energy = &energy
		}
	}

	best := relax.State().BestStructure()

	type branch struct {
		name       string
		steps      []string
		checkpoint string
	}
	var branches []branch
	if o.groups.Phonon {
		branches = append(branches, branch{"phonon", []string{domain.StagePhonon}, PhononCheckpoint})
	}
	if len(o.groups.Properties) > 0 {
		branches = append(branches, branch{"properties", o.groups.Properties, ElectronicCheckpoint})
	}
	if o.groups.MD {
		branches = append(branches, branch{"md", []string{domain.StageMD}, MDCheckpoint})
	}

	if len(branches) == 0 {
		result.MarkSucceeded()
		return result
	}

	var (
		mu       sync.Mutex
		failures []string
		wg       sync.WaitGroup
	)

	for _, br := range branches {
		wg.Add(1)
		go func(br branch) {
			defer wg.Done()

			p, err := o.factory(unit, best, br.steps, br.checkpoint)
			if err == nil {
				err = p.Run(ctx)
			}
			if err != nil {
				logger.Error("combo branch failed", "branch", br.name, "error", err)
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", br.name, err))
				mu.Unlock()
				return
			}
			logger.Info("combo branch complete", "branch", br.name)
		}(br)
	}
	wg.Wait()

	if len(failures) > 0 {
		sort.Strings(failures)
		result.MarkFailed(strings.Join(failures, "; "))
		return result
	}

	result.MarkSucceeded()
	return result
}

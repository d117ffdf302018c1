package stages

import (
	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/pipeline"
)

// NewRegistry собирает реестр исполнителей всех известных стадий.
//
// Конфигурация содержит давление единицы, поэтому реестр создаётся
// для каждой единицы матрицы отдельно.
func NewRegistry(deps Deps, cfg Config) *pipeline.Registry {
	reg := pipeline.NewRegistry()

	reg.Register(domain.StageRelax, &relaxExecutor{deps: deps, cfg: cfg})

	for _, stage := range []string{
		domain.StageSCF,
		domain.StageDOS,
		domain.StageBand,
		domain.StageELF,
		domain.StageCOHP,
		domain.StageBader,
		domain.StageFermi,
	} {
		reg.Register(stage, &propertyExecutor{deps: deps, cfg: cfg, stage: stage})
	}

	reg.Register(domain.StagePhonon, &plainExecutor{deps: deps, cfg: cfg, stage: domain.StagePhonon})
	reg.Register(domain.StageMD, &plainExecutor{deps: deps, cfg: cfg, stage: domain.StageMD})

	return reg
}

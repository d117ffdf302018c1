package stages

import (
	"context"
	"os"
	"path/filepath"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/pipeline"
)

// relaxExecutor выполняет релаксацию ячейки и публикует пути для
// последующих стадий.
type relaxExecutor struct {
	deps Deps
	cfg  Config
}

// Execute реализует pipeline.Executor.
func (e *relaxExecutor) Execute(ctx context.Context, st *pipeline.State) error {
	stageDir, err := run(ctx, e.deps, e.cfg, domain.StageRelax, st)
	if err != nil {
		return err
	}
	if st.PrepareOnly {
		return nil
	}

	contcar := filepath.Join(stageDir, "CONTCAR")
	if _, err := os.Stat(contcar); err == nil {
		st.Set(pipeline.DataRelaxed, contcar)
	}

	// Анализ симметрии не фатален: без него зависимые стадии берут
	// релаксированную структуру как есть.
	if e.deps.Symmetry == nil {
		return nil
	}
	sym, err := e.deps.Symmetry.Analyze(ctx, contcar, stageDir)
	if err != nil {
		e.deps.logger().Warn("symmetry analysis failed, using relaxed cell",
			"structure", contcar, "error", err)
		return nil
	}
	if sym.Primitive != "" {
		st.Set(pipeline.DataPrimitive, sym.Primitive)
	}
	if sym.Conventional != "" {
		st.Set(pipeline.DataConventional, sym.Conventional)
	}
	if sym.Spacegroup != "" {
		st.Set(pipeline.DataSpacegroup, sym.Spacegroup)
	}
	return nil
}

package stages

import (
	"context"

	"github.com/shaiso/Crucible/internal/pipeline"
)

// plainExecutor выполняет стадию без дополнительных артефактов:
// фононы и молекулярная динамика укладываются в общий цикл.
type plainExecutor struct {
	deps  Deps
	cfg   Config
	stage string
}

// Execute реализует pipeline.Executor.
func (e *plainExecutor) Execute(ctx context.Context, st *pipeline.State) error {
	_, err := run(ctx, e.deps, e.cfg, e.stage, st)
	return err
}

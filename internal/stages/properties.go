package stages

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/pipeline"
)

// propertyExecutor выполняет одну стадию электронных свойств.
//
// Стадии после SCF (DOS, band, fermisurface) читают зарядовую
// плотность: CHGCAR из каталога SCF копируется в каталог стадии до
// отправки задания.
type propertyExecutor struct {
	deps  Deps
	cfg   Config
	stage string
}

// Execute реализует pipeline.Executor.
func (e *propertyExecutor) Execute(ctx context.Context, st *pipeline.State) error {
	stageDir, err := Dir(st.WorkDir, e.stage)
	if err != nil {
		return err
	}

	if e.stage != domain.StageSCF {
		if err := e.copyChargeDensity(st.WorkDir, stageDir); err != nil {
			return err
		}
	}

	_, err = run(ctx, e.deps, e.cfg, e.stage, st)
	return err
}

// copyChargeDensity переносит CHGCAR из каталога SCF, если он есть.
// Отсутствие CHGCAR не ошибка: стадия может работать самодостаточно.
func (e *propertyExecutor) copyChargeDensity(workDir, stageDir string) error {
	scfDir, err := Dir(workDir, domain.StageSCF)
	if err != nil {
		return err
	}

	src := filepath.Join(scfDir, "CHGCAR")
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open CHGCAR: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return fmt.Errorf("create stage directory: %w", err)
	}
	out, err := os.Create(filepath.Join(stageDir, "CHGCAR"))
	if err != nil {
		return fmt.Errorf("create CHGCAR copy: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy CHGCAR: %w", err)
	}
	return out.Close()
}

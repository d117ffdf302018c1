package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shaiso/Crucible/internal/checkpoint"
	"github.com/shaiso/Crucible/internal/domain"
)

// countingExecutor считает вызовы и возвращает заданную ошибку.
type countingExecutor struct {
	calls int32
	err   error
	fn    func(st *State)
}

func (e *countingExecutor) Execute(_ context.Context, st *State) error {
	atomic.AddInt32(&e.calls, 1)
	if e.fn != nil {
		e.fn(st)
	}
	return e.err
}

func newTestRegistry(executors map[string]Executor) *Registry {
	reg := NewRegistry()
	for name, ex := range executors {
		reg.Register(name, ex)
	}
	return reg
}

func TestNewValidation(t *testing.T) {
	reg := newTestRegistry(map[string]Executor{
		"relax": &countingExecutor{},
		"scf":   &countingExecutor{},
	})

	tests := []struct {
		name    string
		steps   []string
		wantErr error
	}{
		{"no steps", nil, ErrNoSteps},
		{"duplicate step", []string{"relax", "relax"}, ErrDuplicateStep},
		{"unknown step", []string{"relax", "band"}, ErrUnknownStep},
		{"valid", []string{"relax", "scf"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Config{WorkDir: t.TempDir(), Steps: tt.steps}, reg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	var order []string
	reg := NewRegistry()
	for _, name := range []string{"relax", "scf", "dos"} {
		name := name
		reg.Register(name, ExecutorFunc(func(_ context.Context, _ *State) error {
			order = append(order, name)
			return nil
		}))
	}

	p, err := New(Config{WorkDir: t.TempDir(), Steps: []string{"relax", "scf", "dos"}}, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"relax", "scf", "dos"}
	if len(order) != len(want) {
		t.Fatalf("executed %d steps, want %d", len(order), len(want))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("order[%d] = %s, want %s", i, order[i], name)
		}
	}
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	relax := &countingExecutor{}
	scf := &countingExecutor{err: errors.New("scf diverged")}
	dos := &countingExecutor{}

	reg := newTestRegistry(map[string]Executor{"relax": relax, "scf": scf, "dos": dos})

	p, err := New(Config{WorkDir: t.TempDir(), Steps: []string{"relax", "scf", "dos"}}, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = p.Run(context.Background())
	if !errors.Is(err, ErrStepFailed) {
		t.Fatalf("Run() error = %v, want ErrStepFailed", err)
	}

	// Шаг после провалившегося не запускается.
	if dos.calls != 0 {
		t.Errorf("dos executed %d times after scf failure, want 0", dos.calls)
	}

	statuses := p.Statuses()
	if statuses["scf"] != domain.StepStatusFailed {
		t.Errorf("scf status = %s, want FAILED", statuses["scf"])
	}
	if statuses["dos"] != domain.StepStatusPending {
		t.Errorf("dos status = %s, want PENDING", statuses["dos"])
	}
}

func TestRunResumeSkipsCompletedSteps(t *testing.T) {
	workDir := t.TempDir()

	relax := &countingExecutor{fn: func(st *State) {
		st.Set(DataRelaxed, "01_relax/CONTCAR")
	}}
	scf := &countingExecutor{err: errors.New("not converged")}

	reg := newTestRegistry(map[string]Executor{"relax": relax, "scf": scf})
	cfg := Config{WorkDir: workDir, Steps: []string{"relax", "scf"}}

	p, err := New(cfg, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Run(context.Background()); !errors.Is(err, ErrStepFailed) {
		t.Fatalf("first Run() error = %v, want ErrStepFailed", err)
	}

	// Второй запуск: relax в чекпоинте как SUCCESS, исполняется только scf.
	scf.err = nil
	p2, err := New(cfg, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p2.Run(context.Background()); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if relax.calls != 1 {
		t.Errorf("relax executed %d times across resumes, want 1", relax.calls)
	}
	if scf.calls != 2 {
		t.Errorf("scf executed %d times across resumes, want 2", scf.calls)
	}

	statuses := p2.Statuses()
	if statuses["relax"] != domain.StepStatusSkipped {
		t.Errorf("relax status on resume = %s, want SKIPPED", statuses["relax"])
	}

	// Данные relax из чекпоинта доступны scf при resume.
	if got := p2.State().Get(DataRelaxed); got != "01_relax/CONTCAR" {
		t.Errorf("seeded relaxed structure = %q, want %q", got, "01_relax/CONTCAR")
	}
}

func TestRunFullSuccessRerunExecutesNothing(t *testing.T) {
	workDir := t.TempDir()
	relax := &countingExecutor{}
	scf := &countingExecutor{}

	reg := newTestRegistry(map[string]Executor{"relax": relax, "scf": scf})
	cfg := Config{WorkDir: workDir, Steps: []string{"relax", "scf"}}

	for i := 0; i < 2; i++ {
		p, err := New(cfg, reg)
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := p.Run(context.Background()); err != nil {
			t.Fatalf("Run() #%d error = %v", i+1, err)
		}
	}

	if relax.calls != 1 || scf.calls != 1 {
		t.Errorf("executors called relax=%d scf=%d on rerun, want 1 each", relax.calls, scf.calls)
	}
}

func TestRunningStatusNotPersisted(t *testing.T) {
	workDir := t.TempDir()
	observed := domain.StepStatusSuccess // заведомо не PENDING

	reg := NewRegistry()
	reg.Register("relax", ExecutorFunc(func(_ context.Context, _ *State) error {
		// Пока шаг выполняется, на диске не должно быть его записи:
		// RUNNING живёт только в памяти.
		observed = checkpoint.NewStore(workDir, "relax_checkpoint.json").Load().Status("relax")
		return nil
	}))

	p, err := New(Config{
		WorkDir:        workDir,
		Steps:          []string{"relax"},
		CheckpointFile: "relax_checkpoint.json",
	}, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if observed != domain.StepStatusPending {
		t.Errorf("on-disk status during execution = %s, want PENDING", observed)
	}

	// Финальный статус записан.
	final := checkpoint.NewStore(workDir, "relax_checkpoint.json").Load().Status("relax")
	if final != domain.StepStatusSuccess {
		t.Errorf("on-disk status after Run = %s, want SUCCESS", final)
	}
}

func TestRunPanicTreatedAsFailure(t *testing.T) {
	reg := NewRegistry()
	reg.Register("relax", ExecutorFunc(func(_ context.Context, _ *State) error {
		panic("nil OUTCAR")
	}))

	p, err := New(Config{WorkDir: t.TempDir(), Steps: []string{"relax"}}, reg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = p.Run(context.Background())
	if !errors.Is(err, ErrStepFailed) {
		t.Errorf("Run() error = %v, want ErrStepFailed", err)
	}
	if !errors.Is(err, ErrStepPanicked) {
		t.Errorf("Run() error = %v, want ErrStepPanicked in chain", err)
	}
	if p.Statuses()["relax"] != domain.StepStatusFailed {
		t.Errorf("relax status = %s, want FAILED", p.Statuses()["relax"])
	}
}

func TestStateBestStructure(t *testing.T) {
	st := NewState("/work", "input.vasp", false)

	if got := st.BestStructure(); got != "input.vasp" {
		t.Errorf("BestStructure() = %q, want input", got)
	}

	st.Set(DataRelaxed, "01_relax/CONTCAR")
	if got := st.BestStructure(); got != "01_relax/CONTCAR" {
		t.Errorf("BestStructure() = %q, want relaxed", got)
	}

	st.Set(DataPrimitive, "01_relax/PRIMCELL.vasp")
	if got := st.BestStructure(); got != "01_relax/PRIMCELL.vasp" {
		t.Errorf("BestStructure() = %q, want primitive", got)
	}
}

package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/Crucible/internal/dispatch"
	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/pipeline"
	"github.com/shaiso/Crucible/internal/vaspio"
)

const testPOSCAR = `Si2
1.0
5.0 0.0 0.0
0.0 5.0 0.0
0.0 0.0 5.0
Si
2
Direct
0.0 0.0 0.0
0.5 0.5 0.5
`

// fakeDispatcher пишет скрипт и имитирует успешный расчёт: кладёт в
// каталог стадии OUTCAR с маркером завершения и CONTCAR.
type fakeDispatcher struct {
	submitted []string
	waitErr   error
	outcar    string
}

func (f *fakeDispatcher) WriteScript(workDir string, res dispatch.Resources) (string, error) {
	path := filepath.Join(workDir, "job_"+res.JobName+".sh")
	return path, os.WriteFile(path, []byte("#!/bin/bash\n"), 0o755)
}

func (f *fakeDispatcher) Submit(_ context.Context, script, workDir string) (domain.JobHandle, error) {
	f.submitted = append(f.submitted, script)

	outcar := f.outcar
	if outcar == "" {
		outcar = "reached required accuracy\n"
	}
	if err := os.WriteFile(filepath.Join(workDir, "OUTCAR"), []byte(outcar), 0o644); err != nil {
		return domain.JobHandle{}, err
	}
	if err := os.WriteFile(filepath.Join(workDir, "CONTCAR"), []byte(testPOSCAR), 0o644); err != nil {
		return domain.JobHandle{}, err
	}
	return domain.JobHandle{ID: "1", Backend: domain.BackendBash, Script: script}, nil
}

func (f *fakeDispatcher) Wait(context.Context, domain.JobHandle, string) error {
	return f.waitErr
}

func newTestDeps(t *testing.T, fd *fakeDispatcher) Deps {
	t.Helper()

	dir := t.TempDir()
	source := filepath.Join(dir, "potpaw")
	if err := os.MkdirAll(filepath.Join(source, "Si"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(source, "Si", "POTCAR"), []byte("PAW_PBE Si\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	return Deps{
		Dispatcher: fd,
		Potcar: &vaspio.PotcarLibrary{
			Root:      filepath.Join(dir, "potcar_lib"),
			SourceDir: source,
		},
	}
}

func newTestState(t *testing.T, prepareOnly bool) *pipeline.State {
	t.Helper()
	workDir := t.TempDir()
	structure := filepath.Join(workDir, "input.vasp")
	if err := os.WriteFile(structure, []byte(testPOSCAR), 0o644); err != nil {
		t.Fatal(err)
	}
	return pipeline.NewState(workDir, structure, prepareOnly)
}

func testConfig() Config {
	return Config{
		KSpacing:  0.3,
		Resources: dispatch.Resources{Command: "vasp_std"},
	}
}

func TestRelaxExecutorPublishesRelaxedStructure(t *testing.T) {
	fd := &fakeDispatcher{}
	executor := &relaxExecutor{deps: newTestDeps(t, fd), cfg: testConfig()}
	st := newTestState(t, false)

	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	relaxed := st.Get(pipeline.DataRelaxed)
	if !strings.HasSuffix(relaxed, filepath.Join("01_relax", "CONTCAR")) {
		t.Errorf("relaxed structure = %q", relaxed)
	}

	stageDir := filepath.Dir(relaxed)
	for _, name := range []string{"POSCAR", "INCAR", "KPOINTS", "POTCAR", "job_relax.sh"} {
		if _, err := os.Stat(filepath.Join(stageDir, name)); err != nil {
			t.Errorf("stage input %s missing: %v", name, err)
		}
	}
}

func TestRelaxExecutorPrepareOnlySkipsSubmission(t *testing.T) {
	fd := &fakeDispatcher{}
	executor := &relaxExecutor{deps: newTestDeps(t, fd), cfg: testConfig()}
	st := newTestState(t, true)

	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(fd.submitted) != 0 {
		t.Errorf("submitted %d jobs in prepare-only mode, want 0", len(fd.submitted))
	}

	// Входные файлы и скрипт всё равно сгенерированы.
	stageDir := filepath.Join(st.WorkDir, "01_relax")
	for _, name := range []string{"POSCAR", "INCAR", "KPOINTS", "POTCAR", "job_relax.sh"} {
		if _, err := os.Stat(filepath.Join(stageDir, name)); err != nil {
			t.Errorf("prepared input %s missing: %v", name, err)
		}
	}
}

func TestRelaxExecutorIncompleteCalculation(t *testing.T) {
	fd := &fakeDispatcher{outcar: "still running\n"}
	executor := &relaxExecutor{deps: newTestDeps(t, fd), cfg: testConfig()}
	st := newTestState(t, false)

	if err := executor.Execute(context.Background(), st); err == nil {
		t.Error("Execute() expected error for incomplete OUTCAR")
	}
}

// fakeFinder возвращает фиксированный результат анализа симметрии.
type fakeFinder struct {
	sym Symmetry
	err error
}

func (f *fakeFinder) Analyze(context.Context, string, string) (Symmetry, error) {
	return f.sym, f.err
}

func TestRelaxExecutorSymmetry(t *testing.T) {
	fd := &fakeDispatcher{}
	deps := newTestDeps(t, fd)
	deps.Symmetry = &fakeFinder{sym: Symmetry{
		Primitive:  "/work/01_relax/POSCAR_primitive",
		Spacegroup: "Pm-3m (221)",
	}}

	executor := &relaxExecutor{deps: deps, cfg: testConfig()}
	st := newTestState(t, false)

	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if st.Get(pipeline.DataPrimitive) != "/work/01_relax/POSCAR_primitive" {
		t.Errorf("primitive = %q", st.Get(pipeline.DataPrimitive))
	}
	if st.Get(pipeline.DataSpacegroup) != "Pm-3m (221)" {
		t.Errorf("spacegroup = %q", st.Get(pipeline.DataSpacegroup))
	}
}

func TestRelaxExecutorSymmetryFailureNotFatal(t *testing.T) {
	fd := &fakeDispatcher{}
	deps := newTestDeps(t, fd)
	deps.Symmetry = &fakeFinder{err: errors.New("spglib unavailable")}

	executor := &relaxExecutor{deps: deps, cfg: testConfig()}
	st := newTestState(t, false)

	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v, symmetry failure must not be fatal", err)
	}
	if st.Get(pipeline.DataPrimitive) != "" {
		t.Error("primitive set despite failed analysis")
	}
}

func TestPropertyExecutorCopiesChargeDensity(t *testing.T) {
	fd := &fakeDispatcher{}
	deps := newTestDeps(t, fd)
	st := newTestState(t, false)

	scfDir := filepath.Join(st.WorkDir, "02_scf")
	if err := os.MkdirAll(scfDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scfDir, "CHGCAR"), []byte("density\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	executor := &propertyExecutor{deps: deps, cfg: testConfig(), stage: domain.StageDOS}
	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(st.WorkDir, "03_dos", "CHGCAR"))
	if err != nil {
		t.Fatalf("CHGCAR not copied: %v", err)
	}
	if string(data) != "density\n" {
		t.Errorf("CHGCAR content = %q", data)
	}
}

func TestPropertyExecutorWithoutChargeDensity(t *testing.T) {
	fd := &fakeDispatcher{}
	executor := &propertyExecutor{deps: newTestDeps(t, fd), cfg: testConfig(), stage: domain.StageELF}
	st := newTestState(t, false)

	// Нет каталога SCF — стадия выполняется без CHGCAR.
	if err := executor.Execute(context.Background(), st); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestNewRegistryCoversAllStages(t *testing.T) {
	reg := NewRegistry(newTestDeps(t, &fakeDispatcher{}), testConfig())
	for _, stage := range domain.Stages() {
		if !reg.Has(stage) {
			t.Errorf("registry missing stage %s", stage)
		}
	}
}

func TestDirUnknownStage(t *testing.T) {
	if _, err := Dir("/work", "wannier"); !errors.Is(err, domain.ErrUnknownStage) {
		t.Errorf("Dir() error = %v, want ErrUnknownStage", err)
	}
}

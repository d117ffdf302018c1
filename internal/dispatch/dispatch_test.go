package dispatch

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Crucible/internal/domain"
	"github.com/shaiso/Crucible/internal/remote"
)

// fakeRunner подменяет выполнение внешних команд.
type fakeRunner struct {
	calls   []string
	outputs map[string]string
	errs    map[string]error
}

func (f *fakeRunner) run(_ context.Context, _, name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	for prefix, out := range f.outputs {
		if strings.HasPrefix(key, prefix) {
			return out, f.errs[prefix]
		}
	}
	for prefix, err := range f.errs {
		if strings.HasPrefix(key, prefix) {
			return "", err
		}
	}
	return "", nil
}

func newTestDispatcher(t *testing.T, backend domain.Backend, f *fakeRunner) *Dispatcher {
	t.Helper()
	d, err := New(Config{Backend: backend, PollInterval: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d.run = f.run
	return d
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Backend: "torque"}); !errors.Is(err, domain.ErrUnknownBackend) {
		t.Errorf("New(torque) error = %v, want ErrUnknownBackend", err)
	}

	// remote без транспорта отклоняется при конструировании.
	if _, err := New(Config{Backend: domain.BackendRemote}); !errors.Is(err, ErrBackendNotConfigured) {
		t.Errorf("New(remote) error = %v, want ErrBackendNotConfigured", err)
	}
}

func TestWriteScriptHeaders(t *testing.T) {
	res := Resources{
		JobName:   "relax",
		Launcher:  "mpirun -np 16",
		Command:   "vasp_std",
		Partition: "normal",
		Tasks:     16,
		WallTime:  "24:00:00",
	}

	tests := []struct {
		backend domain.Backend
		want    []string
	}{
		{domain.BackendBash, []string{"#!/bin/bash", "mpirun -np 16 vasp_std > relax.log 2>&1"}},
		{domain.BackendSlurm, []string{"#SBATCH --job-name=relax", "#SBATCH --ntasks=16", "#SBATCH --partition=normal", "#SBATCH --time=24:00:00"}},
		{domain.BackendPBS, []string{"#PBS -N relax", "#PBS -l nodes=1:ppn=16", "#PBS -q normal", "cd $PBS_O_WORKDIR"}},
		{domain.BackendLSF, []string{"#BSUB -J relax", "#BSUB -n 16", "#BSUB -q normal", "#BSUB -W 24:00:00"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			d := newTestDispatcher(t, tt.backend, &fakeRunner{})
			dir := t.TempDir()

			path, err := d.WriteScript(dir, res)
			if err != nil {
				t.Fatalf("WriteScript() error = %v", err)
			}
			if !strings.HasSuffix(path, "job_relax.sh") {
				t.Errorf("script path = %q", path)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			for _, want := range tt.want {
				if !strings.Contains(string(data), want) {
					t.Errorf("%s script missing %q", tt.backend, want)
				}
			}
		})
	}
}

func TestWriteScriptRequiresCommand(t *testing.T) {
	d := newTestDispatcher(t, domain.BackendBash, &fakeRunner{})
	if _, err := d.WriteScript(t.TempDir(), Resources{JobName: "relax"}); err == nil {
		t.Error("WriteScript() expected error for missing command")
	}
}

func TestSubmitParsesJobIDs(t *testing.T) {
	tests := []struct {
		backend domain.Backend
		prefix  string
		output  string
		wantID  string
	}{
		{domain.BackendSlurm, "sbatch", "Submitted batch job 12345\n", "12345"},
		{domain.BackendPBS, "qsub", "98765.cluster.local\n", "98765.cluster.local"},
		{domain.BackendLSF, "bash -c bsub", "Job <555> is submitted to queue <normal>.\n", "555"},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			f := &fakeRunner{outputs: map[string]string{tt.prefix: tt.output}}
			d := newTestDispatcher(t, tt.backend, f)

			handle, err := d.Submit(context.Background(), "job_relax.sh", t.TempDir())
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if handle.ID != tt.wantID {
				t.Errorf("handle.ID = %q, want %q", handle.ID, tt.wantID)
			}
		})
	}
}

func TestSubmitNoJobID(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{"sbatch": "sbatch: error: invalid partition\n"}}
	d := newTestDispatcher(t, domain.BackendSlurm, f)

	if _, err := d.Submit(context.Background(), "job.sh", t.TempDir()); !errors.Is(err, ErrNoJobID) {
		t.Errorf("Submit() error = %v, want ErrNoJobID", err)
	}
}

func TestBashSubmitAndWait(t *testing.T) {
	f := &fakeRunner{}
	d := newTestDispatcher(t, domain.BackendBash, f)

	handle, err := d.Submit(context.Background(), "job_relax.sh", t.TempDir())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := d.Wait(context.Background(), handle, t.TempDir()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	// Ненулевой код выхода фиксируется в handle и всплывает на Wait.
	f2 := &fakeRunner{errs: map[string]error{"bash": errors.New("exit status 1")}}
	d2 := newTestDispatcher(t, domain.BackendBash, f2)
	handle, err = d2.Submit(context.Background(), "job_relax.sh", t.TempDir())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if handle.ExitError == "" {
		t.Error("handle.ExitError empty after failed bash run")
	}
	if err := d2.Wait(context.Background(), handle, t.TempDir()); !errors.Is(err, ErrJobFailed) {
		t.Errorf("Wait() error = %v, want ErrJobFailed", err)
	}
}

func TestWaitPreparedHandleReturnsImmediately(t *testing.T) {
	d := newTestDispatcher(t, domain.BackendSlurm, &fakeRunner{})
	handle := domain.PreparedHandle("job.sh", domain.BackendSlurm)
	if err := d.Wait(context.Background(), handle, t.TempDir()); err != nil {
		t.Errorf("Wait() error = %v for prepared handle", err)
	}
}

func TestWaitSlurmCompletes(t *testing.T) {
	// squeue с пустым выводом: задание уже покинуло очередь.
	f := &fakeRunner{outputs: map[string]string{"squeue": "  \n"}}
	d := newTestDispatcher(t, domain.BackendSlurm, f)

	handle := domain.JobHandle{ID: "12345", Backend: domain.BackendSlurm}
	if err := d.Wait(context.Background(), handle, t.TempDir()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}

func TestWaitTimeout(t *testing.T) {
	// squeue всегда видит задание в очереди.
	f := &fakeRunner{outputs: map[string]string{"squeue": "12345 normal relax R 0:01\n"}}
	d, err := New(Config{
		Backend:      domain.BackendSlurm,
		PollInterval: time.Second,
		WaitTimeout:  10 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	d.run = f.run

	handle := domain.JobHandle{ID: "12345", Backend: domain.BackendSlurm}
	if err := d.Wait(context.Background(), handle, t.TempDir()); !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("Wait() error = %v, want ErrWaitTimeout", err)
	}
}

// fakeTransport реализует JobPublisher и CompletionLookup в памяти.
type fakeTransport struct {
	published []remote.JobReadyPayload
	results   map[uuid.UUID]remote.JobCompletedPayload
}

func (f *fakeTransport) PublishJobReady(_ context.Context, p remote.JobReadyPayload) error {
	f.published = append(f.published, p)
	return nil
}

func (f *fakeTransport) Lookup(jobID uuid.UUID) (remote.JobCompletedPayload, bool) {
	p, ok := f.results[jobID]
	return p, ok
}

func TestRemoteSubmitAndWait(t *testing.T) {
	transport := &fakeTransport{results: make(map[uuid.UUID]remote.JobCompletedPayload)}
	d, err := New(Config{
		Backend:      domain.BackendRemote,
		PollInterval: time.Second,
		Publisher:    transport,
		Lookup:       transport,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	handle, err := d.Submit(context.Background(), "/shared/job_relax.sh", "/shared/work")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(transport.published) != 1 {
		t.Fatalf("published %d payloads, want 1", len(transport.published))
	}

	jobID := uuid.MustParse(handle.ID)
	if transport.published[0].JobID != jobID {
		t.Error("published payload carries different job id")
	}

	// Отчёт уже получен: первый же опрос завершает ожидание.
	transport.results[jobID] = remote.JobCompletedPayload{JobID: jobID, Success: true, Host: "node-3"}
	if err := d.Wait(context.Background(), handle, "/shared/work"); err != nil {
		t.Errorf("Wait() error = %v", err)
	}

	// Провал задания поднимает ErrJobFailed с текстом агента.
	transport.results[jobID] = remote.JobCompletedPayload{
		JobID: jobID, Success: false, Host: "node-3", Error: "exit status 2",
	}
	err = d.Wait(context.Background(), handle, "/shared/work")
	if !errors.Is(err, ErrJobFailed) {
		t.Errorf("Wait() error = %v, want ErrJobFailed", err)
	}
	if err != nil && !strings.Contains(err.Error(), "exit status 2") {
		t.Errorf("Wait() error %q does not carry agent error text", err)
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", 300) + "END"
	got := tail(long)
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "END") {
		t.Errorf("tail() = %q", got)
	}
	if tail(" short \n") != "short" {
		t.Errorf("tail() = %q, want trimmed", tail(" short \n"))
	}
}

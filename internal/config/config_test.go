package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shaiso/Crucible/internal/domain"
)

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crucible.json")
	content := `{
		"input": "structures/",
		"pressures": [0, 50, 100],
		"job_system": "slurm",
		"encut": 600,
		"tasks": 4
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path, Default())
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Input != "structures/" {
		t.Errorf("Input = %q", cfg.Input)
	}
	if cfg.JobSystem != "slurm" {
		t.Errorf("JobSystem = %q", cfg.JobSystem)
	}
	if len(cfg.Pressures) != 3 || cfg.Pressures[2] != 100 {
		t.Errorf("Pressures = %v", cfg.Pressures)
	}
	if cfg.Encut != 600 {
		t.Errorf("Encut = %v", cfg.Encut)
	}
	if cfg.Parallel != 4 {
		t.Errorf("Parallel = %d, want 4", cfg.Parallel)
	}

	// Невыставленные ключи остаются значениями по умолчанию.
	if cfg.KSpacing != 0.3 {
		t.Errorf("KSpacing = %v, want default 0.3", cfg.KSpacing)
	}
	if cfg.Command != "vasp_std" {
		t.Errorf("Command = %q, want default", cfg.Command)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"), Default()); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Input = "POSCAR"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing input", func(c *Config) { c.Input = "" }, nil},
		{"bad backend", func(c *Config) { c.JobSystem = "torque" }, domain.ErrUnknownBackend},
		{"bad kspacing", func(c *Config) { c.KSpacing = 0 }, nil},
		{"bad parallel", func(c *Config) { c.Parallel = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.name == "valid" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLauncher(t *testing.T) {
	tests := []struct {
		procs string
		want  string
	}{
		{"", ""},
		{"16", "mpirun -np 16"},
		{" 8 ", "mpirun -np 8"},
		{"srun --mpi=pmix", "srun --mpi=pmix"},
	}

	for _, tt := range tests {
		cfg := Config{MPIProcs: tt.procs}
		if got := cfg.Launcher(); got != tt.want {
			t.Errorf("Launcher(%q) = %q, want %q", tt.procs, got, tt.want)
		}
	}
}
